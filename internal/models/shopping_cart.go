package models

import (
	"time"
)

type ShoppingCart struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_cart_user_recipe" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	RecipeID  uint      `gorm:"not null;index;uniqueIndex:idx_cart_user_recipe" json:"recipe_id"`
	Recipe    Recipe    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"recipe"`
	CreatedAt time.Time `json:"created_at"`
}
