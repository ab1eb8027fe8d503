package models

import (
	"time"
)

// TagInRecipe links a recipe to one of its tags.
type TagInRecipe struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RecipeID  uint      `gorm:"not null;index;uniqueIndex:idx_recipe_tag" json:"recipe_id"`
	Recipe    Recipe    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"recipe"`
	TagID     uint      `gorm:"not null;index;uniqueIndex:idx_recipe_tag" json:"tag_id"`
	Tag       Tag       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"tag"`
	CreatedAt time.Time `json:"created_at"`
}
