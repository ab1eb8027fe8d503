package models

import (
	"time"
)

// AmountOfIngredient pairs an ingredient with a quantity. Rows are deduplicated
// on (ingredient_id, amount) and shared by every recipe using that exact pair.
type AmountOfIngredient struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	IngredientID uint       `gorm:"not null;index;uniqueIndex:idx_ingredient_amount" json:"ingredient_id"`
	Ingredient   Ingredient `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"ingredient"`
	Amount       int        `gorm:"not null;uniqueIndex:idx_ingredient_amount" json:"amount"`
	CreatedAt    time.Time  `json:"created_at"`
}
