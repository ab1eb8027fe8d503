package models

import (
	"time"
)

// IngredientInRecipe links a recipe to a shared AmountOfIngredient row.
type IngredientInRecipe struct {
	ID                   uint               `gorm:"primaryKey" json:"id"`
	RecipeID             uint               `gorm:"not null;index;uniqueIndex:idx_recipe_amount" json:"recipe_id"`
	Recipe               Recipe             `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"recipe"`
	AmountOfIngredientID uint               `gorm:"not null;index;uniqueIndex:idx_recipe_amount" json:"amount_of_ingredient_id"`
	AmountOfIngredient   AmountOfIngredient `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"amount_of_ingredient"`
	CreatedAt            time.Time          `json:"created_at"`
}
