package services

import (
	"fmt"
	"strings"

	"forkful/internal/db"
	"forkful/internal/models"
)

// ShoppingItem is one aggregated line of a user's shopping list.
type ShoppingItem struct {
	Name            string
	MeasurementUnit string
	Amount          int
}

// BuildShoppingList sums the ingredient amounts across every recipe in the
// user's cart, grouped per ingredient.
func BuildShoppingList(userID uint) ([]ShoppingItem, error) {
	var items []ShoppingItem
	err := db.DB.Model(&models.ShoppingCart{}).
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(amount_of_ingredients.amount) AS amount").
		Joins("JOIN ingredient_in_recipes ON ingredient_in_recipes.recipe_id = shopping_carts.recipe_id").
		Joins("JOIN amount_of_ingredients ON amount_of_ingredients.id = ingredient_in_recipes.amount_of_ingredient_id").
		Joins("JOIN ingredients ON ingredients.id = amount_of_ingredients.ingredient_id").
		Where("shopping_carts.user_id = ?", userID).
		Group("ingredients.id, ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to build shopping list: %w", err)
	}
	return items, nil
}

// FormatShoppingList renders the list as plain text for the download.
func FormatShoppingList(items []ShoppingItem) string {
	var b strings.Builder
	b.WriteString("Shopping list\n\n")
	for _, item := range items {
		fmt.Fprintf(&b, "%s (%s) - %d\n", item.Name, item.MeasurementUnit, item.Amount)
	}
	return b.String()
}
