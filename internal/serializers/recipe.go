package serializers

import (
	"forkful/internal/models"
)

type TagResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func NewTagResponse(tag models.Tag) TagResponse {
	return TagResponse{ID: tag.ID, Name: tag.Name, Slug: tag.Slug}
}

type IngredientResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

func NewIngredientResponse(ingredient models.Ingredient) IngredientResponse {
	return IngredientResponse{
		ID:              ingredient.ID,
		Name:            ingredient.Name,
		MeasurementUnit: ingredient.MeasurementUnit,
	}
}

// RecipeIngredientResponse is one ingredient line of a recipe, flattened
// from the shared amount row. ID is the ingredient's id.
type RecipeIngredientResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

func NewRecipeIngredientResponse(amount models.AmountOfIngredient) RecipeIngredientResponse {
	return RecipeIngredientResponse{
		ID:              amount.Ingredient.ID,
		Name:            amount.Ingredient.Name,
		MeasurementUnit: amount.Ingredient.MeasurementUnit,
		Amount:          amount.Amount,
	}
}

type RecipeResponse struct {
	ID               uint                       `json:"id"`
	Tags             []TagResponse              `json:"tags"`
	Author           UserResponse               `json:"author"`
	Ingredients      []RecipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
}

// NewRecipeResponse assembles the full recipe representation from the
// already loaded relations.
func NewRecipeResponse(recipe models.Recipe, tags []models.Tag, amounts []models.AmountOfIngredient, author UserResponse, isFavorited, isInShoppingCart bool) RecipeResponse {
	tagResponses := make([]TagResponse, 0, len(tags))
	for _, tag := range tags {
		tagResponses = append(tagResponses, NewTagResponse(tag))
	}

	ingredientResponses := make([]RecipeIngredientResponse, 0, len(amounts))
	for _, amount := range amounts {
		ingredientResponses = append(ingredientResponses, NewRecipeIngredientResponse(amount))
	}

	return RecipeResponse{
		ID:               recipe.ID,
		Tags:             tagResponses,
		Author:           author,
		Ingredients:      ingredientResponses,
		IsFavorited:      isFavorited,
		IsInShoppingCart: isInShoppingCart,
		Name:             recipe.Name,
		Image:            MediaURL(recipe.Image),
		Text:             recipe.Text,
		CookingTime:      recipe.CookingTime,
	}
}

// RecipeSummaryResponse is the short form used by favorite and cart
// responses and under subscriptions.
type RecipeSummaryResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

func NewRecipeSummaryResponse(recipe models.Recipe) RecipeSummaryResponse {
	return RecipeSummaryResponse{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       MediaURL(recipe.Image),
		CookingTime: recipe.CookingTime,
	}
}
