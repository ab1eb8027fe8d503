package serializers

import (
	"forkful/internal/models"
)

// SubscriptionResponse is a followed author together with a slice of their
// recipes. recipes is trimmed by the caller per the recipes_limit param.
type SubscriptionResponse struct {
	UserResponse
	Recipes      []RecipeSummaryResponse `json:"recipes"`
	RecipesCount int64                   `json:"recipes_count"`
}

func NewSubscriptionResponse(author models.User, recipes []models.Recipe, recipesCount int64) SubscriptionResponse {
	summaries := make([]RecipeSummaryResponse, 0, len(recipes))
	for _, recipe := range recipes {
		summaries = append(summaries, NewRecipeSummaryResponse(recipe))
	}

	return SubscriptionResponse{
		UserResponse: NewUserResponse(author, true),
		Recipes:      summaries,
		RecipesCount: recipesCount,
	}
}
