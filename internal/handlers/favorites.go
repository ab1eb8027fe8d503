package handlers

import (
	"net/http"

	"forkful/internal/db"
	"forkful/internal/middleware"
	"forkful/internal/models"
	"forkful/internal/serializers"
	"forkful/internal/utils"

	"github.com/gin-gonic/gin"
)

type FavoriteHandler struct{}

func NewFavoriteHandler() *FavoriteHandler {
	return &FavoriteHandler{}
}

// Favorite adds the recipe to the requester's favorites.
func (h *FavoriteHandler) Favorite(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var recipe models.Recipe
	if err := db.DB.First(&recipe, utils.StringToUint(c.Param("id"))).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	var existing models.Favorite
	if err := db.DB.Where("user_id = ? AND recipe_id = ?", user.ID, recipe.ID).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Recipe is already in favorites"})
		return
	}

	favorite := models.Favorite{UserID: user.ID, RecipeID: recipe.ID}
	if err := db.DB.Create(&favorite).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add favorite"})
		return
	}

	c.JSON(http.StatusCreated, serializers.NewRecipeSummaryResponse(recipe))
}

// Unfavorite removes the recipe from the requester's favorites.
func (h *FavoriteHandler) Unfavorite(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var recipe models.Recipe
	if err := db.DB.First(&recipe, utils.StringToUint(c.Param("id"))).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	var favorite models.Favorite
	if err := db.DB.Where("user_id = ? AND recipe_id = ?", user.ID, recipe.ID).First(&favorite).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Recipe is not in favorites"})
		return
	}

	if err := db.DB.Delete(&favorite).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove favorite"})
		return
	}

	c.Status(http.StatusNoContent)
}
