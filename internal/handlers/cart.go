package handlers

import (
	"net/http"

	"forkful/internal/db"
	"forkful/internal/middleware"
	"forkful/internal/models"
	"forkful/internal/serializers"
	"forkful/internal/services"
	"forkful/internal/utils"

	"github.com/gin-gonic/gin"
)

type CartHandler struct{}

func NewCartHandler() *CartHandler {
	return &CartHandler{}
}

// Add puts the recipe into the requester's shopping cart.
func (h *CartHandler) Add(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var recipe models.Recipe
	if err := db.DB.First(&recipe, utils.StringToUint(c.Param("id"))).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	var existing models.ShoppingCart
	if err := db.DB.Where("user_id = ? AND recipe_id = ?", user.ID, recipe.ID).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Recipe is already in the shopping cart"})
		return
	}

	entry := models.ShoppingCart{UserID: user.ID, RecipeID: recipe.ID}
	if err := db.DB.Create(&entry).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add to shopping cart"})
		return
	}

	c.JSON(http.StatusCreated, serializers.NewRecipeSummaryResponse(recipe))
}

// Remove takes the recipe out of the requester's shopping cart.
func (h *CartHandler) Remove(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var recipe models.Recipe
	if err := db.DB.First(&recipe, utils.StringToUint(c.Param("id"))).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	var entry models.ShoppingCart
	if err := db.DB.Where("user_id = ? AND recipe_id = ?", user.ID, recipe.ID).First(&entry).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Recipe is not in the shopping cart"})
		return
	}

	if err := db.DB.Delete(&entry).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove from shopping cart"})
		return
	}

	c.Status(http.StatusNoContent)
}

// Download streams the aggregated shopping list as a text attachment.
func (h *CartHandler) Download(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	items, err := services.BuildShoppingList(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build shopping list"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="shopping_list.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(services.FormatShoppingList(items)))
}
