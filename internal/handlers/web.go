package handlers

import (
	"fmt"
	"net/http"
	"time"

	"forkful/internal/db"
	"forkful/internal/models"
	"forkful/internal/serializers"
	"forkful/internal/services"
	"forkful/internal/utils"

	"github.com/gin-gonic/gin"
)

// WebHandler serves the server-rendered pages and the short link redirect.
type WebHandler struct{}

func NewWebHandler() *WebHandler {
	return &WebHandler{}
}

// ShortLink resolves /s/:code to the canonical recipe page.
func (h *WebHandler) ShortLink(c *gin.Context) {
	code := c.Param("code")

	var recipe models.Recipe
	if err := db.DB.Select("id", "short_code").Where("short_code = ?", code).First(&recipe).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Recipe not found")
		return
	}

	c.Redirect(http.StatusFound, "/r/"+recipe.ShortCode)
}

// RecipePage renders the public recipe detail page.
func (h *WebHandler) RecipePage(c *gin.Context) {
	code := c.Param("code")

	cacheKey := fmt.Sprintf("recipe:page:%s", code)
	if cached := utils.GetCache().Get(cacheKey); cached != nil {
		if hData, ok := cached.(gin.H); ok {
			Render(c, http.StatusOK, "recipe/show.html", clonePage(hData))
			return
		}
	}

	var recipe models.Recipe
	if err := db.DB.Preload("Author").Where("short_code = ?", code).First(&recipe).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Recipe not found")
		return
	}

	tagsByRecipe, amountsByRecipe, err := services.LoadRecipeRelations([]uint{recipe.ID})
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to load recipe")
		return
	}

	renderData := gin.H{
		"Title":       recipe.Name,
		"Recipe":      recipe,
		"Tags":        tagsByRecipe[recipe.ID],
		"Ingredients": amountsByRecipe[recipe.ID],
		"ContentHTML": utils.RenderMarkdown(recipe.Text),
		"ImageURL":    serializers.MediaURL(recipe.Image),
	}

	utils.GetCache().Set(cacheKey, renderData, 5*time.Minute)

	Render(c, http.StatusOK, "recipe/show.html", clonePage(renderData))
}

// clonePage copies the cached render data. Render adds request state
// (CurrentUser, CurrentPath) to the map it is given, and the cache entry is
// shared between viewers.
func clonePage(data gin.H) gin.H {
	page := make(gin.H, len(data)+2)
	for k, v := range data {
		page[k] = v
	}
	return page
}

// CartPage renders the signed-in user's shopping list.
func (h *WebHandler) CartPage(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		RenderError(c, http.StatusUnauthorized, "Please log in to see your shopping list")
		return
	}

	items, err := services.BuildShoppingList(user.ID)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to load shopping list")
		return
	}

	var recipes []models.Recipe
	if err := db.DB.Joins("JOIN shopping_carts ON shopping_carts.recipe_id = recipes.id").
		Where("shopping_carts.user_id = ?", user.ID).
		Order("shopping_carts.id").
		Find(&recipes).Error; err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to load shopping list")
		return
	}

	Render(c, http.StatusOK, "cart/list.html", gin.H{
		"Title":   "Shopping list",
		"Items":   items,
		"Recipes": recipes,
	})
}

// Health reports service liveness.
func (h *WebHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
