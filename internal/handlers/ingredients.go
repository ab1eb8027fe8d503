package handlers

import (
	"net/http"
	"strings"
	"time"

	"forkful/internal/db"
	"forkful/internal/models"
	"forkful/internal/serializers"
	"forkful/internal/utils"

	"github.com/gin-gonic/gin"
)

// likeEscaper makes a user-supplied prefix literal inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type IngredientHandler struct{}

func NewIngredientHandler() *IngredientHandler {
	return &IngredientHandler{}
}

// List returns ingredients, optionally narrowed by a case-insensitive name
// prefix. Only the unfiltered list is cached.
func (h *IngredientHandler) List(c *gin.Context) {
	name := c.Query("name")

	cacheKey := "ingredients:list"
	if name == "" {
		if cached := utils.GetCache().Get(cacheKey); cached != nil {
			if responses, ok := cached.([]serializers.IngredientResponse); ok {
				c.JSON(http.StatusOK, responses)
				return
			}
		}
	}

	query := db.DB.Order("name")
	if name != "" {
		prefix := likeEscaper.Replace(strings.ToLower(name))
		query = query.Where(`LOWER(name) LIKE ? ESCAPE '\'`, prefix+"%")
	}

	var ingredients []models.Ingredient
	if err := query.Find(&ingredients).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	responses := make([]serializers.IngredientResponse, 0, len(ingredients))
	for _, ingredient := range ingredients {
		responses = append(responses, serializers.NewIngredientResponse(ingredient))
	}

	if name == "" {
		utils.GetCache().Set(cacheKey, responses, 10*time.Minute)
	}
	c.JSON(http.StatusOK, responses)
}

func (h *IngredientHandler) Retrieve(c *gin.Context) {
	var ingredient models.Ingredient
	if err := db.DB.First(&ingredient, utils.StringToUint(c.Param("id"))).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ingredient not found"})
		return
	}

	c.JSON(http.StatusOK, serializers.NewIngredientResponse(ingredient))
}
