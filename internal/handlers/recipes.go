package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"forkful/internal/db"
	"forkful/internal/middleware"
	"forkful/internal/models"
	"forkful/internal/serializers"
	"forkful/internal/services"
	"forkful/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RecipeHandler struct {
	images *services.ImageStore
}

func NewRecipeHandler(images *services.ImageStore) *RecipeHandler {
	return &RecipeHandler{images: images}
}

type RecipeIngredientRequest struct {
	ID     uint `json:"id" binding:"required"`
	Amount int  `json:"amount" binding:"required,min=1"`
}

// RecipeRequest covers create and update. Image is optional here, create
// enforces it separately so updates can keep the stored image.
type RecipeRequest struct {
	Name        string                    `json:"name" binding:"required,max=256"`
	Text        string                    `json:"text" binding:"required"`
	CookingTime int                       `json:"cooking_time" binding:"required,min=1"`
	Image       string                    `json:"image"`
	Tags        *[]uint                   `json:"tags" binding:"required"`
	Ingredients []RecipeIngredientRequest `json:"ingredients" binding:"required,min=1,dive"`
}

// List returns recipes newest first, with the author, tag, favorite and
// cart filters applied.
func (h *RecipeHandler) List(c *gin.Context) {
	page, limit := pageParams(c)
	viewer := currentUser(c)

	filter := func(query *gorm.DB) *gorm.DB {
		if authorID := utils.StringToUint(c.Query("author")); authorID > 0 {
			query = query.Where("author_id = ?", authorID)
		}
		if slugs := c.QueryArray("tags"); len(slugs) > 0 {
			query = query.Where("id IN (?)", db.DB.Model(&models.TagInRecipe{}).
				Select("tag_in_recipes.recipe_id").
				Joins("JOIN tags ON tags.id = tag_in_recipes.tag_id").
				Where("tags.slug IN ?", slugs))
		}
		if viewer != nil {
			if c.Query("is_favorited") == "1" {
				query = query.Where("id IN (?)", db.DB.Model(&models.Favorite{}).
					Select("recipe_id").Where("user_id = ?", viewer.ID))
			}
			if c.Query("is_in_shopping_cart") == "1" {
				query = query.Where("id IN (?)", db.DB.Model(&models.ShoppingCart{}).
					Select("recipe_id").Where("user_id = ?", viewer.ID))
			}
		}
		return query
	}

	var total int64
	if err := filter(db.DB.Model(&models.Recipe{})).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	var recipes []models.Recipe
	if err := filter(db.DB.Model(&models.Recipe{})).
		Preload("Author").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&recipes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	responses, err := h.buildRecipeResponses(viewer, recipes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, serializers.NewPage(c.Request, total, page, limit, responses))
}

func (h *RecipeHandler) Retrieve(c *gin.Context) {
	var recipe models.Recipe
	if err := db.DB.Preload("Author").First(&recipe, utils.StringToUint(c.Param("id"))).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	resp, err := h.recipeResponse(c, recipe, false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Create stores the image, then assembles the recipe with its tag and
// ingredient links in one transaction.
func (h *RecipeHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Image == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image is required"})
		return
	}

	path, err := h.images.SaveDataURI(req.Image, "recipes")
	if err != nil {
		if errors.Is(err, services.ErrInvalidImage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
		}
		return
	}

	recipe, err := services.CreateRecipe(*user, services.RecipeInput{
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		TagIDs:      *req.Tags,
		Ingredients: toIngredientInputs(req.Ingredients),
		ImagePath:   path,
	})
	if err != nil {
		h.images.Remove(path)
		mapRecipeError(c, err)
		return
	}

	resp, err := h.recipeResponse(c, *recipe, true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Update rewrites the recipe and replaces its association sets. Author only.
func (h *RecipeHandler) Update(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var recipe models.Recipe
	if err := db.DB.Preload("Author").First(&recipe, utils.StringToUint(c.Param("id"))).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}
	if recipe.AuthorID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to modify this recipe"})
		return
	}

	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var path string
	if req.Image != "" {
		var err error
		path, err = h.images.SaveDataURI(req.Image, "recipes")
		if err != nil {
			if errors.Is(err, services.ErrInvalidImage) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
			}
			return
		}
	}

	previous := recipe.Image
	err := services.UpdateRecipe(&recipe, services.RecipeInput{
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		TagIDs:      *req.Tags,
		Ingredients: toIngredientInputs(req.Ingredients),
		ImagePath:   path,
	})
	if err != nil {
		if path != "" {
			h.images.Remove(path)
		}
		mapRecipeError(c, err)
		return
	}
	if path != "" && previous != path {
		h.images.Remove(previous)
	}
	utils.GetCache().Delete(fmt.Sprintf("recipe:page:%s", recipe.ShortCode))

	resp, err := h.recipeResponse(c, recipe, true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Delete removes the recipe with its links, favorites and cart entries.
// Author only.
func (h *RecipeHandler) Delete(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var recipe models.Recipe
	if err := db.DB.First(&recipe, utils.StringToUint(c.Param("id"))).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}
	if recipe.AuthorID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to delete this recipe"})
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		for _, link := range []interface{}{
			&models.TagInRecipe{},
			&models.IngredientInRecipe{},
			&models.Favorite{},
			&models.ShoppingCart{},
		} {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(link).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&recipe).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete recipe"})
		return
	}

	h.images.Remove(recipe.Image)
	utils.GetCache().Delete(fmt.Sprintf("recipe:page:%s", recipe.ShortCode))
	c.Status(http.StatusNoContent)
}

// GetLink returns the public short link for sharing.
func (h *RecipeHandler) GetLink(c *gin.Context) {
	var recipe models.Recipe
	if err := db.DB.First(&recipe, utils.StringToUint(c.Param("id"))).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"short-link": serializers.SiteURL + "/s/" + recipe.ShortCode})
}

// buildRecipeResponses renders recipes with relations and viewer flags
// loaded in batches.
func (h *RecipeHandler) buildRecipeResponses(viewer *models.User, recipes []models.Recipe) ([]serializers.RecipeResponse, error) {
	recipeIDs := make([]uint, len(recipes))
	authorIDs := make([]uint, len(recipes))
	for i, recipe := range recipes {
		recipeIDs[i] = recipe.ID
		authorIDs[i] = recipe.AuthorID
	}

	tagsByRecipe, amountsByRecipe, err := services.LoadRecipeRelations(recipeIDs)
	if err != nil {
		return nil, err
	}
	rel, err := services.LoadViewerRelations(viewer, authorIDs, recipeIDs)
	if err != nil {
		return nil, err
	}

	responses := make([]serializers.RecipeResponse, 0, len(recipes))
	for _, recipe := range recipes {
		author := serializers.NewUserResponse(recipe.Author, rel.Subscribed(recipe.AuthorID))
		responses = append(responses, serializers.NewRecipeResponse(
			recipe,
			tagsByRecipe[recipe.ID],
			amountsByRecipe[recipe.ID],
			author,
			rel.Favorited(recipe.ID),
			rel.InCart(recipe.ID)))
	}
	return responses, nil
}

// recipeResponse renders a single recipe. Mutation responses render the
// author through the authenticated representation.
func (h *RecipeHandler) recipeResponse(c *gin.Context, recipe models.Recipe, authenticatedAuthor bool) (serializers.RecipeResponse, error) {
	viewer := currentUser(c)

	tagsByRecipe, amountsByRecipe, err := services.LoadRecipeRelations([]uint{recipe.ID})
	if err != nil {
		return serializers.RecipeResponse{}, err
	}
	rel, err := services.LoadViewerRelations(viewer, []uint{recipe.AuthorID}, []uint{recipe.ID})
	if err != nil {
		return serializers.RecipeResponse{}, err
	}

	var author serializers.UserResponse
	if authenticatedAuthor {
		author, err = serializers.NewAuthenticatedUserResponse(viewer, recipe.Author, rel.Subscribed(recipe.AuthorID))
		if err != nil {
			return serializers.RecipeResponse{}, err
		}
	} else {
		author = serializers.NewUserResponse(recipe.Author, rel.Subscribed(recipe.AuthorID))
	}

	return serializers.NewRecipeResponse(
		recipe,
		tagsByRecipe[recipe.ID],
		amountsByRecipe[recipe.ID],
		author,
		rel.Favorited(recipe.ID),
		rel.InCart(recipe.ID)), nil
}

func toIngredientInputs(items []RecipeIngredientRequest) []services.IngredientAmountInput {
	inputs := make([]services.IngredientAmountInput, len(items))
	for i, item := range items {
		inputs[i] = services.IngredientAmountInput{ID: item.ID, Amount: item.Amount}
	}
	return inputs
}

func mapRecipeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEmptyIngredients),
		errors.Is(err, services.ErrUnknownTag),
		errors.Is(err, services.ErrUnknownIngredient):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save recipe"})
	}
}
