package handlers

import (
	"errors"
	"net/http"

	"forkful/internal/db"
	"forkful/internal/middleware"
	"forkful/internal/models"
	"forkful/internal/serializers"
	"forkful/internal/services"
	"forkful/internal/utils"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	images *services.ImageStore
}

func NewUserHandler(images *services.ImageStore) *UserHandler {
	return &UserHandler{images: images}
}

type AvatarRequest struct {
	Avatar string `json:"avatar" binding:"required"`
}

// List returns the paginated user directory.
func (h *UserHandler) List(c *gin.Context) {
	page, limit := pageParams(c)

	var total int64
	if err := db.DB.Model(&models.User{}).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	var users []models.User
	if err := db.DB.Order("id").Limit(limit).Offset((page - 1) * limit).Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	responses, err := buildUserResponses(currentUser(c), users)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, serializers.NewPage(c.Request, total, page, limit, responses))
}

// Retrieve returns one user's public profile.
func (h *UserHandler) Retrieve(c *gin.Context) {
	var user models.User
	if err := db.DB.First(&user, utils.StringToUint(c.Param("id"))).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	rel, err := services.LoadViewerRelations(currentUser(c), []uint{user.ID}, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, serializers.NewUserResponse(user, rel.Subscribed(user.ID)))
}

// Me returns the requester's own profile.
func (h *UserHandler) Me(c *gin.Context) {
	viewer := currentUser(c)

	resp, err := serializers.NewAuthenticatedUserResponse(viewer, derefUser(viewer), false)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication credentials were not provided"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateAvatar accepts either a base64 data URI in JSON or a multipart file.
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var path string
	var err error
	if c.ContentType() == "multipart/form-data" {
		file, header, formErr := c.Request.FormFile("avatar")
		if formErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing avatar file"})
			return
		}
		defer file.Close()
		path, err = h.images.SaveUpload(file, header, "avatars")
	} else {
		var req AvatarRequest
		if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": bindErr.Error()})
			return
		}
		path, err = h.images.SaveDataURI(req.Avatar, "avatars")
	}

	if err != nil {
		if errors.Is(err, services.ErrInvalidImage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store avatar"})
		}
		return
	}

	previous := user.Avatar
	if err := db.DB.Model(user).Update("avatar", path).Error; err != nil {
		h.images.Remove(path)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update avatar"})
		return
	}
	h.images.Remove(previous)

	c.JSON(http.StatusOK, gin.H{"avatar": serializers.MediaURL(path)})
}

// DeleteAvatar clears the avatar.
func (h *UserHandler) DeleteAvatar(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	previous := user.Avatar
	if err := db.DB.Model(user).Update("avatar", "").Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update avatar"})
		return
	}
	h.images.Remove(previous)

	c.Status(http.StatusNoContent)
}

// Subscriptions lists the authors the requester follows, each with a slice
// of their recipes.
func (h *UserHandler) Subscriptions(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	page, limit := pageParams(c)
	recipesLimit := utils.StringToInt(c.Query("recipes_limit"))

	var total int64
	if err := db.DB.Model(&models.Subscription{}).Where("user_id = ?", user.ID).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	var subscriptions []models.Subscription
	if err := db.DB.Preload("Author").
		Where("user_id = ?", user.ID).
		Order("id").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&subscriptions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	authorIDs := make([]uint, len(subscriptions))
	for i, sub := range subscriptions {
		authorIDs[i] = sub.AuthorID
	}

	recipesByAuthor, countByAuthor, err := loadAuthorRecipes(authorIDs, recipesLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	responses := make([]serializers.SubscriptionResponse, 0, len(subscriptions))
	for _, sub := range subscriptions {
		responses = append(responses, serializers.NewSubscriptionResponse(
			sub.Author, recipesByAuthor[sub.AuthorID], countByAuthor[sub.AuthorID]))
	}

	c.JSON(http.StatusOK, serializers.NewPage(c.Request, total, page, limit, responses))
}

// Subscribe makes the requester follow the author.
func (h *UserHandler) Subscribe(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var author models.User
	if err := db.DB.First(&author, utils.StringToUint(c.Param("id"))).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if author.ID == user.ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot subscribe to yourself"})
		return
	}

	var existing models.Subscription
	if err := db.DB.Where("user_id = ? AND author_id = ?", user.ID, author.ID).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You are already subscribed to this user"})
		return
	}

	subscription := models.Subscription{UserID: user.ID, AuthorID: author.ID}
	if err := db.DB.Create(&subscription).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to subscribe"})
		return
	}

	recipesLimit := utils.StringToInt(c.Query("recipes_limit"))
	recipesByAuthor, countByAuthor, err := loadAuthorRecipes([]uint{author.ID}, recipesLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusCreated, serializers.NewSubscriptionResponse(
		author, recipesByAuthor[author.ID], countByAuthor[author.ID]))
}

// Unsubscribe removes the follow link.
func (h *UserHandler) Unsubscribe(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var author models.User
	if err := db.DB.First(&author, utils.StringToUint(c.Param("id"))).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var subscription models.Subscription
	if err := db.DB.Where("user_id = ? AND author_id = ?", user.ID, author.ID).First(&subscription).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You are not subscribed to this user"})
		return
	}

	if err := db.DB.Delete(&subscription).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unsubscribe"})
		return
	}

	c.Status(http.StatusNoContent)
}

// buildUserResponses renders users with the viewer's subscription flags
// loaded in one query.
func buildUserResponses(viewer *models.User, users []models.User) ([]serializers.UserResponse, error) {
	ids := make([]uint, len(users))
	for i, user := range users {
		ids[i] = user.ID
	}

	rel, err := services.LoadViewerRelations(viewer, ids, nil)
	if err != nil {
		return nil, err
	}

	responses := make([]serializers.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, serializers.NewUserResponse(user, rel.Subscribed(user.ID)))
	}
	return responses, nil
}

// loadAuthorRecipes batch loads each author's recipes newest first, trimmed
// per recipes_limit when positive, plus the untrimmed count per author.
func loadAuthorRecipes(authorIDs []uint, limit int) (map[uint][]models.Recipe, map[uint]int64, error) {
	recipesByAuthor := make(map[uint][]models.Recipe)
	countByAuthor := make(map[uint]int64)
	if len(authorIDs) == 0 {
		return recipesByAuthor, countByAuthor, nil
	}

	var recipes []models.Recipe
	if err := db.DB.Where("author_id IN ?", authorIDs).
		Order("created_at DESC, id DESC").
		Find(&recipes).Error; err != nil {
		return nil, nil, err
	}
	for _, recipe := range recipes {
		if limit > 0 && len(recipesByAuthor[recipe.AuthorID]) >= limit {
			continue
		}
		recipesByAuthor[recipe.AuthorID] = append(recipesByAuthor[recipe.AuthorID], recipe)
	}

	type countRow struct {
		AuthorID uint
		Count    int64
	}
	var counts []countRow
	if err := db.DB.Model(&models.Recipe{}).
		Select("author_id, COUNT(*) as count").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&counts).Error; err != nil {
		return nil, nil, err
	}
	for _, row := range counts {
		countByAuthor[row.AuthorID] = row.Count
	}

	return recipesByAuthor, countByAuthor, nil
}

func derefUser(user *models.User) models.User {
	if user == nil {
		return models.User{}
	}
	return *user
}
