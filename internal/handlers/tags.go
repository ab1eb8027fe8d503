package handlers

import (
	"net/http"
	"time"

	"forkful/internal/db"
	"forkful/internal/models"
	"forkful/internal/serializers"
	"forkful/internal/utils"

	"github.com/gin-gonic/gin"
)

type TagHandler struct{}

func NewTagHandler() *TagHandler {
	return &TagHandler{}
}

// List returns all tags. The set is small and nearly static, so it is
// served from the cache.
func (h *TagHandler) List(c *gin.Context) {
	cacheKey := "tags:list"
	if cached := utils.GetCache().Get(cacheKey); cached != nil {
		if responses, ok := cached.([]serializers.TagResponse); ok {
			c.JSON(http.StatusOK, responses)
			return
		}
	}

	var tags []models.Tag
	if err := db.DB.Order("id").Find(&tags).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	responses := make([]serializers.TagResponse, 0, len(tags))
	for _, tag := range tags {
		responses = append(responses, serializers.NewTagResponse(tag))
	}

	utils.GetCache().Set(cacheKey, responses, 10*time.Minute)
	c.JSON(http.StatusOK, responses)
}

func (h *TagHandler) Retrieve(c *gin.Context) {
	var tag models.Tag
	if err := db.DB.First(&tag, utils.StringToUint(c.Param("id"))).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tag not found"})
		return
	}

	c.JSON(http.StatusOK, serializers.NewTagResponse(tag))
}
