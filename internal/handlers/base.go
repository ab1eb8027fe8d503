package handlers

import (
	"forkful/internal/middleware"
	"forkful/internal/models"
	"forkful/internal/utils"

	"github.com/gin-gonic/gin"
)

// Render helper to inject common variables like 'current user'
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	if user, exists := c.Get(middleware.CheckUserKey); exists {
		obj["CurrentUser"] = user
	}
	obj["CurrentPath"] = c.Request.URL.Path

	c.HTML(code, name, obj)
}

// Error helper
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Error": message})
}

// currentUser returns the requester, nil when anonymous.
func currentUser(c *gin.Context) *models.User {
	if user, exists := c.Get(middleware.CheckUserKey); exists {
		return user.(*models.User)
	}
	return nil
}

// pageParams reads the page/limit query params with the API defaults.
func pageParams(c *gin.Context) (page int, limit int) {
	page = utils.StringToInt(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit = utils.StringToInt(c.DefaultQuery("limit", "6"))
	if limit < 1 {
		limit = 6
	}
	return page, limit
}
