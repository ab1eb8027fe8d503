package middleware

import (
	"net/http"
	"strings"

	"forkful/internal/db"
	"forkful/internal/models"
	"forkful/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const CheckUserKey = "user"

// LoadUser resolves the requester from a bearer token or the session cookie
// and sets the user into the context. Anonymous requests pass through.
func LoadUser(tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user := resolveUser(c, tokens); user != nil {
			c.Set(CheckUserKey, user)
		}
		c.Next()
	}
}

// resolveUser tries the Authorization header first, then the session. The
// API clients send "Token <jwt>", plain "Bearer <jwt>" is accepted too.
func resolveUser(c *gin.Context, tokens *services.TokenService) *models.User {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && (parts[0] == "Token" || parts[0] == "Bearer") {
			if userID, err := tokens.Parse(c.Request.Context(), parts[1]); err == nil {
				var user models.User
				if db.DB.First(&user, userID).Error == nil {
					return &user
				}
			}
		}
	}

	session := sessions.Default(c)
	if userID := session.Get("user_id"); userID != nil {
		var user models.User
		if db.DB.First(&user, userID).Error == nil {
			return &user
		}
	}

	return nil
}

// AuthRequired rejects anonymous requests. Relies on LoadUser having run.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(CheckUserKey); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication credentials were not provided"})
			return
		}
		c.Next()
	}
}
