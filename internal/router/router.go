package router

import (
	"log/slog"
	"time"

	"forkful/internal/config"
	"forkful/internal/handlers"
	"forkful/internal/middleware"
	"forkful/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(r *gin.Engine, cfg config.Config, rdb *redis.Client) {
	images := services.NewImageStore(cfg.MediaRoot)
	tokens := services.NewTokenService(cfg, rdb)

	// Credential endpoints get a tighter limit than the rest of the API.
	authLimiter := services.NewIPRateLimiter(1, 5, slog.Default())
	authLimiter.StartCleanup(10 * time.Minute)

	// Handlers
	authHandler := handlers.NewAuthHandler(tokens)
	userHandler := handlers.NewUserHandler(images)
	tagHandler := handlers.NewTagHandler()
	ingredientHandler := handlers.NewIngredientHandler()
	recipeHandler := handlers.NewRecipeHandler(images)
	favoriteHandler := handlers.NewFavoriteHandler()
	cartHandler := handlers.NewCartHandler()
	webHandler := handlers.NewWebHandler()

	r.Use(middleware.LoadUser(tokens))

	// Public API
	api := r.Group("/api")
	{
		api.POST("/users/", middleware.RateLimit(authLimiter), authHandler.Register)
		api.POST("/auth/token/login/", middleware.RateLimit(authLimiter), authHandler.Login)

		api.GET("/users/", userHandler.List)
		api.GET("/users/:id/", userHandler.Retrieve)

		api.GET("/tags/", tagHandler.List)
		api.GET("/tags/:id/", tagHandler.Retrieve)

		api.GET("/ingredients/", ingredientHandler.List)
		api.GET("/ingredients/:id/", ingredientHandler.Retrieve)

		api.GET("/recipes/", recipeHandler.List)
		api.GET("/recipes/:id/", recipeHandler.Retrieve)
		api.GET("/recipes/:id/get-link/", recipeHandler.GetLink)
	}

	// Authenticated API
	authorized := r.Group("/api")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/auth/token/logout/", authHandler.Logout)

		authorized.GET("/users/me/", userHandler.Me)
		authorized.POST("/users/set_password/", authHandler.SetPassword)
		authorized.PUT("/users/me/avatar/", userHandler.UpdateAvatar)
		authorized.DELETE("/users/me/avatar/", userHandler.DeleteAvatar)

		authorized.GET("/users/subscriptions/", userHandler.Subscriptions)
		authorized.POST("/users/:id/subscribe/", userHandler.Subscribe)
		authorized.DELETE("/users/:id/subscribe/", userHandler.Unsubscribe)

		authorized.POST("/recipes/", recipeHandler.Create)
		authorized.PATCH("/recipes/:id/", recipeHandler.Update)
		authorized.DELETE("/recipes/:id/", recipeHandler.Delete)

		authorized.POST("/recipes/:id/favorite/", favoriteHandler.Favorite)
		authorized.DELETE("/recipes/:id/favorite/", favoriteHandler.Unfavorite)

		authorized.POST("/recipes/:id/shopping_cart/", cartHandler.Add)
		authorized.DELETE("/recipes/:id/shopping_cart/", cartHandler.Remove)
		authorized.GET("/recipes/download_shopping_cart/", cartHandler.Download)
	}

	// Server-rendered pages and short links
	r.GET("/s/:code", webHandler.ShortLink)
	r.GET("/r/:code", webHandler.RecipePage)
	r.GET("/cart/", webHandler.CartPage)
	r.GET("/health", webHandler.Health)
}
