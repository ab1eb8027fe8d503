package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"forkful/internal/config"
	"forkful/internal/db"
	"forkful/internal/middleware"
	"forkful/internal/models"
	"forkful/internal/serializers"
	"forkful/internal/services"
	"forkful/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// 1x1 transparent PNG
const pngDataURI = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

type testEnv struct {
	router *gin.Engine
	tokens *services.TokenService
	cfg    config.Config
}

func setupTestDB(t *testing.T) {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("failed to access underlying DB: %v", err)
	}
	// every pooled connection would get its own in-memory database
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(gdb); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	db.DB = gdb

	// the cache is process global, stale lists would leak between tests
	utils.GetCache().Delete("tags:list")
	utils.GetCache().Delete("ingredients:list")

	t.Cleanup(func() {
		sqlDB.Close()
		db.DB = nil
	})
}

// setupTestEnv builds an engine with the same route layout as the router
// package, without the rate limiter.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	setupTestDB(t)
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		AppEnv:        "test",
		SiteURL:       "http://localhost:8080",
		SecretKey:     "test-secret",
		MediaRoot:     t.TempDir(),
		TokenTTLHours: 1,
	}
	serializers.SiteURL = cfg.SiteURL

	images := services.NewImageStore(cfg.MediaRoot)
	tokens := services.NewTokenService(cfg, nil)

	r := gin.New()
	store := cookie.NewStore([]byte(cfg.SecretKey))
	r.Use(sessions.Sessions("forkful_session", store))
	r.Use(middleware.LoadUser(tokens))

	authHandler := NewAuthHandler(tokens)
	userHandler := NewUserHandler(images)
	tagHandler := NewTagHandler()
	ingredientHandler := NewIngredientHandler()
	recipeHandler := NewRecipeHandler(images)
	favoriteHandler := NewFavoriteHandler()
	cartHandler := NewCartHandler()

	api := r.Group("/api")
	{
		api.POST("/users/", authHandler.Register)
		api.POST("/auth/token/login/", authHandler.Login)

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

	return &testEnv{router: r, tokens: tokens, cfg: cfg}
}

// do sends a JSON request, with a Token header when token is non-empty.
func (env *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), "body: %s", w.Body.String())
	return body
}

func decodeJSONList(t *testing.T, w *httptest.ResponseRecorder) []interface{} {
	t.Helper()
	var body []interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), "body: %s", w.Body.String())
	return body
}

func createUser(t *testing.T, username string) models.User {
	t.Helper()
	hash, err := utils.HashPassword("password123")
	require.NoError(t, err)

	user := models.User{
		Email:     fmt.Sprintf("%s@example.com", username),
		Username:  username,
		FirstName: "Test",
		LastName:  "User",
		Password:  hash,
	}
	require.NoError(t, db.DB.Create(&user).Error)
	return user
}

func (env *testEnv) tokenFor(t *testing.T, user models.User) string {
	t.Helper()
	token, err := env.tokens.Issue(user.ID)
	require.NoError(t, err)
	return token
}

func seedTag(t *testing.T, name, slug string) models.Tag {
	t.Helper()
	tag := models.Tag{Name: name, Slug: slug}
	require.NoError(t, db.DB.Create(&tag).Error)
	return tag
}

func seedIngredient(t *testing.T, name, unit string) models.Ingredient {
	t.Helper()
	ingredient := models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.DB.Create(&ingredient).Error)
	return ingredient
}

// createRecipe posts a minimal valid recipe through the API.
func (env *testEnv) createRecipe(t *testing.T, token, name string, tagIDs []uint, ingredients []gin.H) map[string]interface{} {
	t.Helper()

	w := env.do(t, http.MethodPost, "/api/recipes/", token, gin.H{
		"name":         name,
		"text":         "Cook it well.",
		"cooking_time": 30,
		"image":        pngDataURI,
		"tags":         tagIDs,
		"ingredients":  ingredients,
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	return decodeJSON(t, w)
}
