package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFavoriteFlow(t *testing.T) {
	env := setupTestEnv(t)
	alice := createUser(t, "alice")
	bob := createUser(t, "bob")
	bobToken := env.tokenFor(t, bob)
	aliceToken := env.tokenFor(t, alice)
	tag := seedTag(t, "Breakfast", "breakfast")
	flour := seedIngredient(t, "flour", "g")

	created := env.createRecipe(t, aliceToken, "Pancakes", []uint{tag.ID}, []gin.H{{"id": flour.ID, "amount": 200}})
	id := uint(created["id"].(float64))

	w := env.do(t, http.MethodPost, fmt.Sprintf("/api/recipes/%d/favorite/", id), bobToken, nil)
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	body := decodeJSON(t, w)
	assert.EqualValues(t, id, body["id"])
	assert.Equal(t, "Pancakes", body["name"])
	assert.Contains(t, body, "image")
	assert.Contains(t, body, "cooking_time")
	assert.NotContains(t, body, "text", "favorite responses use the short form")

	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/recipes/%d/favorite/", id), bobToken, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Recipe is already in favorites", decodeJSON(t, w)["error"])

	// the flag shows up on the recipe for bob, not for alice
	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/recipes/%d/", id), bobToken, nil)
	assert.Equal(t, true, decodeJSON(t, w)["is_favorited"])
	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/recipes/%d/", id), aliceToken, nil)
	assert.Equal(t, false, decodeJSON(t, w)["is_favorited"])

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/recipes/%d/favorite/", id), bobToken, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/recipes/%d/favorite/", id), bobToken, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Recipe is not in favorites", decodeJSON(t, w)["error"])

	w = env.do(t, http.MethodPost, "/api/recipes/9999/favorite/", bobToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestShoppingCartFlow(t *testing.T) {
	env := setupTestEnv(t)
	alice := createUser(t, "alice")
	token := env.tokenFor(t, alice)
	tag := seedTag(t, "Breakfast", "breakfast")
	flour := seedIngredient(t, "flour", "g")

	created := env.createRecipe(t, token, "Pancakes", []uint{tag.ID}, []gin.H{{"id": flour.ID, "amount": 200}})
	id := uint(created["id"].(float64))

	w := env.do(t, http.MethodPost, fmt.Sprintf("/api/recipes/%d/shopping_cart/", id), token, nil)
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	assert.Equal(t, "Pancakes", decodeJSON(t, w)["name"])

	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/recipes/%d/shopping_cart/", id), token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Recipe is already in the shopping cart", decodeJSON(t, w)["error"])

	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/recipes/%d/", id), token, nil)
	assert.Equal(t, true, decodeJSON(t, w)["is_in_shopping_cart"])

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/recipes/%d/shopping_cart/", id), token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/recipes/%d/shopping_cart/", id), token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Recipe is not in the shopping cart", decodeJSON(t, w)["error"])

	w = env.do(t, http.MethodPost, "/api/recipes/9999/shopping_cart/", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestShoppingCartDownload(t *testing.T) {
	env := setupTestEnv(t)
	alice := createUser(t, "alice")
	token := env.tokenFor(t, alice)
	tag := seedTag(t, "Breakfast", "breakfast")
	flour := seedIngredient(t, "flour", "g")
	egg := seedIngredient(t, "egg", "pcs")

	bread := env.createRecipe(t, token, "Bread", []uint{tag.ID}, []gin.H{
		{"id": flour.ID, "amount": 300},
		{"id": egg.ID, "amount": 2},
	})
	rolls := env.createRecipe(t, token, "Rolls", []uint{tag.ID}, []gin.H{
		{"id": flour.ID, "amount": 200},
	})

	for _, recipe := range []map[string]interface{}{bread, rolls} {
		id := uint(recipe["id"].(float64))
		w := env.do(t, http.MethodPost, fmt.Sprintf("/api/recipes/%d/shopping_cart/", id), token, nil)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := env.do(t, http.MethodGet, "/api/recipes/download_shopping_cart/", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="shopping_list.txt"`, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")

	text := w.Body.String()
	assert.Contains(t, text, "Shopping list")
	assert.Contains(t, text, "egg (pcs) - 2")
	assert.Contains(t, text, "flour (g) - 500", "amounts aggregate across recipes")

	// removing a recipe shrinks the list
	rollsID := uint(rolls["id"].(float64))
	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/recipes/%d/shopping_cart/", rollsID), token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, "/api/recipes/download_shopping_cart/", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "flour (g) - 300")

	w = env.do(t, http.MethodGet, "/api/recipes/download_shopping_cart/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
