package serializers

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPageLinks(t *testing.T) {
	SiteURL = "http://localhost:8080"
	req := httptest.NewRequest("GET", "/api/recipes/?limit=3&page=2&tags=breakfast", nil)

	page := NewPage(req, 8, 2, 3, []int{1, 2, 3})

	assert.EqualValues(t, 8, page.Count)
	require.NotNil(t, page.Next)
	assert.Contains(t, *page.Next, "http://localhost:8080/api/recipes/?")
	assert.Contains(t, *page.Next, "page=3")
	assert.Contains(t, *page.Next, "tags=breakfast", "filter params survive in the links")
	require.NotNil(t, page.Previous)
	assert.Contains(t, *page.Previous, "page=1")
}

func TestNewPageEdges(t *testing.T) {
	SiteURL = "http://localhost:8080"

	// first page has no previous
	req := httptest.NewRequest("GET", "/api/users/?limit=3", nil)
	page := NewPage(req, 8, 1, 3, nil)
	assert.NotNil(t, page.Next)
	assert.Nil(t, page.Previous)

	// last page has no next
	req = httptest.NewRequest("GET", "/api/users/?limit=3&page=3", nil)
	page = NewPage(req, 8, 3, 3, nil)
	assert.Nil(t, page.Next)
	assert.NotNil(t, page.Previous)

	// empty result set has neither
	req = httptest.NewRequest("GET", "/api/users/", nil)
	page = NewPage(req, 0, 1, 6, nil)
	assert.Nil(t, page.Next)
	assert.Nil(t, page.Previous)
}
