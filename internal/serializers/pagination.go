package serializers

import (
	"math"
	"net/http"
	"strconv"
)

// Page is the envelope every paginated list endpoint responds with.
type Page struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

// NewPage wraps results with absolute next/previous links derived from the
// request URL.
func NewPage(r *http.Request, count int64, page, limit int, results interface{}) Page {
	totalPages := 1
	if limit > 0 {
		totalPages = int(math.Ceil(float64(count) / float64(limit)))
	}

	var next, previous *string
	if page < totalPages {
		url := pageURL(r, page+1)
		next = &url
	}
	if page > 1 {
		url := pageURL(r, page-1)
		previous = &url
	}

	return Page{
		Count:    count,
		Next:     next,
		Previous: previous,
		Results:  results,
	}
}

func pageURL(r *http.Request, page int) string {
	query := r.URL.Query()
	query.Set("page", strconv.Itoa(page))
	return SiteURL + r.URL.Path + "?" + query.Encode()
}
