// Package serializers builds the API representations. Each entity has one
// response struct; who is looking is passed in explicitly instead of being
// baked into serializer subclasses.
package serializers

import (
	"errors"

	"forkful/internal/models"
)

// ErrNotAuthenticated is returned where a representation requires an
// authenticated viewer.
var ErrNotAuthenticated = errors.New("authentication credentials were not provided")

// SiteURL prefixes media paths and pagination links. Set once at startup.
var SiteURL string

// MediaURL turns a media-relative path into an absolute URL.
func MediaURL(path string) string {
	if path == "" {
		return ""
	}
	return SiteURL + "/media/" + path
}

type UserResponse struct {
	Email        string  `json:"email"`
	ID           uint    `json:"id"`
	Username     string  `json:"username"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	IsSubscribed bool    `json:"is_subscribed"`
	Avatar       *string `json:"avatar"`
}

// NewUserResponse renders subject for any viewer. isSubscribed is whether
// the viewer follows subject, false for anonymous viewers.
func NewUserResponse(subject models.User, isSubscribed bool) UserResponse {
	resp := UserResponse{
		Email:        subject.Email,
		ID:           subject.ID,
		Username:     subject.Username,
		FirstName:    subject.FirstName,
		LastName:     subject.LastName,
		IsSubscribed: isSubscribed,
	}
	if subject.Avatar != "" {
		url := MediaURL(subject.Avatar)
		resp.Avatar = &url
	}
	return resp
}

// NewAuthenticatedUserResponse is the variant used where the representation
// only exists for a signed-in viewer (own profile, the author block on
// recipe mutations). It refuses to render for an anonymous viewer rather
// than returning partial data.
func NewAuthenticatedUserResponse(viewer *models.User, subject models.User, isSubscribed bool) (UserResponse, error) {
	if viewer == nil {
		return UserResponse{}, ErrNotAuthenticated
	}
	return NewUserResponse(subject, isSubscribed), nil
}
