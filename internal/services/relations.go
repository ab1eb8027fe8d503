package services

import (
	"forkful/internal/db"
	"forkful/internal/models"
)

// ViewerRelations answers "does the viewer follow/favor/have in cart" for a
// batch of rows, loaded with one query per relation kind.
type ViewerRelations struct {
	subscribed map[uint]bool
	favorited  map[uint]bool
	inCart     map[uint]bool
}

// LoadViewerRelations collects the viewer's links to the given authors and
// recipes. A nil viewer yields relations that answer false everywhere.
func LoadViewerRelations(viewer *models.User, authorIDs []uint, recipeIDs []uint) (*ViewerRelations, error) {
	rel := &ViewerRelations{
		subscribed: make(map[uint]bool),
		favorited:  make(map[uint]bool),
		inCart:     make(map[uint]bool),
	}
	if viewer == nil {
		return rel, nil
	}

	if len(authorIDs) > 0 {
		var ids []uint
		if err := db.DB.Model(&models.Subscription{}).
			Where("user_id = ? AND author_id IN ?", viewer.ID, authorIDs).
			Pluck("author_id", &ids).Error; err != nil {
			return nil, err
		}
		for _, id := range ids {
			rel.subscribed[id] = true
		}
	}

	if len(recipeIDs) > 0 {
		var ids []uint
		if err := db.DB.Model(&models.Favorite{}).
			Where("user_id = ? AND recipe_id IN ?", viewer.ID, recipeIDs).
			Pluck("recipe_id", &ids).Error; err != nil {
			return nil, err
		}
		for _, id := range ids {
			rel.favorited[id] = true
		}

		var cartIDs []uint
		if err := db.DB.Model(&models.ShoppingCart{}).
			Where("user_id = ? AND recipe_id IN ?", viewer.ID, recipeIDs).
			Pluck("recipe_id", &cartIDs).Error; err != nil {
			return nil, err
		}
		for _, id := range cartIDs {
			rel.inCart[id] = true
		}
	}

	return rel, nil
}

func (r *ViewerRelations) Subscribed(authorID uint) bool {
	return r != nil && r.subscribed[authorID]
}

func (r *ViewerRelations) Favorited(recipeID uint) bool {
	return r != nil && r.favorited[recipeID]
}

func (r *ViewerRelations) InCart(recipeID uint) bool {
	return r != nil && r.inCart[recipeID]
}
