package services

import (
	"errors"
	"fmt"

	"forkful/internal/db"
	"forkful/internal/models"
	"forkful/internal/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrEmptyIngredients  = errors.New("at least one ingredient is required")
	ErrUnknownTag        = errors.New("tag does not exist")
	ErrUnknownIngredient = errors.New("ingredient does not exist")
)

// IngredientAmountInput is one {id, amount} entry of a recipe payload.
type IngredientAmountInput struct {
	ID     uint
	Amount int
}

// RecipeInput carries the validated fields of a create or update request.
// ImagePath is the already stored media path; empty on update means keep
// the current image.
type RecipeInput struct {
	Name        string
	Text        string
	CookingTime int
	TagIDs      []uint
	Ingredients []IngredientAmountInput
	ImagePath   string
}

// CreateRecipe persists a recipe with its tag and ingredient links in one
// transaction. Any failure rolls the whole assembly back.
func CreateRecipe(author models.User, in RecipeInput) (*models.Recipe, error) {
	if len(in.Ingredients) == 0 {
		return nil, ErrEmptyIngredients
	}

	recipe := models.Recipe{
		ShortCode:   utils.RandStringBytesMaskImpr(8),
		AuthorID:    author.ID,
		Name:        in.Name,
		Image:       in.ImagePath,
		Text:        in.Text,
		CookingTime: in.CookingTime,
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		if err := attachTags(tx, recipe.ID, in.TagIDs); err != nil {
			return err
		}
		return attachIngredients(tx, recipe.ID, in.Ingredients)
	})
	if err != nil {
		return nil, err
	}

	recipe.Author = author
	return &recipe, nil
}

// UpdateRecipe rewrites the recipe fields and replaces both association
// sets, atomically.
func UpdateRecipe(recipe *models.Recipe, in RecipeInput) error {
	if len(in.Ingredients) == 0 {
		return ErrEmptyIngredients
	}

	return db.DB.Transaction(func(tx *gorm.DB) error {
		recipe.Name = in.Name
		recipe.Text = in.Text
		recipe.CookingTime = in.CookingTime
		if in.ImagePath != "" {
			recipe.Image = in.ImagePath
		}
		if err := tx.Save(recipe).Error; err != nil {
			return err
		}

		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.TagInRecipe{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.IngredientInRecipe{}).Error; err != nil {
			return err
		}

		if err := attachTags(tx, recipe.ID, in.TagIDs); err != nil {
			return err
		}
		return attachIngredients(tx, recipe.ID, in.Ingredients)
	})
}

func attachTags(tx *gorm.DB, recipeID uint, tagIDs []uint) error {
	for _, tagID := range tagIDs {
		var tag models.Tag
		if err := tx.First(&tag, tagID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: id %d", ErrUnknownTag, tagID)
			}
			return err
		}

		link := models.TagInRecipe{RecipeID: recipeID, TagID: tag.ID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
			return err
		}
	}
	return nil
}

// attachIngredients resolves each {id, amount} pair to a shared
// AmountOfIngredient row, creating it on first use. The upsert keeps
// concurrent creates from violating the (ingredient, amount) uniqueness.
func attachIngredients(tx *gorm.DB, recipeID uint, items []IngredientAmountInput) error {
	for _, item := range items {
		var ingredient models.Ingredient
		if err := tx.First(&ingredient, item.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: id %d", ErrUnknownIngredient, item.ID)
			}
			return err
		}

		amount := models.AmountOfIngredient{IngredientID: ingredient.ID, Amount: item.Amount}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&amount).Error; err != nil {
			return err
		}
		if amount.ID == 0 {
			// conflict, the pair already exists
			if err := tx.Where("ingredient_id = ? AND amount = ?", ingredient.ID, item.Amount).
				First(&amount).Error; err != nil {
				return err
			}
		}

		link := models.IngredientInRecipe{RecipeID: recipeID, AmountOfIngredientID: amount.ID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
			return err
		}
	}
	return nil
}

// LoadRecipeRelations batch loads tags and ingredient amounts for a set of
// recipes, one query per relation kind.
func LoadRecipeRelations(recipeIDs []uint) (map[uint][]models.Tag, map[uint][]models.AmountOfIngredient, error) {
	tagsByRecipe := make(map[uint][]models.Tag)
	amountsByRecipe := make(map[uint][]models.AmountOfIngredient)
	if len(recipeIDs) == 0 {
		return tagsByRecipe, amountsByRecipe, nil
	}

	var tagLinks []models.TagInRecipe
	if err := db.DB.Preload("Tag").
		Where("recipe_id IN ?", recipeIDs).
		Order("id").
		Find(&tagLinks).Error; err != nil {
		return nil, nil, err
	}
	for _, link := range tagLinks {
		tagsByRecipe[link.RecipeID] = append(tagsByRecipe[link.RecipeID], link.Tag)
	}

	var ingredientLinks []models.IngredientInRecipe
	if err := db.DB.Preload("AmountOfIngredient.Ingredient").
		Where("recipe_id IN ?", recipeIDs).
		Order("id").
		Find(&ingredientLinks).Error; err != nil {
		return nil, nil, err
	}
	for _, link := range ingredientLinks {
		amountsByRecipe[link.RecipeID] = append(amountsByRecipe[link.RecipeID], link.AmountOfIngredient)
	}

	return tagsByRecipe, amountsByRecipe, nil
}
