package db

import (
	"fmt"
	"log/slog"
	"strings"

	"forkful/internal/config"
	"forkful/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg config.Config) error {
	var dialer gorm.Dialector
	if strings.HasPrefix(cfg.DatabaseURL, "postgres") {
		dialer = postgres.Open(cfg.DatabaseURL)
	} else if strings.HasPrefix(cfg.DatabaseURL, "sqlite") {
		dialer = sqlite.Open(strings.TrimPrefix(cfg.DatabaseURL, "sqlite://"))
	} else {
		return fmt.Errorf("unsupported database driver: %s", cfg.DatabaseURL)
	}

	var err error
	DB, err = gorm.Open(dialer, &gorm.Config{Logger: newGormLogger(slog.Default())})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	if strings.HasPrefix(cfg.DatabaseURL, "postgres") {
		if err := RunMigrations(cfg.DatabaseURL, cfg.MigrationPath); err != nil {
			return err
		}
	} else {
		// sqlite is for local dev and tests, schema comes from the models
		if err := AutoMigrate(DB); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	seedTags()
	return nil
}

// AutoMigrate creates the schema from the models, parents before children so
// the foreign key constraints resolve.
func AutoMigrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.Ingredient{},
		&models.AmountOfIngredient{},
		&models.Recipe{},
		&models.TagInRecipe{},
		&models.IngredientInRecipe{},
		&models.Subscription{},
		&models.Favorite{},
		&models.ShoppingCart{},
	)
}

func seedTags() {
	var count int64
	DB.Model(&models.Tag{}).Count(&count)
	if count > 0 {
		slog.Info("tags already seeded, skipping")
		return
	}

	tags := []models.Tag{
		{Name: "Breakfast", Slug: "breakfast"},
		{Name: "Lunch", Slug: "lunch"},
		{Name: "Dinner", Slug: "dinner"},
	}

	for _, tag := range tags {
		if err := DB.Create(&tag).Error; err != nil {
			slog.Error("failed to create tag", "slug", tag.Slug, "error", err)
		}
	}
	slog.Info("initial tags created")
}
