package services

import (
	"fmt"
	"testing"

	"forkful/internal/db"
	"forkful/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

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

	t.Cleanup(func() {
		sqlDB.Close()
		db.DB = nil
	})
}

func seedUser(t *testing.T, username string) models.User {
	t.Helper()
	user := models.User{
		Email:     fmt.Sprintf("%s@example.com", username),
		Username:  username,
		FirstName: "Test",
		LastName:  "User",
		Password:  "not-a-real-hash",
	}
	if err := db.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

func seedTag(t *testing.T, name, slug string) models.Tag {
	t.Helper()
	tag := models.Tag{Name: name, Slug: slug}
	if err := db.DB.Create(&tag).Error; err != nil {
		t.Fatalf("failed to create tag %s: %v", slug, err)
	}
	return tag
}

func seedIngredient(t *testing.T, name, unit string) models.Ingredient {
	t.Helper()
	ingredient := models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.DB.Create(&ingredient).Error; err != nil {
		t.Fatalf("failed to create ingredient %s: %v", name, err)
	}
	return ingredient
}

func countRows(t *testing.T, model interface{}) int64 {
	t.Helper()
	var count int64
	if err := db.DB.Model(model).Count(&count).Error; err != nil {
		t.Fatalf("failed to count rows: %v", err)
	}
	return count
}
