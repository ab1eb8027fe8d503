package models

import (
	"time"
)

type Recipe struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ShortCode   string    `gorm:"uniqueIndex;size:8;not null" json:"short_code"`
	AuthorID    uint      `gorm:"not null;index" json:"author_id"`
	Author      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Name        string    `gorm:"size:256;not null" json:"name"`
	Image       string    `gorm:"size:255;not null" json:"image"` // media-relative path
	Text        string    `gorm:"type:text" json:"text"`
	CookingTime int       `gorm:"not null" json:"cooking_time"` // minutes
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
