package models

import "gorm.io/gorm"

// Tag represents an event tag (e.g., "dinner", "outdoors", "board-games").
type Tag struct {
	gorm.Model
	Name string `gorm:"size:100;uniqueIndex;not null"`
	Slug string `gorm:"size:100;uniqueIndex;not null"`
}
