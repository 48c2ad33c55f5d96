package model

import (
	"gorm.io/gorm"
)

// AutoMigrate creates or updates every table of the knowledge base
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Note{}, &Tag{}, &NoteTag{})
}
