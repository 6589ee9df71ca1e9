package models

import "gorm.io/gorm"

// User represents a registered account in the system.
type User struct {
	gorm.Model
	Username     string `gorm:"size:150;uniqueIndex;not null"`
	Email        string `gorm:"size:255;uniqueIndex;not null"`
	FirstName    string `gorm:"size:150"`
	PasswordHash string `gorm:"size:255;not null"`
	Role         string `gorm:"size:50;not null;default:'user';index"`

	Profile *Profile
}
