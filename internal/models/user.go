package models

import "gorm.io/gorm"

// User is the public profile of an account. It is embedded in challenges and
// matches, so it never carries secrets.
type User struct {
	Email    string `json:"email" gorm:"size:255;uniqueIndex;not null"`
	Username string `json:"username" gorm:"size:255;not null"`
	FullName string `json:"fullName" gorm:"size:255"`
	Avatar   string `json:"avatar" gorm:"size:50;not null;default:'default'"`
}

// Account is the stored account record.
type Account struct {
	gorm.Model
	User         `gorm:"embedded"`
	PasswordHash string `gorm:"size:255;not null"`
}

// DefaultAvatar is assigned when registration does not pick one.
const DefaultAvatar = "default"

// Avatars lists the selectable avatar ids.
var Avatars = []string{"superman", "ironman", "thor", "captain-america", "spiderman", "hulk", "loki", DefaultAvatar}
