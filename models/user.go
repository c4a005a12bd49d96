package models

import (
	"gorm.io/gorm"
)

// User represents a user account in the system
type User struct {
	gorm.Model

	// Authentication fields
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`

	// Profile information
	Name      string  `gorm:"not null" json:"name"`
	AvatarURL *string `json:"avatar_url,omitempty"`

	// Account status
	IsActive bool `gorm:"default:true" json:"is_active"`

	// Relations
	OwnedProjects []Project       `gorm:"foreignKey:OwnerID" json:"owned_projects,omitempty"`
	Memberships   []ProjectMember `gorm:"foreignKey:UserID" json:"memberships,omitempty"`
}
