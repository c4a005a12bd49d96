package models

import (
	"time"

	"gorm.io/gorm"
)

// Member roles within a project
const (
	RoleOwner       = "owner"
	RoleContributor = "contributor"
	RoleViewer      = "viewer"
)

// Membership status - pending members were invited but have not accepted yet
const (
	MemberPending = "pending"
	MemberActive  = "active"
)

// Project is a workspace owning tasks, members and an AI credential
type Project struct {
	gorm.Model

	Name        string `gorm:"not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	OwnerID     uint   `gorm:"not null;index" json:"owner_id"`

	// AI review credential, AES-GCM encrypted in the application layer
	AIAPIKey string `gorm:"column:ai_api_key" json:"-"`

	// Relations
	Owner      User            `json:"-"`
	Members    []ProjectMember `gorm:"foreignKey:ProjectID" json:"members,omitempty"`
	Tasks      []Task          `gorm:"foreignKey:ProjectID" json:"tasks,omitempty"`
	Activities []Activity      `gorm:"foreignKey:ProjectID" json:"activities,omitempty"`
}

// ProjectMember joins users to projects with a role
type ProjectMember struct {
	gorm.Model

	ProjectID uint   `gorm:"not null;index" json:"project_id"`
	UserID    uint   `gorm:"not null;index" json:"user_id"`
	Role      string `gorm:"default:'contributor'" json:"role"`  // owner, contributor, viewer
	Status    string `gorm:"default:'pending'" json:"status"`    // pending, active
	InvitedBy *uint  `json:"invited_by,omitempty"`

	// Relations
	Project Project `json:"-"`
	User    User    `json:"user,omitempty"`
}

// Activity is an append-only audit entry for a project. Rows are never
// updated or deleted.
type Activity struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	ProjectID uint   `gorm:"not null;index" json:"project_id"`
	UserID    uint   `gorm:"not null;index" json:"user_id"`
	Action    string `gorm:"type:text;not null" json:"action"`

	// Relations
	User User `json:"user,omitempty"`
}
