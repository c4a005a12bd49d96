package models

import (
	"gorm.io/gorm"
)

// Notification types
const (
	NotificationTask   = "task"
	NotificationMerge  = "merge"
	NotificationInvite = "invite"
)

// Notification is an alert surfaced to a user about activity that concerns
// them. Persistence is the delivery guarantee; the websocket push is an
// optimization on top.
type Notification struct {
	gorm.Model

	RecipientID uint   `gorm:"not null;index" json:"recipient_id"`
	SenderID    *uint  `json:"sender_id,omitempty"`
	Message     string `gorm:"type:text;not null" json:"message"`
	Type        string `gorm:"not null" json:"type"` // task, merge, invite
	IsRead      bool   `gorm:"default:false" json:"is_read"`

	// Relations
	Recipient User  `gorm:"foreignKey:RecipientID" json:"-"`
	Sender    *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}
