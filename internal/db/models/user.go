// Package models contains database model definitions.
package models

import (
	"time"
)

// User represents a chat user known to the relay.
// Users are created on first contact and keyed by their stable chat user id.
type User struct {
	// ID is the unique identifier for the user.
	ID uint64 `gorm:"primaryKey"`
	// ChatID is the stable chat-transport user id.
	ChatID int64 `gorm:"uniqueIndex;not null"`
	// DisplayName is an optional human readable name from the chat transport.
	DisplayName string `gorm:"size:255"`
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time
}
