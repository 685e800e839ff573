package models

import (
	"time"
)

// UserSetting represents a single setting override stored for a user.
// Keys outside the fixed settings schema are never written.
type UserSetting struct {
	ID uint64 `gorm:"primaryKey"`
	// UserID references the owning User row.
	UserID uint64 `gorm:"uniqueIndex:idx_user_setting;not null"`
	// Name is the settings schema key.
	Name string `gorm:"uniqueIndex:idx_user_setting;size:100;not null"`
	// Value is the coerced canonical value.
	Value string `gorm:"size:2048"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
