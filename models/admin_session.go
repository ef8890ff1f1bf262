package models

import (
	"time"

	"github.com/signmark/niap-ui-base-sub002/utils"
)

// AdminSession persists a content-store token obtained through an interactive
// login. The credential resolver's last tier looks these up for the designated
// fallback identity when no fresher token source is available.
type AdminSession struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         string    `gorm:"size:64;not null;index:idx_admin_sessions_user_id" json:"user_id"`
	Token          string    `gorm:"size:512;not null;uniqueIndex:idx_admin_sessions_token" json:"-"` // Never serialize token
	IsActive       *bool     `gorm:"default:true;index:idx_admin_sessions_is_active" json:"is_active"`
	CreatedAt      time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	LastAccessedAt time.Time `gorm:"default:CURRENT_TIMESTAMP;index:idx_admin_sessions_last_accessed" json:"last_accessed_at"`
	ExpiresAt      time.Time `gorm:"not null;index:idx_admin_sessions_expires_at" json:"expires_at"`
}

func (AdminSession) TableName() string {
	return "admin_sessions"
}

// AdminSessionFilter represents filter criteria for session queries
type AdminSessionFilter struct {
	ID            *uint
	UserID        *string
	IsActive      *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	ExpiresAfter  *time.Time
	ExpiresBefore *time.Time
}

func (s *AdminSession) IsExpired() bool {
	return utils.IsExpired(s.ExpiresAt)
}

func (s *AdminSession) IsValid() bool {
	return utils.IsTrue(s.IsActive) && !s.IsExpired()
}
