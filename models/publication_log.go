package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PublicationLog records a single platform publication attempt made by the
// scheduler. Attempts within one content dispatch share a correlation ID.
type PublicationLog struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	CorrelationID      uuid.UUID      `gorm:"type:uuid;not null;index:idx_publication_logs_correlation_id" json:"correlation_id"`
	ContentID          string         `gorm:"size:64;not null;index:idx_publication_logs_content_id" json:"content_id"`
	CampaignID         string         `gorm:"size:64;not null;index:idx_publication_logs_campaign_id" json:"campaign_id"`
	Platform           string         `gorm:"size:32;not null;index:idx_publication_logs_platform" json:"platform"`
	RequestedPlatforms pq.StringArray `gorm:"type:text[]" json:"requested_platforms"`
	Status             PlatformStatus `gorm:"size:16;not null;index:idx_publication_logs_status" json:"status"`
	PostURL            *string        `gorm:"type:text" json:"post_url,omitempty"`
	MessageID          *string        `gorm:"size:128" json:"message_id,omitempty"`
	Error              *string        `gorm:"type:text" json:"error,omitempty"`
	Skipped            bool           `gorm:"default:false" json:"skipped"`
	AttemptedAt        time.Time      `gorm:"not null;index:idx_publication_logs_attempted_at" json:"attempted_at"`
	CreatedAt          time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

func (PublicationLog) TableName() string { return "publication_logs" }

// PublicationLogFilter provides filter fields for repository queries
type PublicationLogFilter struct {
	ID              *uint
	CorrelationID   *uuid.UUID
	ContentID       *string
	CampaignID      *string
	Platform        *string
	Status          *PlatformStatus
	Skipped         *bool
	AttemptedAfter  *time.Time
	AttemptedBefore *time.Time
}
