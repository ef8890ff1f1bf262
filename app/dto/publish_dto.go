package dto

import (
	"time"

	"github.com/signmark/niap-ui-base-sub002/models"
)

// ListScheduledContentRequest carries the query parameters for listing a
// user's scheduled content
type ListScheduledContentRequest struct {
	UserID     string `query:"userId" validate:"required"`
	CampaignID string `query:"campaignId" validate:"omitempty"`
}

// ScheduledContentItem is the API view of one scheduled content item
type ScheduledContentItem struct {
	ID              string                 `json:"id"`
	CampaignID      string                 `json:"campaignId"`
	Title           *string                `json:"title,omitempty"`
	Status          models.ContentStatus   `json:"status"`
	ScheduledAt     *time.Time             `json:"scheduledAt"`
	SocialPlatforms models.SocialPlatforms `json:"socialPlatforms"`
}

// SchedulerStatusResponse describes the scheduler's current state together
// with a snapshot of the content currently waiting for publication. The
// snapshot is nil when no store credentials could be obtained.
type SchedulerStatusResponse struct {
	IsRunning              bool                   `json:"isRunning"`
	CheckIntervalMs        int64                  `json:"checkIntervalMs"`
	KeepPublishedAggregate bool                   `json:"keepPublishedAggregate"`
	ScheduledContent       []ScheduledContentItem `json:"scheduledContent"`
}

// PublicationReportRequest carries the query parameters for the xlsx report
type PublicationReportRequest struct {
	CampaignID string `query:"campaignId" validate:"required"`
}
