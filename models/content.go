// Package models contains domain entities and business models for the publishing system
package models

import (
	"fmt"
	"time"

	"github.com/signmark/niap-ui-base-sub002/utils"
)

// ContentStatus represents the coarse lifecycle status of a content item
type ContentStatus string

const (
	ContentStatusDraft     ContentStatus = "draft"
	ContentStatusScheduled ContentStatus = "scheduled"
	ContentStatusPublished ContentStatus = "published"
	ContentStatusFailed    ContentStatus = "failed"
)

// String returns the string representation of the status
func (s ContentStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s ContentStatus) Valid() bool {
	switch s {
	case ContentStatusDraft, ContentStatusScheduled,
		ContentStatusPublished, ContentStatusFailed:
		return true
	default:
		return false
	}
}

// PlatformStatus represents the per-platform publication lifecycle status
type PlatformStatus string

const (
	PlatformStatusPending   PlatformStatus = "pending"
	PlatformStatusPublished PlatformStatus = "published"
	PlatformStatusFailed    PlatformStatus = "failed"
)

// Platform identifies a social network targeted by a content item
type Platform string

const (
	PlatformTelegram  Platform = "telegram"
	PlatformVK        Platform = "vk"
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
)

// KnownPlatforms lists all supported platforms in canonical dispatch order.
// Go maps have no iteration order, so a fixed order stands in for the map
// insertion order of the persisted JSON (the order is not otherwise significant).
var KnownPlatforms = []Platform{
	PlatformTelegram,
	PlatformVK,
	PlatformInstagram,
	PlatformFacebook,
}

// Valid checks if the platform is one of the supported social networks
func (p Platform) Valid() bool {
	switch p {
	case PlatformTelegram, PlatformVK, PlatformInstagram, PlatformFacebook:
		return true
	default:
		return false
	}
}

func (p Platform) String() string {
	return string(p)
}

// PlatformEntry is one platform's publication lifecycle record within a content item
type PlatformEntry struct {
	Status      PlatformStatus `json:"status"`
	PublishedAt *time.Time     `json:"publishedAt,omitempty"`
	PostURL     *string        `json:"postUrl,omitempty"`
	MessageID   *string        `json:"messageId,omitempty"`
	Error       *string        `json:"error,omitempty"`
}

// HasPostURL reports whether the entry carries a non-blank post URL
func (e PlatformEntry) HasPostURL() bool {
	return !utils.IsBlankPtr(e.PostURL)
}

// IsAuthoritativelyPublished reports whether this entry is a terminal success.
// A published status alone is not trusted: an entry with no post URL is a
// data-integrity anomaly and remains eligible for republication.
func (e PlatformEntry) IsAuthoritativelyPublished() bool {
	return e.Status == PlatformStatusPublished && e.HasPostURL()
}

// Clone returns a deep copy of the entry, including pointed-to values
func (e PlatformEntry) Clone() PlatformEntry {
	out := PlatformEntry{Status: e.Status}
	if e.PublishedAt != nil {
		t := *e.PublishedAt
		out.PublishedAt = &t
	}
	if e.PostURL != nil {
		s := *e.PostURL
		out.PostURL = &s
	}
	if e.MessageID != nil {
		s := *e.MessageID
		out.MessageID = &s
	}
	if e.Error != nil {
		s := *e.Error
		out.Error = &s
	}
	return out
}

// SocialPlatforms maps platform name to its publication record.
// Persisted in the content store as a JSON object keyed by platform name.
type SocialPlatforms map[Platform]PlatformEntry

// Clone returns a deep copy of the map; entries are cloned, never aliased
func (sp SocialPlatforms) Clone() SocialPlatforms {
	if sp == nil {
		return nil
	}
	out := make(SocialPlatforms, len(sp))
	for k, v := range sp {
		out[k] = v.Clone()
	}
	return out
}

// Ordered returns the platforms present in the map in canonical dispatch order,
// with any unrecognized keys appended afterwards so no entry is ever skipped.
func (sp SocialPlatforms) Ordered() []Platform {
	out := make([]Platform, 0, len(sp))
	for _, p := range KnownPlatforms {
		if _, ok := sp[p]; ok {
			out = append(out, p)
		}
	}
	for p := range sp {
		if !p.Valid() {
			out = append(out, p)
		}
	}
	return out
}

// AllPublished reports whether every entry in the map has published status
func (sp SocialPlatforms) AllPublished() bool {
	if len(sp) == 0 {
		return false
	}
	for _, e := range sp {
		if e.Status != PlatformStatusPublished {
			return false
		}
	}
	return true
}

// ContentItem is a unit of content scheduled for publication.
// It lives in the content store; this process never owns it, only reconciles it.
type ContentItem struct {
	ID              string          `json:"id"`
	CampaignID      string          `json:"campaign_id"`
	Title           *string         `json:"title,omitempty"`
	Content         *string         `json:"content,omitempty"`
	Status          ContentStatus   `json:"status"`
	ScheduledAt     *time.Time      `json:"scheduled_at"`
	SocialPlatforms SocialPlatforms `json:"social_platforms"`
	CreatedAt       *time.Time      `json:"created_at,omitempty"`
	UpdatedAt       *time.Time      `json:"updated_at,omitempty"`
}

// IsDue reports whether the item is scheduled and its time has arrived
func (c *ContentItem) IsDue(now time.Time) bool {
	return c.Status == ContentStatusScheduled &&
		c.ScheduledAt != nil &&
		!c.ScheduledAt.After(now)
}

// PublicationResult is the outcome of one platform publication attempt
type PublicationResult struct {
	Platform    Platform       `json:"platform"`
	Status      PlatformStatus `json:"status"`
	PostURL     *string        `json:"postUrl,omitempty"`
	MessageID   *string        `json:"messageId,omitempty"`
	PublishedAt *time.Time     `json:"publishedAt,omitempty"`
	Error       *string        `json:"error,omitempty"`
}

// FailedResult builds a failed publication result for the platform
func FailedResult(platform Platform, err error) PublicationResult {
	msg := "publication failed"
	if err != nil {
		msg = err.Error()
	}
	return PublicationResult{
		Platform: platform,
		Status:   PlatformStatusFailed,
		Error:    &msg,
	}
}

// ResultFromEntry mirrors an existing platform entry as a publication result,
// used when the duplication guard short-circuits a republication attempt.
func ResultFromEntry(platform Platform, entry PlatformEntry) PublicationResult {
	clone := entry.Clone()
	return PublicationResult{
		Platform:    platform,
		Status:      clone.Status,
		PostURL:     clone.PostURL,
		MessageID:   clone.MessageID,
		PublishedAt: clone.PublishedAt,
		Error:       clone.Error,
	}
}

// Validate performs basic sanity checks on a content item fetched from the store
func (c *ContentItem) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("content item has empty id")
	}
	if !c.Status.Valid() {
		return fmt.Errorf("content item %s has invalid status %q", c.ID, c.Status)
	}
	return nil
}
