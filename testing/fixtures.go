// Package testing provides test utilities and fixtures for the publication pipeline
package testing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/signmark/niap-ui-base-sub002/models"
	"github.com/signmark/niap-ui-base-sub002/utils"
)

// NewScheduledContent creates a content item due for publication with the
// given platforms in pending state
func NewScheduledContent(campaignID string, platforms ...models.Platform) *models.ContentItem {
	entries := make(models.SocialPlatforms, len(platforms))
	for _, p := range platforms {
		entries[p] = models.PlatformEntry{Status: models.PlatformStatusPending}
	}
	return &models.ContentItem{
		ID:              uuid.NewString(),
		CampaignID:      campaignID,
		Title:           utils.ToPtr(fmt.Sprintf("Post %04d", rand.Intn(10000))),
		Content:         utils.ToPtr("Test post body"),
		Status:          models.ContentStatusScheduled,
		ScheduledAt:     utils.ToPtr(utils.UTCNow().Add(-time.Minute)),
		SocialPlatforms: entries,
	}
}

// NewCampaign creates a campaign with settings for the given platforms
func NewCampaign(userID string, platforms ...models.Platform) *models.Campaign {
	settings := make(models.SocialMediaSettings, len(platforms))
	for _, p := range platforms {
		settings[p] = models.PlatformSettings{
			Token:  "token-" + string(p),
			ChatID: "chat-" + string(p),
		}
	}
	return &models.Campaign{
		ID:                  uuid.NewString(),
		Name:                "Test campaign",
		UserID:              userID,
		SocialMediaSettings: settings,
	}
}

// PublishedEntry builds a platform entry that is authoritatively published
func PublishedEntry(postURL string) models.PlatformEntry {
	return models.PlatformEntry{
		Status:      models.PlatformStatusPublished,
		PublishedAt: utils.UTCNowPtr(),
		PostURL:     utils.ToPtr(postURL),
	}
}
