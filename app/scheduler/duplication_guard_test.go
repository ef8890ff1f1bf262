package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signmark/niap-ui-base-sub002/models"
	"github.com/signmark/niap-ui-base-sub002/utils"
)

func TestShouldSkip(t *testing.T) {
	tests := []struct {
		name  string
		entry models.PlatformEntry
		skip  bool
	}{
		{
			name: "published with post url is skipped",
			entry: models.PlatformEntry{
				Status:  models.PlatformStatusPublished,
				PostURL: utils.ToPtr("https://t.me/c/1/1"),
			},
			skip: true,
		},
		{
			name: "published without post url is republished",
			entry: models.PlatformEntry{
				Status: models.PlatformStatusPublished,
			},
			skip: false,
		},
		{
			name: "published with blank post url is republished",
			entry: models.PlatformEntry{
				Status:  models.PlatformStatusPublished,
				PostURL: utils.ToPtr("   "),
			},
			skip: false,
		},
		{
			name: "pending with post url is republished",
			entry: models.PlatformEntry{
				Status:  models.PlatformStatusPending,
				PostURL: utils.ToPtr("https://t.me/c/1/1"),
			},
			skip: false,
		},
		{
			name: "failed entry is republished",
			entry: models.PlatformEntry{
				Status: models.PlatformStatusFailed,
				Error:  utils.ToPtr("bad token"),
			},
			skip: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ShouldSkip(models.PlatformTelegram, tt.entry)
			if !tt.skip {
				assert.Nil(t, result)
				return
			}
			require.NotNil(t, result)
			assert.Equal(t, models.PlatformTelegram, result.Platform)
			assert.Equal(t, models.PlatformStatusPublished, result.Status)
			require.NotNil(t, result.PostURL)
			assert.Equal(t, *tt.entry.PostURL, *result.PostURL)
		})
	}
}

func TestShouldSkipMirrorsEntryDetails(t *testing.T) {
	publishedAt := utils.UTCNowPtr()
	entry := models.PlatformEntry{
		Status:      models.PlatformStatusPublished,
		PublishedAt: publishedAt,
		PostURL:     utils.ToPtr("https://vk.com/wall-1_1"),
		MessageID:   utils.ToPtr("42"),
	}

	result := ShouldSkip(models.PlatformVK, entry)
	require.NotNil(t, result)
	assert.Equal(t, models.PlatformVK, result.Platform)
	require.NotNil(t, result.MessageID)
	assert.Equal(t, "42", *result.MessageID)
	require.NotNil(t, result.PublishedAt)
	assert.True(t, result.PublishedAt.Equal(*publishedAt))
}
