package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signmark/niap-ui-base-sub002/models"
	"github.com/signmark/niap-ui-base-sub002/utils"
)

// fakeContentStore is an in-memory ContentStore for reconciler and scheduler tests
type fakeContentStore struct {
	contents  map[string]*models.ContentItem
	campaigns map[string]*models.Campaign

	getContentErr error
	listErr       error
	updateErr     error

	listCalls   int
	updateCalls int
	lastUpdate  map[string]any
}

func newFakeContentStore() *fakeContentStore {
	return &fakeContentStore{
		contents:  make(map[string]*models.ContentItem),
		campaigns: make(map[string]*models.Campaign),
	}
}

func (f *fakeContentStore) GetContent(_ context.Context, _, id string) (*models.ContentItem, error) {
	if f.getContentErr != nil {
		return nil, f.getContentErr
	}
	item, ok := f.contents[id]
	if !ok {
		return nil, nil
	}
	clone := *item
	clone.SocialPlatforms = item.SocialPlatforms.Clone()
	return &clone, nil
}

func (f *fakeContentStore) GetCampaign(_ context.Context, _, id string) (*models.Campaign, error) {
	campaign, ok := f.campaigns[id]
	if !ok {
		return nil, nil
	}
	return campaign, nil
}

func (f *fakeContentStore) ListScheduledContent(_ context.Context, _ string) ([]*models.ContentItem, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*models.ContentItem, 0, len(f.contents))
	for _, item := range f.contents {
		if item.Status == models.ContentStatusScheduled {
			clone := *item
			clone.SocialPlatforms = item.SocialPlatforms.Clone()
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeContentStore) UpdateContent(_ context.Context, _, id string, fields map[string]any) error {
	f.updateCalls++
	f.lastUpdate = fields
	if f.updateErr != nil {
		return f.updateErr
	}
	item, ok := f.contents[id]
	if !ok {
		return errors.New("unknown content")
	}
	if sp, ok := fields["social_platforms"].(models.SocialPlatforms); ok {
		item.SocialPlatforms = sp.Clone()
	}
	if status, ok := fields["status"].(models.ContentStatus); ok {
		item.Status = status
	}
	return nil
}

func scheduledItem(id string, platforms models.SocialPlatforms) *models.ContentItem {
	return &models.ContentItem{
		ID:              id,
		CampaignID:      "camp-1",
		Status:          models.ContentStatusScheduled,
		ScheduledAt:     utils.ToPtr(utils.UTCNow().Add(-time.Minute)),
		SocialPlatforms: platforms,
	}
}

func TestMergePlatformsPreservesSiblingEntries(t *testing.T) {
	current := models.SocialPlatforms{
		models.PlatformTelegram: {Status: models.PlatformStatusPending},
		models.PlatformVK:       {Status: models.PlatformStatusPending},
	}
	result := models.PublicationResult{
		Platform:    models.PlatformTelegram,
		Status:      models.PlatformStatusPublished,
		PostURL:     utils.ToPtr("https://t.me/c/1/1"),
		PublishedAt: utils.UTCNowPtr(),
	}

	updated, restored := mergePlatforms(current, result)

	assert.Empty(t, restored)
	assert.Len(t, updated, 2)
	assert.Equal(t, models.PlatformStatusPublished, updated[models.PlatformTelegram].Status)
	assert.Equal(t, models.PlatformStatusPending, updated[models.PlatformVK].Status)

	// The input map must not be mutated
	assert.Equal(t, models.PlatformStatusPending, current[models.PlatformTelegram].Status)
}

func TestMergePlatformsKeepsExistingURLWhenResultHasNone(t *testing.T) {
	current := models.SocialPlatforms{
		models.PlatformTelegram: {
			Status:    models.PlatformStatusPublished,
			PostURL:   utils.ToPtr("https://t.me/c/1/1"),
			MessageID: utils.ToPtr("7"),
		},
	}
	result := models.PublicationResult{
		Platform: models.PlatformTelegram,
		Status:   models.PlatformStatusFailed,
		Error:    utils.ToPtr("timeout"),
	}

	updated, _ := mergePlatforms(current, result)

	entry := updated[models.PlatformTelegram]
	assert.Equal(t, models.PlatformStatusFailed, entry.Status)
	require.NotNil(t, entry.PostURL)
	assert.Equal(t, "https://t.me/c/1/1", *entry.PostURL)
	require.NotNil(t, entry.MessageID)
	assert.Equal(t, "7", *entry.MessageID)
	require.NotNil(t, entry.Error)
	assert.Equal(t, "timeout", *entry.Error)
}

func TestMergePlatformsClearsStaleError(t *testing.T) {
	current := models.SocialPlatforms{
		models.PlatformVK: {
			Status: models.PlatformStatusFailed,
			Error:  utils.ToPtr("bad token"),
		},
	}
	result := models.PublicationResult{
		Platform:    models.PlatformVK,
		Status:      models.PlatformStatusPublished,
		PostURL:     utils.ToPtr("https://vk.com/wall-1_1"),
		PublishedAt: utils.UTCNowPtr(),
	}

	updated, _ := mergePlatforms(current, result)

	entry := updated[models.PlatformVK]
	assert.Equal(t, models.PlatformStatusPublished, entry.Status)
	assert.Nil(t, entry.Error)
}

func TestReconcileRefetchesAndPersistsOnce(t *testing.T) {
	store := newFakeContentStore()
	store.contents["c1"] = scheduledItem("c1", models.SocialPlatforms{
		models.PlatformTelegram: {Status: models.PlatformStatusPending},
		models.PlatformVK:       {Status: models.PlatformStatusPending},
	})

	r := NewStatusReconciler(store, nil, true)
	result := models.PublicationResult{
		Platform:    models.PlatformTelegram,
		Status:      models.PlatformStatusPublished,
		PostURL:     utils.ToPtr("https://t.me/c/1/1"),
		PublishedAt: utils.UTCNowPtr(),
	}

	merged, err := r.Reconcile(context.Background(), "tok", "c1", result)
	require.NoError(t, err)
	assert.Equal(t, 1, store.updateCalls)

	// vk survives the merge, aggregate stays scheduled
	assert.Len(t, merged.SocialPlatforms, 2)
	assert.Equal(t, models.ContentStatusScheduled, merged.Status)
	_, hasStatus := store.lastUpdate["status"]
	assert.False(t, hasStatus)
}

func TestReconcileAggregatePublishedWhenAllEntriesPublished(t *testing.T) {
	store := newFakeContentStore()
	store.contents["c1"] = scheduledItem("c1", models.SocialPlatforms{
		models.PlatformTelegram: {
			Status:  models.PlatformStatusPublished,
			PostURL: utils.ToPtr("https://t.me/c/1/1"),
		},
		models.PlatformVK: {Status: models.PlatformStatusPending},
	})

	r := NewStatusReconciler(store, nil, true)
	result := models.PublicationResult{
		Platform:    models.PlatformVK,
		Status:      models.PlatformStatusPublished,
		PostURL:     utils.ToPtr("https://vk.com/wall-1_1"),
		PublishedAt: utils.UTCNowPtr(),
	}

	merged, err := r.Reconcile(context.Background(), "tok", "c1", result)
	require.NoError(t, err)
	assert.Equal(t, models.ContentStatusPublished, merged.Status)
	assert.Equal(t, models.ContentStatusPublished, store.lastUpdate["status"])
}

func TestReconcilePublishedAggregateIsSticky(t *testing.T) {
	item := scheduledItem("c1", models.SocialPlatforms{
		models.PlatformTelegram: {
			Status:  models.PlatformStatusPublished,
			PostURL: utils.ToPtr("https://t.me/c/1/1"),
		},
	})
	item.Status = models.ContentStatusPublished

	failure := models.PublicationResult{
		Platform: models.PlatformTelegram,
		Status:   models.PlatformStatusFailed,
		Error:    utils.ToPtr("late failure"),
	}

	t.Run("kept by default", func(t *testing.T) {
		store := newFakeContentStore()
		clone := *item
		clone.SocialPlatforms = item.SocialPlatforms.Clone()
		store.contents["c1"] = &clone

		r := NewStatusReconciler(store, nil, true)
		merged, err := r.Reconcile(context.Background(), "tok", "c1", failure)
		require.NoError(t, err)
		assert.Equal(t, models.ContentStatusPublished, merged.Status)
	})

	t.Run("downgraded when disabled", func(t *testing.T) {
		store := newFakeContentStore()
		clone := *item
		clone.SocialPlatforms = item.SocialPlatforms.Clone()
		store.contents["c1"] = &clone

		r := NewStatusReconciler(store, nil, false)
		merged, err := r.Reconcile(context.Background(), "tok", "c1", failure)
		require.NoError(t, err)
		assert.Equal(t, models.ContentStatusFailed, merged.Status)
	})
}

func TestReconcileErrorsWhenContentGone(t *testing.T) {
	store := newFakeContentStore()

	r := NewStatusReconciler(store, nil, true)
	_, err := r.Reconcile(context.Background(), "tok", "missing", models.PublicationResult{
		Platform: models.PlatformTelegram,
		Status:   models.PlatformStatusFailed,
	})
	require.Error(t, err)
	assert.Zero(t, store.updateCalls)
}
