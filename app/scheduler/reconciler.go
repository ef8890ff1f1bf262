package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/signmark/niap-ui-base-sub002/models"
)

// StatusReconciler merges a single platform's publication outcome into the
// persisted platform map without losing sibling platforms' entries, then
// recomputes the item's aggregate status.
type StatusReconciler struct {
	store  ContentStore
	logger *log.Logger

	// keepPublishedAggregate preserves an aggregate published status even when
	// a later merge leaves a platform entry failed. Matches the historical
	// behavior of the pipeline; disable to let late failures downgrade items.
	keepPublishedAggregate bool
}

// NewStatusReconciler creates a reconciler over the given content store
func NewStatusReconciler(store ContentStore, logger *log.Logger, keepPublishedAggregate bool) *StatusReconciler {
	if logger == nil {
		logger = log.Default()
	}
	return &StatusReconciler{
		store:                  store,
		logger:                 logger,
		keepPublishedAggregate: keepPublishedAggregate,
	}
}

// mergePlatforms applies one platform result to a deep copy of the current
// map and verifies no sibling entry was lost, restoring any that were.
// Returned restored names are an anomaly the caller must log. Pure function.
func mergePlatforms(current models.SocialPlatforms, result models.PublicationResult) (models.SocialPlatforms, []models.Platform) {
	updated := current.Clone()
	if updated == nil {
		updated = make(models.SocialPlatforms, 1)
	}

	entry := updated[result.Platform] // zero value when absent
	entry.Status = result.Status
	entry.PublishedAt = result.PublishedAt
	if result.PostURL != nil {
		entry.PostURL = result.PostURL
	}
	if result.MessageID != nil {
		entry.MessageID = result.MessageID
	}
	entry.Error = result.Error
	updated[result.Platform] = entry

	// Every key present before the merge must survive it
	var restored []models.Platform
	for name, before := range current {
		if _, ok := updated[name]; !ok {
			updated[name] = before.Clone()
			restored = append(restored, name)
		}
	}
	return updated, restored
}

// Reconcile re-fetches the item fresh from the store, merges the result into
// its platform map, persists the map in a single update, and recomputes the
// aggregate status. In-memory copies are never trusted over the store.
func (r *StatusReconciler) Reconcile(ctx context.Context, token, contentID string, result models.PublicationResult) (*models.ContentItem, error) {
	fresh, err := r.store.GetContent(ctx, token, contentID)
	if err != nil {
		return nil, fmt.Errorf("re-fetch content %s: %w", contentID, err)
	}
	if fresh == nil {
		return nil, fmt.Errorf("content %s disappeared from store during reconciliation", contentID)
	}

	updated, restored := mergePlatforms(fresh.SocialPlatforms, result)
	for _, name := range restored {
		r.logger.Printf("reconciler: CRITICAL platform entry %s went missing during merge of content %s, restored from snapshot", name, contentID)
	}

	fields := map[string]any{
		"social_platforms": updated,
	}

	status := fresh.Status
	switch {
	case updated.AllPublished():
		status = models.ContentStatusPublished
	case fresh.Status == models.ContentStatusPublished && !r.keepPublishedAggregate:
		status = models.ContentStatusFailed
	}
	if status != fresh.Status {
		fields["status"] = status
	}

	if err := r.store.UpdateContent(ctx, token, contentID, fields); err != nil {
		return nil, fmt.Errorf("persist reconciled platforms for %s: %w", contentID, err)
	}

	fresh.SocialPlatforms = updated
	fresh.Status = status
	return fresh, nil
}
