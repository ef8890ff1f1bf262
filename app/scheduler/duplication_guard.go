// Package scheduler
package scheduler

import (
	"github.com/signmark/niap-ui-base-sub002/models"
)

// ShouldSkip decides whether a platform entry must not be republished.
// It returns a result mirroring the existing entry when the entry already
// carries a published status AND a non-blank post URL, without any network
// call. A published status with an empty URL is a data-integrity anomaly:
// the entry is treated as not actually published and passes through to
// republication. Trust the URL, distrust the status alone.
func ShouldSkip(platform models.Platform, entry models.PlatformEntry) *models.PublicationResult {
	if !entry.IsAuthoritativelyPublished() {
		return nil
	}
	result := models.ResultFromEntry(platform, entry)
	return &result
}
