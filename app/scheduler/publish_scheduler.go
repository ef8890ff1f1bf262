// Package scheduler
package scheduler

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/signmark/niap-ui-base-sub002/config"
	"github.com/signmark/niap-ui-base-sub002/models"
	"github.com/signmark/niap-ui-base-sub002/repository"
	"github.com/signmark/niap-ui-base-sub002/utils"
)

// ContentStore is the minimal content store surface the scheduler needs.
// This keeps the scheduler independent and easy to test.
type ContentStore interface {
	GetContent(ctx context.Context, token, id string) (*models.ContentItem, error)
	GetCampaign(ctx context.Context, token, id string) (*models.Campaign, error)
	ListScheduledContent(ctx context.Context, token string) ([]*models.ContentItem, error)
	UpdateContent(ctx context.Context, token, id string, fields map[string]any) error
}

// Publisher attempts delivery of one content item to one platform
type Publisher interface {
	Publish(ctx context.Context, content *models.ContentItem, platform models.Platform, settings models.PlatformSettings) (models.PublicationResult, error)
}

// TokenSource resolves a system token for content store access
type TokenSource interface {
	SystemToken(ctx context.Context) (string, bool)
}

// PublishScheduler periodically checks for due scheduled content and
// dispatches publication per platform, reconciling each outcome back into
// the content store.
type PublishScheduler struct {
	store      ContentStore
	creds      TokenSource
	publisher  Publisher
	reconciler *StatusReconciler
	logRepo    repository.PublicationLogRepository
	logger     *log.Logger
	interval   time.Duration

	mu      sync.Mutex // guards running and stop
	running bool
	stop    context.CancelFunc

	// tickMu makes ticks single-flight: a tick that outlives the interval
	// blocks the next one from starting instead of interleaving with it.
	tickMu sync.Mutex

	logSink io.Closer
}

// NewPublishScheduler wires the scheduler and its reconciler
func NewPublishScheduler(
	store ContentStore,
	creds TokenSource,
	publisher Publisher,
	logRepo repository.PublicationLogRepository,
	cfg config.SchedulerConfig,
) *PublishScheduler {
	interval := cfg.CheckInterval
	if interval <= 0 {
		interval = time.Minute
	}

	s := &PublishScheduler{
		store:     store,
		creds:     creds,
		publisher: publisher,
		logRepo:   logRepo,
		interval:  interval,
	}

	// Scheduler-specific logger writing to stdout and a rotating file
	if err := s.initSchedulerLogger(cfg.LogDir); err != nil {
		s.logger = log.Default()
		s.logger.Printf("scheduler: failed to initialize file logger: %v", err)
	}

	s.reconciler = NewStatusReconciler(store, s.logger, cfg.KeepPublishedAggregate)
	return s
}

// initSchedulerLogger configures a logger that writes to both stdout and a
// rotating file under the configured directory (falls back to /data for
// containerized environments).
func (s *PublishScheduler) initSchedulerLogger(dir string) error {
	candidates := []string{dir, "/data"}
	if dir == "" {
		candidates = []string{"data", "/data"}
	}
	for _, d := range candidates {
		if err := os.MkdirAll(d, 0o755); err != nil {
			continue
		}
		sink := &lumberjack.Logger{
			Filename:   filepath.Join(d, "scheduler.log"),
			MaxSize:    50, // MB
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}
		s.logSink = sink
		mw := io.MultiWriter(os.Stdout, sink)
		s.logger = log.New(mw, "scheduler ", log.LstdFlags|log.Lmicroseconds|log.LUTC)
		return nil
	}
	return os.ErrPermission
}

// IsRunning reports whether the scheduler loop is active
func (s *PublishScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Interval returns the configured check interval
func (s *PublishScheduler) Interval() time.Duration {
	return s.interval
}

// Start launches the scheduler loop in a background goroutine and returns a
// stop function. The first cycle runs immediately, not after the first
// interval. Starting an already running scheduler is a no-op with a warning.
func (s *PublishScheduler) Start(parent context.Context) func() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Printf("scheduler: already running, ignoring duplicate start")
		return func() { s.Stop() }
	}

	ctx, cancel := context.WithCancel(parent)
	s.running = true
	s.stop = cancel
	s.mu.Unlock()

	s.logger.Printf("scheduler: starting with interval %s", s.interval)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()

	return func() { s.Stop() }
}

// Stop prevents new cycles from starting; an in-flight cycle runs to
// completion. Stopping a stopped scheduler is a no-op with a warning.
func (s *PublishScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		s.logger.Printf("scheduler: not running, ignoring stop")
		return
	}
	s.stop()
	s.running = false
	s.logger.Printf("scheduler: stopped")
	if s.logSink != nil {
		_ = s.logSink.Close()
		s.logSink = nil
	}
}

// runOnce executes a single scheduler cycle. Nothing raised inside a cycle is
// allowed to stop the recurring timer.
func (s *PublishScheduler) runOnce(ctx context.Context) {
	if !s.tickMu.TryLock() {
		s.logger.Printf("scheduler: previous cycle still in flight, skipping")
		schedulerTicksTotal.WithLabelValues("overlapped").Inc()
		return
	}
	defer s.tickMu.Unlock()

	token, ok := s.creds.SystemToken(ctx)
	if !ok {
		s.logger.Printf("scheduler: no system token available, skipping cycle")
		schedulerTicksTotal.WithLabelValues("no_token").Inc()
		return
	}

	scheduled, err := s.store.ListScheduledContent(ctx, token)
	if err != nil {
		s.logger.Printf("scheduler: list scheduled content failed: %v", err)
		schedulerTicksTotal.WithLabelValues("list_failed").Inc()
		return
	}

	now := utils.UTCNow()
	due := make([]*models.ContentItem, 0, len(scheduled))
	for _, item := range scheduled {
		if err := item.Validate(); err != nil {
			s.logger.Printf("scheduler: skipping malformed content item: %v", err)
			continue
		}
		if item.IsDue(now) {
			due = append(due, item)
		}
	}

	if len(due) > 0 {
		s.logger.Printf("scheduler: %d of %d scheduled items due", len(due), len(scheduled))
	}

	// Items are processed sequentially in scheduled_at order; parallel fan-out
	// would amplify duplicate-publish races against the store.
	for _, item := range due {
		s.publishContent(ctx, token, item)
	}

	schedulerTicksTotal.WithLabelValues("completed").Inc()
}

// publishContent dispatches one content item to every platform it targets.
// Platform failures are independent; one platform's failure never aborts the
// remaining platforms.
func (s *PublishScheduler) publishContent(ctx context.Context, token string, item *models.ContentItem) {
	publishInFlight.Inc()
	defer publishInFlight.Dec()

	campaign, err := s.store.GetCampaign(ctx, token, item.CampaignID)
	if err != nil {
		s.logger.Printf("scheduler: fetch campaign %s for content %s failed: %v", item.CampaignID, item.ID, err)
		return
	}
	if campaign == nil {
		s.logger.Printf("scheduler: campaign %s not found for content %s, skipping item", item.CampaignID, item.ID)
		return
	}

	platforms := item.SocialPlatforms.Ordered()
	if len(platforms) == 0 {
		// Nothing to deliver; the item is trivially published
		if err := s.store.UpdateContent(ctx, token, item.ID, map[string]any{
			"status": models.ContentStatusPublished,
		}); err != nil {
			s.logger.Printf("scheduler: mark empty content %s published failed: %v", item.ID, err)
			return
		}
		s.logger.Printf("scheduler: content %s has no target platforms, marked published", item.ID)
		return
	}

	corrID := uuid.New()
	requested := make(pq.StringArray, 0, len(platforms))
	for _, p := range platforms {
		requested = append(requested, string(p))
	}

	for _, platform := range platforms {
		entry := item.SocialPlatforms[platform]

		if existing := ShouldSkip(platform, entry); existing != nil {
			s.logger.Printf("scheduler: content %s already published on %s (%s), skipping", item.ID, platform, *existing.PostURL)
			publishSkipsTotal.WithLabelValues(string(platform)).Inc()
			s.recordAttempt(ctx, corrID, item, requested, *existing, true)
			continue
		}

		var result models.PublicationResult
		settings, configured := campaign.SettingsFor(platform)
		if !configured {
			s.logger.Printf("scheduler: campaign %s has no settings for %s, recording failure for content %s", campaign.ID, platform, item.ID)
			result = models.PublicationResult{
				Platform: platform,
				Status:   models.PlatformStatusFailed,
				Error:    utils.ToPtr("campaign has no settings for platform"),
			}
		} else {
			result, err = s.publisher.Publish(ctx, item, platform, settings)
			if err != nil {
				s.logger.Printf("scheduler: publish content %s to %s failed: %v", item.ID, platform, err)
			}
		}

		publishAttemptsTotal.WithLabelValues(string(platform), string(result.Status)).Inc()

		merged, rerr := s.reconciler.Reconcile(ctx, token, item.ID, result)
		if rerr != nil {
			s.logger.Printf("scheduler: reconcile content %s platform %s failed: %v", item.ID, platform, rerr)
		} else {
			// Later guard checks see the freshly persisted state
			item = merged
		}

		if result.Status == models.PlatformStatusPublished {
			s.logger.Printf("scheduler: content %s published on %s", item.ID, platform)
		} else {
			reason := ""
			if result.Error != nil {
				reason = *result.Error
			}
			s.logger.Printf("scheduler: content %s failed on %s: %s", item.ID, platform, reason)
		}

		s.recordAttempt(ctx, corrID, item, requested, result, false)
	}
}

// recordAttempt writes a publication audit row. Best-effort: audit trouble is
// logged and never breaks the dispatch.
func (s *PublishScheduler) recordAttempt(ctx context.Context, corrID uuid.UUID, item *models.ContentItem, requested pq.StringArray, result models.PublicationResult, skipped bool) {
	if s.logRepo == nil {
		return
	}

	row := &models.PublicationLog{
		CorrelationID:      corrID,
		ContentID:          item.ID,
		CampaignID:         item.CampaignID,
		Platform:           string(result.Platform),
		RequestedPlatforms: requested,
		Status:             result.Status,
		PostURL:            result.PostURL,
		MessageID:          result.MessageID,
		Error:              result.Error,
		Skipped:            skipped,
		AttemptedAt:        utils.UTCNow(),
	}
	if err := s.logRepo.Save(ctx, row); err != nil {
		s.logger.Printf("scheduler: record publication attempt for content %s failed: %v", item.ID, err)
	}
}
