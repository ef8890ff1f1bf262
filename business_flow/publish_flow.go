// Package businessflow contains the core business logic and use cases for publication workflows
package businessflow

import (
	"context"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/signmark/niap-ui-base-sub002/app/dto"
	"github.com/signmark/niap-ui-base-sub002/app/scheduler"
	"github.com/signmark/niap-ui-base-sub002/config"
	"github.com/signmark/niap-ui-base-sub002/models"
	"github.com/signmark/niap-ui-base-sub002/repository"
	"github.com/signmark/niap-ui-base-sub002/utils"
)

// PublishFlow handles the publication read-side business logic
type PublishFlow interface {
	ListScheduledContent(ctx context.Context, req *dto.ListScheduledContentRequest) ([]dto.ScheduledContentItem, error)
	SchedulerStatus(ctx context.Context) (*dto.SchedulerStatusResponse, error)
	DownloadPublicationReportExcel(ctx context.Context, campaignID string) (string, []byte, error)
}

// PublishFlowImpl implements the publication business flow
type PublishFlowImpl struct {
	store     scheduler.ContentStore
	creds     scheduler.TokenSource
	sched     *scheduler.PublishScheduler
	logRepo   repository.PublicationLogRepository
	schedConf config.SchedulerConfig
}

// NewPublishFlow creates a new publication flow instance
func NewPublishFlow(
	store scheduler.ContentStore,
	creds scheduler.TokenSource,
	sched *scheduler.PublishScheduler,
	logRepo repository.PublicationLogRepository,
	schedConf config.SchedulerConfig,
) PublishFlow {
	return &PublishFlowImpl{
		store:     store,
		creds:     creds,
		sched:     sched,
		logRepo:   logRepo,
		schedConf: schedConf,
	}
}

// ListScheduledContent returns the scheduled content belonging to the user's
// campaigns, optionally narrowed to one campaign.
func (f *PublishFlowImpl) ListScheduledContent(ctx context.Context, req *dto.ListScheduledContentRequest) ([]dto.ScheduledContentItem, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, NewBusinessError("VALIDATION_ERROR", "userId query parameter is required", ErrUserIDRequired)
	}

	token, ok := f.creds.SystemToken(ctx)
	if !ok {
		return nil, NewBusinessError("NO_SYSTEM_TOKEN", "Failed to obtain content store access", ErrNoSystemToken)
	}

	scheduled, err := f.store.ListScheduledContent(ctx, token)
	if err != nil {
		return nil, NewBusinessError("FETCH_SCHEDULED_FAILED", "Failed to fetch scheduled content", err)
	}

	// Ownership is resolved through the owning campaign; campaigns are
	// fetched once per distinct id.
	owned := make(map[string]bool)
	items := make([]dto.ScheduledContentItem, 0, len(scheduled))
	for _, item := range scheduled {
		if req.CampaignID != "" && item.CampaignID != req.CampaignID {
			continue
		}
		ok, seen := owned[item.CampaignID]
		if !seen {
			campaign, err := f.store.GetCampaign(ctx, token, item.CampaignID)
			if err != nil {
				return nil, NewBusinessError("FETCH_CAMPAIGN_FAILED", "Failed to fetch campaign", err)
			}
			ok = campaign != nil && campaign.UserID == userID
			owned[item.CampaignID] = ok
		}
		if !ok {
			continue
		}
		items = append(items, contentItemView(item))
	}

	return items, nil
}

// SchedulerStatus reports the scheduler's runtime state together with the
// scheduled-content snapshot. The snapshot is best effort: when no store
// credentials are available the liveness flags are still returned.
func (f *PublishFlowImpl) SchedulerStatus(ctx context.Context) (*dto.SchedulerStatusResponse, error) {
	resp := &dto.SchedulerStatusResponse{
		IsRunning:              false,
		CheckIntervalMs:        f.schedConf.CheckInterval.Milliseconds(),
		KeepPublishedAggregate: f.schedConf.KeepPublishedAggregate,
	}
	if f.sched != nil {
		resp.IsRunning = f.sched.IsRunning()
		resp.CheckIntervalMs = f.sched.Interval().Milliseconds()
	}

	token, ok := f.creds.SystemToken(ctx)
	if !ok {
		return resp, nil
	}
	scheduled, err := f.store.ListScheduledContent(ctx, token)
	if err != nil {
		return resp, nil
	}
	resp.ScheduledContent = make([]dto.ScheduledContentItem, 0, len(scheduled))
	for _, item := range scheduled {
		resp.ScheduledContent = append(resp.ScheduledContent, contentItemView(item))
	}
	return resp, nil
}

func contentItemView(item *models.ContentItem) dto.ScheduledContentItem {
	return dto.ScheduledContentItem{
		ID:              item.ID,
		CampaignID:      item.CampaignID,
		Title:           item.Title,
		Status:          item.Status,
		ScheduledAt:     item.ScheduledAt,
		SocialPlatforms: item.SocialPlatforms.Clone(),
	}
}

// DownloadPublicationReportExcel builds an xlsx report of the campaign's
// publication attempts, newest first.
func (f *PublishFlowImpl) DownloadPublicationReportExcel(ctx context.Context, campaignID string) (string, []byte, error) {
	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return "", nil, NewBusinessError("VALIDATION_ERROR", "campaignId must not be empty", ErrCampaignIDRequired)
	}

	rows, err := f.logRepo.ListByCampaign(ctx, campaignID, 10000, 0)
	if err != nil {
		return "", nil, NewBusinessError("FETCH_PUBLICATION_LOGS_FAILED", "Failed to fetch publication logs", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := xl.GetSheetName(0)
	header := []string{"attempted_at", "content_id", "platform", "status", "skipped", "post_url", "message_id", "error", "correlation_id"}
	_ = xl.SetSheetRow(sheet, "A1", &header)

	for ri, r := range rows {
		record := []string{
			utils.TimeToUTC(r.AttemptedAt).Format("2006-01-02 15:04:05"),
			r.ContentID,
			r.Platform,
			string(r.Status),
			boolCell(r.Skipped),
			deref(r.PostURL),
			deref(r.MessageID),
			deref(r.Error),
			r.CorrelationID.String(),
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
		_ = xl.SetSheetRow(sheet, cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}
	filename := "publication_report_" + campaignID + ".xlsx"
	return filename, buf.Bytes(), nil
}

func boolCell(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
