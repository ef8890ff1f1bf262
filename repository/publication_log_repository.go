package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/signmark/niap-ui-base-sub002/models"
	"gorm.io/gorm"
)

// PublicationLogRepositoryImpl implements the PublicationLogRepository interface
type PublicationLogRepositoryImpl struct {
	*BaseRepository[models.PublicationLog, models.PublicationLogFilter]
}

// NewPublicationLogRepository creates a new publication log repository
func NewPublicationLogRepository(db *gorm.DB) PublicationLogRepository {
	return &PublicationLogRepositoryImpl{
		BaseRepository: NewBaseRepository[models.PublicationLog, models.PublicationLogFilter](db),
	}
}

func (r *PublicationLogRepositoryImpl) applyFilter(db *gorm.DB, filter models.PublicationLogFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.CorrelationID != nil {
		db = db.Where("correlation_id = ?", *filter.CorrelationID)
	}
	if filter.ContentID != nil {
		db = db.Where("content_id = ?", *filter.ContentID)
	}
	if filter.CampaignID != nil {
		db = db.Where("campaign_id = ?", *filter.CampaignID)
	}
	if filter.Platform != nil {
		db = db.Where("platform = ?", *filter.Platform)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	if filter.Skipped != nil {
		db = db.Where("skipped = ?", *filter.Skipped)
	}
	if filter.AttemptedAfter != nil {
		db = db.Where("attempted_at >= ?", *filter.AttemptedAfter)
	}
	if filter.AttemptedBefore != nil {
		db = db.Where("attempted_at <= ?", *filter.AttemptedBefore)
	}
	return db
}

// ByFilter retrieves publication logs based on filter criteria
func (r *PublicationLogRepositoryImpl) ByFilter(ctx context.Context, filter models.PublicationLogFilter, orderBy string, limit, offset int) ([]*models.PublicationLog, error) {
	db := r.getDB(ctx)

	query := r.applyFilter(db, filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var logs []*models.PublicationLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// Count returns the number of publication logs matching the filter
func (r *PublicationLogRepositoryImpl) Count(ctx context.Context, filter models.PublicationLogFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	query := r.applyFilter(db.Model(&models.PublicationLog{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any publication log matching the filter exists
func (r *PublicationLogRepositoryImpl) Exists(ctx context.Context, filter models.PublicationLogFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ByCorrelationID retrieves all attempts of one content dispatch
func (r *PublicationLogRepositoryImpl) ByCorrelationID(ctx context.Context, correlationID uuid.UUID) ([]*models.PublicationLog, error) {
	filter := models.PublicationLogFilter{CorrelationID: &correlationID}
	return r.ByFilter(ctx, filter, "attempted_at ASC, id ASC", 0, 0)
}

// ListByContent retrieves publication logs for a content item, newest first
func (r *PublicationLogRepositoryImpl) ListByContent(ctx context.Context, contentID string, limit, offset int) ([]*models.PublicationLog, error) {
	filter := models.PublicationLogFilter{ContentID: &contentID}
	return r.ByFilter(ctx, filter, "attempted_at DESC, id DESC", limit, offset)
}

// ListByCampaign retrieves publication logs for a campaign, newest first
func (r *PublicationLogRepositoryImpl) ListByCampaign(ctx context.Context, campaignID string, limit, offset int) ([]*models.PublicationLog, error) {
	filter := models.PublicationLogFilter{CampaignID: &campaignID}
	return r.ByFilter(ctx, filter, "attempted_at DESC, id DESC", limit, offset)
}

// ListSince retrieves publication logs attempted at or after the given time
func (r *PublicationLogRepositoryImpl) ListSince(ctx context.Context, since time.Time, limit int) ([]*models.PublicationLog, error) {
	filter := models.PublicationLogFilter{AttemptedAfter: &since}
	return r.ByFilter(ctx, filter, "attempted_at ASC, id ASC", limit, 0)
}
