package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/signmark/niap-ui-base-sub002/models"
	"github.com/signmark/niap-ui-base-sub002/utils"
	"gorm.io/gorm"
)

// AdminSessionRepositoryImpl implements AdminSessionRepository interface
type AdminSessionRepositoryImpl struct {
	*BaseRepository[models.AdminSession, models.AdminSessionFilter]
}

// NewAdminSessionRepository creates a new admin session repository
func NewAdminSessionRepository(db *gorm.DB) AdminSessionRepository {
	return &AdminSessionRepositoryImpl{
		BaseRepository: NewBaseRepository[models.AdminSession, models.AdminSessionFilter](db),
	}
}

func (r *AdminSessionRepositoryImpl) applyFilter(db *gorm.DB, filter models.AdminSessionFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UserID != nil {
		db = db.Where("user_id = ?", *filter.UserID)
	}
	if filter.IsActive != nil {
		db = db.Where("is_active = ?", *filter.IsActive)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at <= ?", *filter.CreatedBefore)
	}
	if filter.ExpiresAfter != nil {
		db = db.Where("expires_at >= ?", *filter.ExpiresAfter)
	}
	if filter.ExpiresBefore != nil {
		db = db.Where("expires_at <= ?", *filter.ExpiresBefore)
	}
	return db
}

// ByFilter retrieves admin sessions based on filter criteria
func (r *AdminSessionRepositoryImpl) ByFilter(ctx context.Context, filter models.AdminSessionFilter, orderBy string, limit, offset int) ([]*models.AdminSession, error) {
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

	var sessions []*models.AdminSession
	if err := query.Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// Count returns the number of admin sessions matching the filter
func (r *AdminSessionRepositoryImpl) Count(ctx context.Context, filter models.AdminSessionFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	query := r.applyFilter(db.Model(&models.AdminSession{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any admin session matching the filter exists
func (r *AdminSessionRepositoryImpl) Exists(ctx context.Context, filter models.AdminSessionFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// LatestActiveByUser retrieves the most recently established usable session for a user
func (r *AdminSessionRepositoryImpl) LatestActiveByUser(ctx context.Context, userID string) (*models.AdminSession, error) {
	db := r.getDB(ctx)

	var session models.AdminSession
	err := db.Where("user_id = ? AND is_active = ? AND expires_at > ?",
		userID, true, utils.UTCNow()).
		Order("created_at DESC").
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find session by user: %w", err)
	}

	return &session, nil
}

// ByToken retrieves a usable session by its token
func (r *AdminSessionRepositoryImpl) ByToken(ctx context.Context, token string) (*models.AdminSession, error) {
	db := r.getDB(ctx)

	var session models.AdminSession
	err := db.Where("token = ? AND is_active = ? AND expires_at > ?",
		token, true, utils.UTCNow()).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find session by token: %w", err)
	}

	return &session, nil
}

// DeactivateByUser marks all of a user's sessions inactive
func (r *AdminSessionRepositoryImpl) DeactivateByUser(ctx context.Context, userID string) error {
	db := r.getDB(ctx)
	return db.Model(&models.AdminSession{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"is_active":        false,
			"last_accessed_at": utils.UTCNow(),
		}).Error
}

// TouchLastAccessed bumps the session's last access timestamp
func (r *AdminSessionRepositoryImpl) TouchLastAccessed(ctx context.Context, sessionID uint) error {
	db := r.getDB(ctx)
	return db.Model(&models.AdminSession{}).
		Where("id = ?", sessionID).
		Update("last_accessed_at", utils.UTCNow()).Error
}

// CleanupExpired deletes sessions whose expiry has passed
func (r *AdminSessionRepositoryImpl) CleanupExpired(ctx context.Context) error {
	db := r.getDB(ctx)
	return db.Where("expires_at <= ?", utils.UTCNow()).
		Delete(&models.AdminSession{}).Error
}
