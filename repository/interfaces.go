// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/signmark/niap-ui-base-sub002/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// PublicationLogRepository defines operations for publication attempt records
type PublicationLogRepository interface {
	Repository[models.PublicationLog, models.PublicationLogFilter]
	ByCorrelationID(ctx context.Context, correlationID uuid.UUID) ([]*models.PublicationLog, error)
	ListByContent(ctx context.Context, contentID string, limit, offset int) ([]*models.PublicationLog, error)
	ListByCampaign(ctx context.Context, campaignID string, limit, offset int) ([]*models.PublicationLog, error)
	ListSince(ctx context.Context, since time.Time, limit int) ([]*models.PublicationLog, error)
}

// AdminSessionRepository defines operations for persisted content-store sessions
type AdminSessionRepository interface {
	Repository[models.AdminSession, models.AdminSessionFilter]
	LatestActiveByUser(ctx context.Context, userID string) (*models.AdminSession, error)
	ByToken(ctx context.Context, token string) (*models.AdminSession, error)
	DeactivateByUser(ctx context.Context, userID string) error
	TouchLastAccessed(ctx context.Context, sessionID uint) error
	CleanupExpired(ctx context.Context) error
}
