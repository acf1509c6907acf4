// Package repo – quotes and per-day quote engagements.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborwell/wellness-backend/internal/domain"
)

// CreateQuote inserts a quote.
func CreateQuote(ctx context.Context, db *gorm.DB, q *domain.Quote) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	q.CreatedAt = time.Now().UTC()
	return db.WithContext(ctx).Create(q).Error
}

// ListActiveQuotes returns active quotes ordered by id for deterministic
// daily rotation.
func ListActiveQuotes(ctx context.Context, db *gorm.DB) ([]domain.Quote, error) {
	var out []domain.Quote
	err := db.WithContext(ctx).
		Where("active = ?", true).
		Order("id asc").
		Find(&out).Error
	return out, err
}

// GetQuote fetches a quote by id, or ErrNotFound.
func GetQuote(ctx context.Context, db *gorm.DB, id string) (*domain.Quote, error) {
	var q domain.Quote
	if err := db.WithContext(ctx).Where("id = ?", id).First(&q).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// GetEngagementForDay fetches the user's engagement row for one day bucket,
// or ErrNotFound.
func GetEngagementForDay(ctx context.Context, db *gorm.DB, userID, day string) (*domain.QuoteEngagement, error) {
	var e domain.QuoteEngagement
	err := db.WithContext(ctx).
		Where("user_id = ? AND day = ?", userID, day).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// SaveEngagement upserts the engagement row. The (user, day) unique index
// keeps at most one row per bucket; on conflict the flags and counters are
// updated in place.
func SaveEngagement(ctx context.Context, db *gorm.DB, e *domain.QuoteEngagement) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
		e.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Save(e).Error
}

// ListEngagements returns the user's engagement history, newest day first.
func ListEngagements(ctx context.Context, db *gorm.DB, userID string, limit int) ([]domain.QuoteEngagement, error) {
	if limit <= 0 {
		limit = 30
	}
	var out []domain.QuoteEngagement
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("day desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ArchiveEngagementsBefore marks engagement rows with day < cutoffDay as
// archived. Idempotent; returns the number of rows newly archived.
func ArchiveEngagementsBefore(ctx context.Context, db *gorm.DB, cutoffDay string) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.QuoteEngagement{}).
		Where("day < ? AND archived = ?", cutoffDay, false).
		Update("archived", true)
	return res.RowsAffected, res.Error
}
