// Package repo – word-frequency index rows.
//
// One row per source event, keyed by (source_kind, source_id) so backfills
// are idempotent: reprocessing an event replaces its row instead of
// duplicating it.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/harborwell/wellness-backend/internal/domain"
)

// UpsertWordRow inserts or replaces the index row for one source event.
func UpsertWordRow(ctx context.Context, db *gorm.DB, r *domain.WordFrequencyRow) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "source_kind"}, {Name: "source_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"top_words", "sentiment", "sentiment_label", "themes",
				"total_words", "unique_words", "department", "day", "updated_at",
			}),
		}).
		Create(r).Error
}

// WordRowFilter scopes index reads. Zero values mean "no constraint".
type WordRowFilter struct {
	From        time.Time
	To          time.Time
	UserID      string
	Departments []string
	SourceKinds []string
}

func (f WordRowFilter) apply(q *gorm.DB) *gorm.DB {
	if !f.From.IsZero() {
		q = q.Where("day >= ?", f.From.UTC().Format("2006-01-02"))
	}
	if !f.To.IsZero() {
		q = q.Where("day <= ?", f.To.UTC().Format("2006-01-02"))
	}
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if len(f.Departments) > 0 {
		q = q.Where("department IN ?", f.Departments)
	}
	if len(f.SourceKinds) > 0 {
		q = q.Where("source_kind IN ?", f.SourceKinds)
	}
	return q
}

// ListWordRows returns index rows matching the filter ordered by day
// ascending then id, so downstream rollups are deterministic.
func ListWordRows(ctx context.Context, db *gorm.DB, f WordRowFilter) ([]domain.WordFrequencyRow, error) {
	var out []domain.WordFrequencyRow
	err := retryOnce(func() error {
		out = out[:0]
		return f.apply(db.WithContext(ctx).Model(&domain.WordFrequencyRow{})).
			Order("day asc, id asc").
			Find(&out).Error
	})
	return out, err
}

// CountWordRows returns the number of index rows matching the filter.
func CountWordRows(ctx context.Context, db *gorm.DB, f WordRowFilter) (int64, error) {
	var n int64
	err := f.apply(db.WithContext(ctx).Model(&domain.WordFrequencyRow{})).Count(&n).Error
	return n, err
}
