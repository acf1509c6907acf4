// Package repo – journal entry persistence.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborwell/wellness-backend/internal/domain"
)

// CreateJournal inserts a journal entry.
func CreateJournal(ctx context.Context, db *gorm.DB, j *domain.JournalEntry) error {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	j.CreatedAt = time.Now().UTC()
	return db.WithContext(ctx).Create(j).Error
}

// GetJournal fetches an entry by id ensuring it belongs to the user, or
// ErrNotFound.
func GetJournal(ctx context.Context, db *gorm.DB, id, userID string) (*domain.JournalEntry, error) {
	var j domain.JournalEntry
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&j).Error
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// UpdateJournal saves the mutable content fields of an entry. The 24-hour
// edit window is enforced in the service layer.
func UpdateJournal(ctx context.Context, db *gorm.DB, j *domain.JournalEntry) error {
	return db.WithContext(ctx).
		Model(&domain.JournalEntry{}).
		Where("id = ? AND user_id = ?", j.ID, j.UserID).
		Updates(map[string]any{
			"title":            j.Title,
			"body":             j.Body,
			"mood":             j.Mood,
			"category":         j.Category,
			"tags":             j.Tags,
			"privacy":          j.Privacy,
			"word_count":       j.WordCount,
			"reading_time_min": j.ReadingTimeMin,
		}).Error
}

// SoftDeleteJournal marks an entry deleted (GORM soft delete). Returns
// ErrNotFound when the entry does not exist or is not owned by userID.
func SoftDeleteJournal(ctx context.Context, db *gorm.DB, id, userID string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.JournalEntry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListJournalsPage returns a page of the user's entries ordered by creation
// time descending.
func ListJournalsPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.JournalEntry, error) {
	var out []domain.JournalEntry
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountJournals returns the total number of (non-deleted) entries for the
// user.
func CountJournals(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.JournalEntry{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// JournalStatsRow is the per-user journal rollup.
type JournalStatsRow struct {
	Total      int64
	AvgMood    float64
	TotalWords int64
}

// JournalStats aggregates entry count, average mood, and total words for a
// user.
func JournalStats(ctx context.Context, db *gorm.DB, userID string) (JournalStatsRow, error) {
	row := struct {
		Total int64
		Avg   *float64
		Words *int64
	}{}
	err := db.WithContext(ctx).
		Model(&domain.JournalEntry{}).
		Select("COUNT(*) AS total, AVG(mood) AS avg, SUM(word_count) AS words").
		Where("user_id = ?", userID).
		Scan(&row).Error
	if err != nil {
		return JournalStatsRow{}, err
	}
	out := JournalStatsRow{Total: row.Total}
	if row.Avg != nil {
		out.AvgMood = *row.Avg
	}
	if row.Words != nil {
		out.TotalWords = *row.Words
	}
	return out, nil
}

// ListJournalsInWindow returns entries created inside [from, to] for active
// users, optionally scoped to a department. Used by the index backfill.
func ListJournalsInWindow(ctx context.Context, db *gorm.DB, from, to time.Time, department string) ([]domain.JournalEntry, error) {
	q := db.WithContext(ctx).
		Model(&domain.JournalEntry{}).
		Joins("JOIN users ON users.id = journal_entries.user_id").
		Where("users.active = ?", true).
		Where("journal_entries.created_at >= ? AND journal_entries.created_at <= ?", from, to)
	if department != "" {
		q = q.Where("users.department = ?", department)
	}
	var out []domain.JournalEntry
	err := q.Order("journal_entries.created_at asc").Find(&out).Error
	return out, err
}
