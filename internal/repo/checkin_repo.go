// Package repo – check-in persistence and aggregate queries.
//
// Error semantics:
//   - InsertCheckIn returns ErrDuplicateDay when a row already exists for the
//     same (user, UTC day) bucket; the unique index is the backstop for races
//     that slip past the pre-check.
//   - Missing rows surface as ErrNotFound (gorm.ErrRecordNotFound).
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborwell/wellness-backend/internal/domain"
	"github.com/harborwell/wellness-backend/internal/utils"
)

// ErrDuplicateDay is returned when a second check-in is attempted for the
// same user and UTC day bucket.
var ErrDuplicateDay = errors.New("check-in already exists for this day")

// isUniqueViolation detects SQLite unique-index failures without depending
// on driver error types.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed")
}

// InsertCheckIn persists a check-in for the caller-provided day bucket.
// The caller (event processor) is responsible for any state mutation; this
// function only writes the event row.
func InsertCheckIn(ctx context.Context, db *gorm.DB, c *domain.CheckIn) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateDay
		}
		return err
	}
	return nil
}

// GetCheckInForDay fetches the user's check-in for one day bucket, or
// ErrNotFound.
func GetCheckInForDay(ctx context.Context, db *gorm.DB, userID, day string) (*domain.CheckIn, error) {
	var c domain.CheckIn
	err := db.WithContext(ctx).
		Where("user_id = ? AND day = ?", userID, day).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCheckIns returns the user's check-ins ordered by creation time
// descending, capped at limit (<=0 means 30).
func ListCheckIns(ctx context.Context, db *gorm.DB, userID string, limit int) ([]domain.CheckIn, error) {
	if limit <= 0 {
		limit = 30
	}
	var out []domain.CheckIn
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// RecentMoods returns the moods of the user's last n check-ins, newest first.
func RecentMoods(ctx context.Context, db *gorm.DB, userID string, n int) ([]int, error) {
	var moods []int
	err := db.WithContext(ctx).
		Model(&domain.CheckIn{}).
		Where("user_id = ?", userID).
		Order("day desc").
		Limit(n).
		Pluck("mood", &moods).Error
	return moods, err
}

// CountCheckInsSince counts the user's check-ins with day >= since (UTC day
// bucket comparison works lexically on YYYY-MM-DD).
func CountCheckInsSince(ctx context.Context, db *gorm.DB, userID string, since time.Time) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.CheckIn{}).
		Where("user_id = ? AND day >= ?", userID, utils.DayString(since)).
		Count(&n).Error
	return n, err
}

// checkinWindow scopes a query to a [from, to] day-bucket window and an
// optional department (via the users join).
func checkinWindow(db *gorm.DB, from, to time.Time, department string) *gorm.DB {
	q := db.Model(&domain.CheckIn{}).
		Joins("JOIN users ON users.id = check_ins.user_id").
		Where("users.active = ?", true).
		Where("check_ins.day >= ? AND check_ins.day <= ?", utils.DayString(from), utils.DayString(to))
	if department != "" {
		q = q.Where("users.department = ?", department)
	}
	return q
}

// CheckInWindowStats is the numeric rollup over a check-in window.
type CheckInWindowStats struct {
	Total       int64
	ActiveUsers int64
	AverageMood float64
}

// CheckInStatsInWindow aggregates totals, distinct authors, and average mood
// over a window, optionally scoped to a department.
func CheckInStatsInWindow(ctx context.Context, db *gorm.DB, from, to time.Time, department string) (CheckInWindowStats, error) {
	var s CheckInWindowStats
	err := retryOnce(func() error {
		row := struct {
			Total int64
			Users int64
			Avg   *float64
		}{}
		if err := checkinWindow(db.WithContext(ctx), from, to, department).
			Select("COUNT(*) AS total, COUNT(DISTINCT check_ins.user_id) AS users, AVG(check_ins.mood) AS avg").
			Scan(&row).Error; err != nil {
			return err
		}
		s.Total = row.Total
		s.ActiveUsers = row.Users
		if row.Avg != nil {
			s.AverageMood = *row.Avg
		}
		return nil
	})
	return s, err
}

// MoodDistributionInWindow returns the check-in count per mood value 1..5.
func MoodDistributionInWindow(ctx context.Context, db *gorm.DB, from, to time.Time, department string) (map[int]int64, error) {
	rows := []struct {
		Mood int
		N    int64
	}{}
	err := checkinWindow(db.WithContext(ctx), from, to, department).
		Select("check_ins.mood AS mood, COUNT(*) AS n").
		Group("check_ins.mood").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	dist := map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for _, r := range rows {
		dist[r.Mood] = r.N
	}
	return dist, nil
}

// DailyCheckInRow is one day of the engagement series.
type DailyCheckInRow struct {
	Day         string
	Total       int64
	ActiveUsers int64
	AverageMood float64
}

// DailyCheckInSeries returns per-day totals, distinct authors, and average
// mood over the window, ordered by day ascending. Days with no check-ins are
// absent; callers fill gaps to keep series well-formed.
func DailyCheckInSeries(ctx context.Context, db *gorm.DB, from, to time.Time, department string) ([]DailyCheckInRow, error) {
	rows := []struct {
		Day   string
		Total int64
		Users int64
		Avg   *float64
	}{}
	err := checkinWindow(db.WithContext(ctx), from, to, department).
		Select("check_ins.day AS day, COUNT(*) AS total, COUNT(DISTINCT check_ins.user_id) AS users, AVG(check_ins.mood) AS avg").
		Group("check_ins.day").
		Order("check_ins.day asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]DailyCheckInRow, 0, len(rows))
	for _, r := range rows {
		d := DailyCheckInRow{Day: r.Day, Total: r.Total, ActiveUsers: r.Users}
		if r.Avg != nil {
			d.AverageMood = *r.Avg
		}
		out = append(out, d)
	}
	return out, nil
}

// DistinctCheckInUsers returns the ids of users with at least one check-in
// in the window, ordered ascending.
func DistinctCheckInUsers(ctx context.Context, db *gorm.DB, from, to time.Time, department string) ([]string, error) {
	var ids []string
	err := checkinWindow(db.WithContext(ctx), from, to, department).
		Distinct("check_ins.user_id").
		Order("check_ins.user_id asc").
		Pluck("check_ins.user_id", &ids).Error
	return ids, err
}

// UserMoodInWindow returns per-user check-in count and average mood inside
// the window for active users of the scope, keyed by user id.
type UserMoodRow struct {
	UserID string
	N      int64
	Avg    float64
}

// UserMoodsInWindow aggregates per-user mood inside the window.
func UserMoodsInWindow(ctx context.Context, db *gorm.DB, from, to time.Time, department string) (map[string]UserMoodRow, error) {
	rows := []struct {
		UserID string
		N      int64
		Avg    *float64
	}{}
	err := checkinWindow(db.WithContext(ctx), from, to, department).
		Select("check_ins.user_id AS user_id, COUNT(*) AS n, AVG(check_ins.mood) AS avg").
		Group("check_ins.user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]UserMoodRow, len(rows))
	for _, r := range rows {
		m := UserMoodRow{UserID: r.UserID, N: r.N}
		if r.Avg != nil {
			m.Avg = *r.Avg
		}
		out[r.UserID] = m
	}
	return out, nil
}
