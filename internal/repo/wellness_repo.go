// Package repo – wellness state persistence.
//
// The wellness state row is written exclusively by the services-layer event
// processor; everything else reads it. Functions here stay free of business
// rules so the streak and reward logic lives in one place.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/harborwell/wellness-backend/internal/domain"
)

// GetWellnessState fetches the derived state for a user, or ErrNotFound.
func GetWellnessState(ctx context.Context, db *gorm.DB, userID string) (*domain.WellnessState, error) {
	var s domain.WellnessState
	if err := db.WithContext(ctx).Where("user_id = ?", userID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveWellnessState persists the full state row.
func SaveWellnessState(ctx context.Context, db *gorm.DB, s *domain.WellnessState) error {
	s.UpdatedAt = time.Now().UTC()
	return db.WithContext(ctx).Save(s).Error
}

// AddHappyCoins credits coins atomically at the SQL level (happy_coins is
// never read-modify-written from Go, so concurrent credits cannot clobber
// each other).
func AddHappyCoins(ctx context.Context, db *gorm.DB, userID string, coins int) error {
	res := db.WithContext(ctx).
		Model(&domain.WellnessState{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"happy_coins": gorm.Expr("happy_coins + ?", coins),
			"updated_at":  time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListStaleStreaks returns states with a positive streak whose last check-in
// is before cutoff (exclusive). Used by the daily streak sweep.
func ListStaleStreaks(ctx context.Context, db *gorm.DB, cutoff time.Time) ([]domain.WellnessState, error) {
	var out []domain.WellnessState
	err := db.WithContext(ctx).
		Where("current_streak > 0 AND last_check_in_date < ?", cutoff).
		Order("user_id asc").
		Find(&out).Error
	return out, err
}

// LeaderboardPage returns a page of wellness states for active users ordered
// by happy coins descending with user id ascending as the deterministic
// tiebreaker.
func LeaderboardPage(ctx context.Context, db *gorm.DB, department string, offset, limit int) ([]domain.WellnessState, error) {
	q := db.WithContext(ctx).
		Model(&domain.WellnessState{}).
		Joins("JOIN users ON users.id = wellness_states.user_id").
		Where("users.active = ?", true)
	if department != "" {
		q = q.Where("users.department = ?", department)
	}
	var out []domain.WellnessState
	err := q.Order("wellness_states.happy_coins DESC, wellness_states.user_id ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// LeaderboardRank returns the 1-based rank of userID under the leaderboard
// ordering: users with strictly more coins rank above, and on equal coins a
// smaller user id ranks above.
func LeaderboardRank(ctx context.Context, db *gorm.DB, department, userID string, coins int) (int64, error) {
	q := db.WithContext(ctx).
		Model(&domain.WellnessState{}).
		Joins("JOIN users ON users.id = wellness_states.user_id").
		Where("users.active = ?", true).
		Where("(wellness_states.happy_coins > ?) OR (wellness_states.happy_coins = ? AND wellness_states.user_id < ?)",
			coins, coins, userID)
	if department != "" {
		q = q.Where("users.department = ?", department)
	}
	var ahead int64
	if err := q.Count(&ahead).Error; err != nil {
		return 0, err
	}
	return ahead + 1, nil
}

// CountLeaderboard returns the number of active users in leaderboard scope.
func CountLeaderboard(ctx context.Context, db *gorm.DB, department string) (int64, error) {
	q := db.WithContext(ctx).
		Model(&domain.WellnessState{}).
		Joins("JOIN users ON users.id = wellness_states.user_id").
		Where("users.active = ?", true)
	if department != "" {
		q = q.Where("users.department = ?", department)
	}
	var total int64
	err := q.Count(&total).Error
	return total, err
}

// AvgCoinsAndStreakByDepartment returns per-department averages over active
// users, used by the company overview breakdown.
type DepartmentStateRow struct {
	Department string
	Employees  int64
	AvgCoins   float64
	AvgStreak  float64
}

// StateByDepartment aggregates wellness state per department for active
// users, ordered by department ascending.
func StateByDepartment(ctx context.Context, db *gorm.DB) ([]DepartmentStateRow, error) {
	var out []DepartmentStateRow
	err := retryOnce(func() error {
		out = out[:0]
		return db.WithContext(ctx).
			Model(&domain.WellnessState{}).
			Select("users.department AS department, COUNT(*) AS employees, AVG(wellness_states.happy_coins) AS avg_coins, AVG(wellness_states.current_streak) AS avg_streak").
			Joins("JOIN users ON users.id = wellness_states.user_id").
			Where("users.active = ?", true).
			Group("users.department").
			Order("users.department asc").
			Scan(&out).Error
	})
	return out, err
}

// StreakHistogram buckets active users' current streaks into the fixed
// ranges 1-7, 8-14, 15-30, 30+.
func StreakHistogram(ctx context.Context, db *gorm.DB) (map[string]int64, error) {
	rows := []struct {
		Bucket string
		N      int64
	}{}
	err := db.WithContext(ctx).
		Model(&domain.WellnessState{}).
		Select(`CASE
			WHEN current_streak BETWEEN 1 AND 7 THEN '1-7'
			WHEN current_streak BETWEEN 8 AND 14 THEN '8-14'
			WHEN current_streak BETWEEN 15 AND 30 THEN '15-30'
			WHEN current_streak > 30 THEN '30+'
			ELSE 'none' END AS bucket, COUNT(*) AS n`).
		Joins("JOIN users ON users.id = wellness_states.user_id").
		Where("users.active = ?", true).
		Group("bucket").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := map[string]int64{"1-7": 0, "8-14": 0, "15-30": 0, "30+": 0}
	for _, r := range rows {
		if r.Bucket != "none" {
			out[r.Bucket] = r.N
		}
	}
	return out, nil
}

// CoinsHistogram buckets active users' happy-coin balances into the fixed
// ranges 0-100, 101-500, 501-1000, 1000+.
func CoinsHistogram(ctx context.Context, db *gorm.DB) (map[string]int64, error) {
	rows := []struct {
		Bucket string
		N      int64
	}{}
	err := db.WithContext(ctx).
		Model(&domain.WellnessState{}).
		Select(`CASE
			WHEN happy_coins <= 100 THEN '0-100'
			WHEN happy_coins <= 500 THEN '101-500'
			WHEN happy_coins <= 1000 THEN '501-1000'
			ELSE '1000+' END AS bucket, COUNT(*) AS n`).
		Joins("JOIN users ON users.id = wellness_states.user_id").
		Where("users.active = ?", true).
		Group("bucket").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := map[string]int64{"0-100": 0, "101-500": 0, "501-1000": 0, "1000+": 0}
	for _, r := range rows {
		out[r.Bucket] = r.N
	}
	return out, nil
}
