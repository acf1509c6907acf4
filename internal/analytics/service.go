// Package analytics implements the read-side aggregate layer: company and
// department overviews, risk assessment, engagement metrics, eNPS, sentiment
// rollups, leaderboards, and word-cloud queries.
//
// Aggregates never mutate state. Every query accepts a date window; windows
// longer than a year are rejected up front, and empty windows produce
// well-formed zero-valued structures rather than errors. Department
// enumerations are ordered descending by the primary metric with user or
// department id ascending as the tie break, so pagination is stable.
package analytics

import (
	"errors"
	"math"
	"time"

	"gorm.io/gorm"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrWindowTooLarge rejects aggregate windows longer than one year.
var ErrWindowTooLarge = errors.New("analytics: date range exceeds one year")

// ErrUnknownExportType rejects export requests for an unsupported dataset.
var ErrUnknownExportType = errors.New("analytics: unknown export type")

const maxWindow = 366 * 24 * time.Hour

// Trend labels derived from thresholds 3.5/2.5 (mood) and 75/50 (engagement).
const (
	TrendPositive   = "positive"
	TrendNeutral    = "neutral"
	TrendConcerning = "concerning"

	EngagementHigh     = "high"
	EngagementModerate = "moderate"
	EngagementLow      = "low"
)

// Service answers aggregate queries over the event and derived-state stores.
type Service struct {
	DB *gorm.DB

	// LeaderboardPageSize caps page size (default 50, max 100).
	LeaderboardPageSize int

	// RiskWindowDays is the check-in look-back for risk scoring (default 7),
	// matching the window the event-processor path uses.
	RiskWindowDays int

	// Now is a clock seam for tests; nil means time.Now.
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// normalizeWindow applies the default window (last 30 days) and validates
// the range. To is clamped to now when zero.
func (s *Service) normalizeWindow(from, to time.Time) (time.Time, time.Time, error) {
	now := s.now().UTC()
	if to.IsZero() {
		to = now
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -30)
	}
	if to.Sub(from) > maxWindow {
		return from, to, ErrWindowTooLarge
	}
	if from.After(to) {
		from, to = to, from
	}
	return from, to, nil
}

// moodTrend labels an average mood: positive ≥ 3.5, neutral ≥ 2.5, else
// concerning.
func moodTrend(avg float64) string {
	switch {
	case avg >= 3.5:
		return TrendPositive
	case avg >= 2.5:
		return TrendNeutral
	default:
		return TrendConcerning
	}
}

// engagementTrend labels an engagement-rate percentage: high ≥ 75,
// moderate ≥ 50, else low.
func engagementTrend(pct float64) string {
	switch {
	case pct >= 75:
		return EngagementHigh
	case pct >= 50:
		return EngagementModerate
	default:
		return EngagementLow
	}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func percentage(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

var titleCaser = cases.Title(language.English)

// DisplayName renders a stored department key for dashboards.
func DisplayName(department string) string {
	if department == "" {
		return "Unassigned"
	}
	return titleCaser.String(department)
}
