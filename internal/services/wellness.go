// Package services – wellness state derivation.
//
// This file holds the contracts the event processor fires after commit
// (index writer, notifier) and the WellnessService, which owns risk
// recomputation and the daily streak sweep. All state math goes through
// helpers here so the check-in path and the nightly sweep cannot drift.
package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/harborwell/wellness-backend/internal/domain"
	"github.com/harborwell/wellness-backend/internal/repo"
	"github.com/harborwell/wellness-backend/internal/risk"
	"github.com/harborwell/wellness-backend/internal/utils"
)

// Notification kinds emitted by the event processor.
const (
	NotifyCheckInCompleted = "CHECK_IN_COMPLETED"
	NotifyStreakMilestone  = "STREAK_MILESTONE"
	NotifyCoinsMilestone   = "COINS_MILESTONE"
	NotifySurveyCompleted  = "SURVEY_COMPLETED"
	NotifyPulseSurveyDue   = "PULSE_SURVEY_DUE"
)

// Notifier dispatches best-effort notifications after the state mutation
// commits. Implementations must be non-blocking and swallow delivery
// failures (log and retry internally); a full queue is not an error the
// event processor can act on.
type Notifier interface {
	Notify(userID, kind, title, message string, data map[string]any)
}

// Indexer updates the word-frequency index after commit. Implementations
// are best-effort; failures never roll back the event.
type Indexer interface {
	IndexCheckIn(ctx context.Context, c *domain.CheckIn, department string)
	IndexJournal(ctx context.Context, j *domain.JournalEntry, department string)
	IndexSurveyText(ctx context.Context, r *domain.SurveyResponse, texts []string, department string)
}

// noopNotifier and noopIndexer keep the services usable when adapters are
// disabled by configuration.
type noopNotifier struct{}

func (noopNotifier) Notify(string, string, string, string, map[string]any) {}

// NopNotifier returns a Notifier that drops everything. Callers that need a
// guaranteed non-nil notifier (scheduler, tests) use it when dispatch is
// disabled.
func NopNotifier() Notifier { return noopNotifier{} }

type noopIndexer struct{}

func (noopIndexer) IndexCheckIn(context.Context, *domain.CheckIn, string)                     {}
func (noopIndexer) IndexJournal(context.Context, *domain.JournalEntry, string)                {}
func (noopIndexer) IndexSurveyText(context.Context, *domain.SurveyResponse, []string, string) {}

// averageMoodLastN recomputes the mean of the user's most recent n check-in
// moods. Returns nil when the user has no check-ins.
func averageMoodLastN(ctx context.Context, db *gorm.DB, userID string, n int) (*float64, error) {
	moods, err := repo.RecentMoods(ctx, db, userID, n)
	if err != nil {
		return nil, err
	}
	if len(moods) == 0 {
		return nil, nil
	}
	sum := 0
	for _, m := range moods {
		sum += m
	}
	avg := float64(sum) / float64(len(moods))
	return &avg, nil
}

// riskSnapshot assembles the scorer input for one user as of now.
func riskSnapshot(ctx context.Context, db *gorm.DB, state *domain.WellnessState, now time.Time, windowDays int) (risk.Snapshot, error) {
	if windowDays <= 0 {
		windowDays = 7
	}
	snap := risk.Snapshot{AverageMood: state.AverageMood}

	weekly, err := repo.CountCheckInsSince(ctx, db, state.UserID, now.AddDate(0, 0, -windowDays+1))
	if err != nil {
		return snap, err
	}
	snap.WeeklyCheckIns = int(weekly)

	if state.LastCheckInDate != nil {
		d := utils.DaysBetween(*state.LastCheckInDate, now)
		snap.DaysSinceLastCheckIn = &d
	}

	surveys, err := repo.CountResponsesSince(ctx, db, state.UserID, now.AddDate(0, 0, -30))
	if err != nil {
		return snap, err
	}
	snap.RecentSurveys = int(surveys)
	return snap, nil
}

// WellnessService re-derives risk outside the check-in path (nightly sweep,
// on-demand recompute) and owns the daily streak sweep.
type WellnessService struct {
	DB             *gorm.DB
	RiskWindowDays int

	// Now is a clock seam for tests; nil means time.Now.
	Now func() time.Time
}

func (s *WellnessService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// State returns the user's wellness state.
func (s *WellnessService) State(ctx context.Context, userID string) (*domain.WellnessState, error) {
	st, err := repo.GetWellnessState(ctx, s.DB, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return st, nil
}

// RecomputeRisk rebuilds the user's risk score and bucket from the current
// snapshot and persists it.
func (s *WellnessService) RecomputeRisk(ctx context.Context, userID string) (*domain.WellnessState, error) {
	state, err := repo.GetWellnessState(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	snap, err := riskSnapshot(ctx, s.DB, state, s.now(), s.RiskWindowDays)
	if err != nil {
		return nil, err
	}
	res := risk.Evaluate(snap)
	state.RiskScore = res.Score
	state.RiskLevel = res.Level
	if err := repo.SaveWellnessState(ctx, s.DB, state); err != nil {
		return nil, err
	}
	return state, nil
}

// SweepStreaks resets currentStreak for every user whose last check-in is
// older than yesterday (UTC buckets) and re-evaluates their risk. Idempotent:
// a second run in the same day finds nothing to reset. Returns the number of
// streaks reset.
func (s *WellnessService) SweepStreaks(ctx context.Context) (int, error) {
	now := s.now()
	cutoff := utils.DayUTC(now).AddDate(0, 0, -1) // strictly before yesterday is stale
	states, err := repo.ListStaleStreaks(ctx, s.DB, cutoff)
	if err != nil {
		return 0, err
	}
	reset := 0
	for i := range states {
		st := &states[i]
		st.CurrentStreak = 0
		snap, err := riskSnapshot(ctx, s.DB, st, now, s.RiskWindowDays)
		if err != nil {
			return reset, err
		}
		res := risk.Evaluate(snap)
		st.RiskScore = res.Score
		st.RiskLevel = res.Level
		if err := repo.SaveWellnessState(ctx, s.DB, st); err != nil {
			return reset, err
		}
		reset++
	}
	return reset, nil
}
