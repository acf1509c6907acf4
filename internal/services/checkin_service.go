// Package services – CheckinService
//
// This file implements the check-in path of the event processor, the single
// writer to WellnessState. A submission validates input, serializes on the
// per-user lock, and commits the event insert together with every state
// mutation (coins, streak, average mood, risk) in one transaction. Index
// updates, notifications, and achievement evaluation run after commit and
// are best-effort: their failure never rolls back the event.
//
// Observability: Submit is OpenTelemetry-instrumented; spans carry the user
// id and day bucket.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/harborwell/wellness-backend/internal/domain"
	"github.com/harborwell/wellness-backend/internal/repo"
	"github.com/harborwell/wellness-backend/internal/risk"
	"github.com/harborwell/wellness-backend/internal/utils"
)

// Streak milestones that trigger an achievement notification.
var streakMilestones = map[int]string{
	7:   "One week streak!",
	30:  "One month streak!",
	100: "100 day streak!",
}

// CheckinInput is the validated payload for a check-in submission.
type CheckinInput struct {
	Mood     int
	Feedback string
	Source   string
}

// CheckinService processes check-in events and derives per-user wellness
// state. It is the only component that writes streaks and coins.
type CheckinService struct {
	DB    *gorm.DB
	Locks *UserLocks

	// Reward policy; zero values fall back to 50/+25.
	RewardBase  int
	RewardBonus int

	// AverageMoodWindow caps how many recent check-ins feed averageMood
	// (default 30). RiskWindowDays is the scorer look-back (default 7).
	AverageMoodWindow int
	RiskWindowDays    int

	Index  Indexer
	Notify Notifier

	// Now is a clock seam for tests; nil means time.Now.
	Now func() time.Time
}

func (s *CheckinService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *CheckinService) rewards(mood int) int {
	base, bonus := s.RewardBase, s.RewardBonus
	if base <= 0 {
		base = 50
	}
	if bonus <= 0 {
		bonus = 25
	}
	coins := base
	if mood >= 4 {
		coins += bonus
	}
	return coins
}

func (s *CheckinService) indexer() Indexer {
	if s.Index != nil {
		return s.Index
	}
	return noopIndexer{}
}

func (s *CheckinService) notifier() Notifier {
	if s.Notify != nil {
		return s.Notify
	}
	return noopNotifier{}
}

func validSource(src string) bool {
	switch src {
	case domain.SourceWeb, domain.SourceMobile, domain.SourceWhatsApp, domain.SourceSlack:
		return true
	}
	return false
}

// Submit records a check-in for userID in today's UTC day bucket.
//
// Returns ErrAlreadyCheckedIn when a check-in already exists for the bucket
// (state is left untouched), ErrInvalidMood / ErrFeedbackTooLong /
// ErrInvalidSource on validation failure, and ErrUserNotFound when the user
// is missing or inactive.
func (s *CheckinService) Submit(ctx context.Context, userID string, in CheckinInput) (*domain.CheckIn, error) {
	tr := otel.Tracer("services/CheckinService")
	ctx, span := tr.Start(ctx, "Submit",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	if in.Mood < 1 || in.Mood > 5 {
		return nil, ErrInvalidMood
	}
	if len(in.Feedback) > 500 {
		return nil, ErrFeedbackTooLong
	}
	if in.Source == "" {
		in.Source = domain.SourceWeb
	}
	if !validSource(in.Source) {
		return nil, ErrInvalidSource
	}

	user, err := repo.GetUser(ctx, s.DB, userID)
	if err != nil || !user.Active {
		return nil, ErrUserNotFound
	}

	// One in-flight event-processor invocation per user.
	unlock := s.Locks.Lock(userID)
	defer unlock()

	now := s.now()
	today := utils.DayUTC(now)
	day := utils.DayString(now)
	span.SetAttributes(attribute.String("checkin.day", day))

	if _, err := repo.GetCheckInForDay(ctx, s.DB, userID, day); err == nil {
		return nil, ErrAlreadyCheckedIn
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	coins := s.rewards(in.Mood)
	checkin := &domain.CheckIn{
		UserID:           userID,
		Day:              day,
		Mood:             in.Mood,
		Feedback:         in.Feedback,
		Source:           in.Source,
		HappyCoinsEarned: coins,
		CreatedAt:        now.UTC(),
	}

	var state *domain.WellnessState
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.InsertCheckIn(ctx, tx, checkin); err != nil {
			return err
		}

		st, err := repo.GetWellnessState(ctx, tx, userID)
		if err != nil {
			return err
		}

		// Coins.
		st.HappyCoins += coins

		// Streak. The duplicate check above makes last == today unreachable.
		switch {
		case st.LastCheckInDate != nil && utils.DaysBetween(*st.LastCheckInDate, today) == 1:
			st.CurrentStreak++
		default:
			st.CurrentStreak = 1
		}
		if st.CurrentStreak > st.LongestStreak {
			st.LongestStreak = st.CurrentStreak
		}
		st.LastCheckInDate = &today

		// Average mood over the last N check-ins (includes this one).
		window := s.AverageMoodWindow
		if window <= 0 {
			window = 30
		}
		avg, err := averageMoodLastN(ctx, tx, userID, window)
		if err != nil {
			return err
		}
		st.AverageMood = avg

		// Risk.
		snap, err := riskSnapshot(ctx, tx, st, now, s.RiskWindowDays)
		if err != nil {
			return err
		}
		res := risk.Evaluate(snap)
		st.RiskScore = res.Score
		st.RiskLevel = res.Level

		state = st
		return repo.SaveWellnessState(ctx, tx, st)
	})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateDay) {
			return nil, ErrAlreadyCheckedIn
		}
		return nil, err
	}

	// Post-commit side effects: best-effort, independent of the caller.
	go s.afterCheckIn(checkin, user.Department, state)

	return checkin, nil
}

// afterCheckIn runs the post-commit side effects with its own deadline so a
// disconnecting caller cannot cancel them.
func (s *CheckinService) afterCheckIn(c *domain.CheckIn, department string, st *domain.WellnessState) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if c.Feedback != "" {
		s.indexer().IndexCheckIn(ctx, c, department)
	}

	s.notifier().Notify(c.UserID, NotifyCheckInCompleted,
		"Check-in complete",
		"Thanks for checking in today!",
		map[string]any{"coins": c.HappyCoinsEarned, "streak": st.CurrentStreak})

	if msg, ok := streakMilestones[st.CurrentStreak]; ok {
		s.notifier().Notify(c.UserID, NotifyStreakMilestone, "Streak milestone", msg,
			map[string]any{"streak": st.CurrentStreak})
	}
	if st.HappyCoins >= 1000 && st.HappyCoins-c.HappyCoinsEarned < 1000 {
		s.notifier().Notify(c.UserID, NotifyCoinsMilestone, "Happy Coins milestone",
			"You crossed 1000 Happy Coins!",
			map[string]any{"coins": st.HappyCoins})
	}
}

// Today returns the user's check-in for the current UTC day, or
// repo.ErrNotFound.
func (s *CheckinService) Today(ctx context.Context, userID string) (*domain.CheckIn, error) {
	return repo.GetCheckInForDay(ctx, s.DB, userID, utils.DayString(s.now()))
}

// History returns the user's recent check-ins, newest first.
func (s *CheckinService) History(ctx context.Context, userID string, limit int) ([]domain.CheckIn, error) {
	return repo.ListCheckIns(ctx, s.DB, userID, limit)
}

// TrendPoint is one day of a user's mood trend.
type TrendPoint struct {
	Day  string `json:"date"`
	Mood *int   `json:"mood,omitempty"`
}

// Trend returns the user's per-day mood over the trailing days window,
// oldest first, with nil mood on missed days.
func (s *CheckinService) Trend(ctx context.Context, userID string, days int) ([]TrendPoint, error) {
	if days <= 0 {
		days = 7
	}
	if days > 366 {
		days = 366
	}
	rows, err := repo.ListCheckIns(ctx, s.DB, userID, days)
	if err != nil {
		return nil, err
	}
	byDay := make(map[string]int, len(rows))
	for _, c := range rows {
		byDay[c.Day] = c.Mood
	}

	today := utils.DayUTC(s.now())
	out := make([]TrendPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		d := utils.DayString(today.AddDate(0, 0, -i))
		p := TrendPoint{Day: d}
		if m, ok := byDay[d]; ok {
			mood := m
			p.Mood = &mood
		}
		out = append(out, p)
	}
	return out, nil
}

// Stats summarizes a user's check-in activity and derived state.
type CheckinStats struct {
	TotalCheckIns int64           `json:"total_check_ins"`
	AverageMood   *float64        `json:"average_mood,omitempty"`
	CurrentStreak int             `json:"current_streak"`
	LongestStreak int             `json:"longest_streak"`
	HappyCoins    int             `json:"happy_coins"`
	RiskLevel     string          `json:"risk_level"`
	LastCheckIn   *domain.CheckIn `json:"last_check_in,omitempty"`
}

// Stats returns the per-user rollup backing GET /checkins/stats.
func (s *CheckinService) Stats(ctx context.Context, userID string) (*CheckinStats, error) {
	st, err := repo.GetWellnessState(ctx, s.DB, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	total, err := repo.CountCheckInsSince(ctx, s.DB, userID, time.Time{})
	if err != nil {
		return nil, err
	}
	out := &CheckinStats{
		TotalCheckIns: total,
		AverageMood:   st.AverageMood,
		CurrentStreak: st.CurrentStreak,
		LongestStreak: st.LongestStreak,
		HappyCoins:    st.HappyCoins,
		RiskLevel:     st.RiskLevel,
	}
	if last, err := repo.ListCheckIns(ctx, s.DB, userID, 1); err == nil && len(last) > 0 {
		out.LastCheckIn = &last[0]
	}
	return out, nil
}
