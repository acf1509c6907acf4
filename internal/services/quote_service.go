// Package services – QuoteService
//
// The quote of the day is a deterministic rotation over active quotes keyed
// by the UTC day number, so every user sees the same quote on the same day
// without any scheduling. Engagement rows are upserted per (user, day) and
// never touch wellness state.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/harborwell/wellness-backend/internal/domain"
	"github.com/harborwell/wellness-backend/internal/repo"
	"github.com/harborwell/wellness-backend/internal/utils"
)

// QuoteEngagementInput carries the engagement mutations. Nil fields leave
// the stored value untouched; boolean flags only ever flip to true.
type QuoteEngagementInput struct {
	Viewed           *bool
	Liked            *bool
	Shared           *bool
	TimeSpentSeconds *int
	Rating           *int
}

// QuoteService serves the daily quote and records engagements.
type QuoteService struct {
	DB *gorm.DB

	Now func() time.Time
}

func (s *QuoteService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Today returns the quote rotated in for the current UTC day.
func (s *QuoteService) Today(ctx context.Context) (*domain.Quote, error) {
	quotes, err := repo.ListActiveQuotes(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	if len(quotes) == 0 {
		return nil, ErrNoQuotes
	}
	dayNumber := int(utils.DayUTC(s.now()).Unix() / 86400)
	return &quotes[dayNumber%len(quotes)], nil
}

// Engage upserts today's engagement row for userID against quoteID.
// Rating must be within 1..5 when present.
func (s *QuoteService) Engage(ctx context.Context, userID, quoteID string, in QuoteEngagementInput) (*domain.QuoteEngagement, error) {
	if in.Rating != nil && (*in.Rating < 1 || *in.Rating > 5) {
		return nil, ErrInvalidRating
	}
	if _, err := repo.GetQuote(ctx, s.DB, quoteID); err != nil {
		return nil, ErrQuoteNotFound
	}

	day := utils.DayString(s.now())
	e, err := repo.GetEngagementForDay(ctx, s.DB, userID, day)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			return nil, err
		}
		e = &domain.QuoteEngagement{UserID: userID, Day: day, QuoteID: quoteID}
	}

	if in.Viewed != nil && *in.Viewed {
		e.Viewed = true
	}
	if in.Liked != nil && *in.Liked {
		e.Liked = true
	}
	if in.Shared != nil && *in.Shared {
		e.Shared = true
	}
	if in.TimeSpentSeconds != nil && *in.TimeSpentSeconds > 0 {
		e.TimeSpentSeconds += *in.TimeSpentSeconds
	}
	if in.Rating != nil {
		e.Rating = in.Rating
	}

	if err := repo.SaveEngagement(ctx, s.DB, e); err != nil {
		return nil, err
	}
	return e, nil
}

// History returns the user's engagement history, newest day first.
func (s *QuoteService) History(ctx context.Context, userID string, limit int) ([]domain.QuoteEngagement, error) {
	return repo.ListEngagements(ctx, s.DB, userID, limit)
}

// ArchiveOld marks engagement rows older than retentionDays (default 90) as
// archived and returns the number of rows affected. Used by the daily
// archival job; safe to re-run.
func (s *QuoteService) ArchiveOld(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		retentionDays = 90
	}
	cutoff := utils.DayString(s.now().AddDate(0, 0, -retentionDays))
	return repo.ArchiveEngagementsBefore(ctx, s.DB, cutoff)
}
