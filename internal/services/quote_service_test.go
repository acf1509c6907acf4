package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborwell/wellness-backend/internal/domain"
	"github.com/harborwell/wellness-backend/internal/repo"
)

func seedQuotes(t *testing.T, db *gorm.DB, n int) []domain.Quote {
	t.Helper()
	out := make([]domain.Quote, 0, n)
	for i := 0; i < n; i++ {
		q := domain.Quote{
			ID:     uuid.NewString(),
			Text:   "quote " + string(rune('a'+i)),
			Author: "Author",
			Active: true,
		}
		if err := repo.CreateQuote(context.Background(), db, &q); err != nil {
			t.Fatalf("seed quote: %v", err)
		}
		out = append(out, q)
	}
	return out
}

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

func TestQuoteToday_DeterministicRotation(t *testing.T) {
	db := testDB(t)
	seedQuotes(t, db, 3)
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := &QuoteService{DB: db, Now: func() time.Time { return now }}
	ctx := context.Background()

	first, err := svc.Today(ctx)
	if err != nil {
		t.Fatalf("Today: %v", err)
	}
	// Same day, any hour: same quote.
	svc.Now = func() time.Time { return now.Add(10 * time.Hour) }
	again, err := svc.Today(ctx)
	if err != nil || again.ID != first.ID {
		t.Fatalf("rotation not stable within a day: %v vs %v", first.ID, again.ID)
	}

	// Three quotes rotate with period 3.
	svc.Now = func() time.Time { return now.AddDate(0, 0, 3) }
	wrapped, err := svc.Today(ctx)
	if err != nil || wrapped.ID != first.ID {
		t.Fatalf("rotation period wrong: %v vs %v", first.ID, wrapped.ID)
	}

	// Next day differs (with 3 quotes the index advances).
	svc.Now = func() time.Time { return now.AddDate(0, 0, 1) }
	next, err := svc.Today(ctx)
	if err != nil || next.ID == first.ID {
		t.Fatalf("consecutive days should rotate, got same quote")
	}
}

func TestQuoteToday_NoActiveQuotes(t *testing.T) {
	db := testDB(t)
	svc := &QuoteService{DB: db}
	if _, err := svc.Today(context.Background()); !errors.Is(err, ErrNoQuotes) {
		t.Fatalf("expected ErrNoQuotes, got %v", err)
	}
}

func TestQuoteEngage_UpsertsAndFlagsAreMonotonic(t *testing.T) {
	db := testDB(t)
	u := seedUser(t, db, "engineering")
	quotes := seedQuotes(t, db, 1)
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := &QuoteService{DB: db, Now: func() time.Time { return now }}
	ctx := context.Background()

	e, err := svc.Engage(ctx, u.ID, quotes[0].ID, QuoteEngagementInput{
		Viewed:           boolPtr(true),
		TimeSpentSeconds: intPtr(10),
	})
	if err != nil {
		t.Fatalf("Engage: %v", err)
	}
	if !e.Viewed || e.Liked || e.TimeSpentSeconds != 10 {
		t.Fatalf("first engagement: %+v", e)
	}

	// Second engagement the same day updates the same row; setting a flag to
	// false must not clear it, and time accumulates.
	e, err = svc.Engage(ctx, u.ID, quotes[0].ID, QuoteEngagementInput{
		Viewed:           boolPtr(false),
		Liked:            boolPtr(true),
		TimeSpentSeconds: intPtr(5),
		Rating:           intPtr(4),
	})
	if err != nil {
		t.Fatalf("second Engage: %v", err)
	}
	if !e.Viewed || !e.Liked || e.TimeSpentSeconds != 15 {
		t.Fatalf("second engagement: %+v", e)
	}
	if e.Rating == nil || *e.Rating != 4 {
		t.Fatalf("rating not stored: %+v", e)
	}

	rows, err := svc.History(ctx, u.ID, 10)
	if err != nil || len(rows) != 1 {
		t.Fatalf("one row per (user, day) expected: %v len=%d", err, len(rows))
	}
}

func TestQuoteEngage_Validation(t *testing.T) {
	db := testDB(t)
	u := seedUser(t, db, "engineering")
	quotes := seedQuotes(t, db, 1)
	svc := &QuoteService{DB: db}
	ctx := context.Background()

	if _, err := svc.Engage(ctx, u.ID, quotes[0].ID, QuoteEngagementInput{Rating: intPtr(6)}); !errors.Is(err, ErrInvalidRating) {
		t.Fatalf("rating 6: %v", err)
	}
	if _, err := svc.Engage(ctx, u.ID, quotes[0].ID, QuoteEngagementInput{Rating: intPtr(0)}); !errors.Is(err, ErrInvalidRating) {
		t.Fatalf("rating 0: %v", err)
	}
	if _, err := svc.Engage(ctx, u.ID, "missing", QuoteEngagementInput{}); !errors.Is(err, ErrQuoteNotFound) {
		t.Fatalf("missing quote: %v", err)
	}
}

func TestQuoteArchiveOld(t *testing.T) {
	db := testDB(t)
	u := seedUser(t, db, "engineering")
	quotes := seedQuotes(t, db, 1)
	old := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	svc := &QuoteService{DB: db, Now: func() time.Time { return old }}
	ctx := context.Background()

	if _, err := svc.Engage(ctx, u.ID, quotes[0].ID, QuoteEngagementInput{Viewed: boolPtr(true)}); err != nil {
		t.Fatalf("Engage: %v", err)
	}

	// 100 days later the row is past the default 90-day retention.
	svc.Now = func() time.Time { return old.AddDate(0, 0, 100) }
	n, err := svc.ArchiveOld(ctx, 0)
	if err != nil || n != 1 {
		t.Fatalf("ArchiveOld: %v n=%d", err, n)
	}

	// Idempotent: nothing left to archive.
	n, err = svc.ArchiveOld(ctx, 0)
	if err != nil || n != 0 {
		t.Fatalf("second ArchiveOld: %v n=%d", err, n)
	}
}
