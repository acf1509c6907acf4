package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/harborwell/wellness-backend/internal/domain"
)

func newJournalService(db *gorm.DB, now time.Time) *JournalService {
	return &JournalService{DB: db, Now: func() time.Time { return now }}
}

func TestJournalCreate_ComputesDerivedFields(t *testing.T) {
	db := testDB(t)
	u := seedUser(t, db, "engineering")
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newJournalService(db, now)

	entry, err := svc.Create(context.Background(), u.ID, JournalInput{
		Title: "  Sprint wrap  ",
		Body:  "one two three four five",
		Mood:  4,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if entry.Title != "Sprint wrap" {
		t.Fatalf("title not trimmed: %q", entry.Title)
	}
	if entry.WordCount != 5 || entry.ReadingTimeMin != 1 {
		t.Fatalf("derived fields: words=%d reading=%d", entry.WordCount, entry.ReadingTimeMin)
	}
	if entry.Privacy != domain.PrivacyPrivate {
		t.Fatalf("default privacy should be private, got %q", entry.Privacy)
	}
}

func TestJournalCreate_Validation(t *testing.T) {
	db := testDB(t)
	u := seedUser(t, db, "engineering")
	svc := newJournalService(db, time.Now())
	ctx := context.Background()

	if _, err := svc.Create(ctx, u.ID, JournalInput{Mood: 0, Body: "x"}); !errors.Is(err, ErrInvalidMood) {
		t.Fatalf("mood 0: %v", err)
	}
	if _, err := svc.Create(ctx, u.ID, JournalInput{Mood: 3, Body: "x", Privacy: "public"}); !errors.Is(err, ErrInvalidPrivacy) {
		t.Fatalf("bad privacy: %v", err)
	}
	if _, err := svc.Create(ctx, "ghost", JournalInput{Mood: 3, Body: "x"}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("unknown user: %v", err)
	}
}

func TestJournalUpdate_InsideEditWindow(t *testing.T) {
	db := testDB(t)
	u := seedUser(t, db, "engineering")
	created := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newJournalService(db, created)
	ctx := context.Background()

	entry, err := svc.Create(ctx, u.ID, JournalInput{Title: "a", Body: "first draft", Mood: 3})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// 23 hours later: still editable.
	svc.Now = func() time.Time { return created.Add(23 * time.Hour) }
	got, err := svc.Update(ctx, u.ID, entry.ID, JournalInput{Title: "a", Body: "second draft now longer", Mood: 2})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Body != "second draft now longer" || got.Mood != 2 || got.WordCount != 4 {
		t.Fatalf("update not applied: %+v", got)
	}
}

func TestJournalUpdate_LockedAfter24Hours(t *testing.T) {
	db := testDB(t)
	u := seedUser(t, db, "engineering")
	created := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newJournalService(db, created)
	ctx := context.Background()

	entry, err := svc.Create(ctx, u.ID, JournalInput{Title: "a", Body: "first draft", Mood: 3})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	svc.Now = func() time.Time { return created.Add(25 * time.Hour) }
	if _, err := svc.Update(ctx, u.ID, entry.ID, JournalInput{Title: "a", Body: "too late", Mood: 3}); !errors.Is(err, ErrJournalLocked) {
		t.Fatalf("expected ErrJournalLocked, got %v", err)
	}

	// Delete stays allowed at any age.
	if err := svc.Delete(ctx, u.ID, entry.ID); err != nil {
		t.Fatalf("Delete after lock: %v", err)
	}
}

func TestJournalUpdate_OwnershipEnforced(t *testing.T) {
	db := testDB(t)
	owner := seedUser(t, db, "engineering")
	svc := newJournalService(db, time.Now())
	ctx := context.Background()

	entry, err := svc.Create(ctx, owner.ID, JournalInput{Title: "a", Body: "mine", Mood: 3})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Update(ctx, "someone-else", entry.ID, JournalInput{Title: "a", Body: "stolen", Mood: 3}); !errors.Is(err, ErrJournalNotFound) {
		t.Fatalf("cross-user update: %v", err)
	}
	if err := svc.Delete(ctx, "someone-else", entry.ID); !errors.Is(err, ErrJournalNotFound) {
		t.Fatalf("cross-user delete: %v", err)
	}
}

func TestJournalListPage(t *testing.T) {
	db := testDB(t)
	u := seedUser(t, db, "engineering")
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newJournalService(db, base)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		ts := base.Add(time.Duration(i) * time.Hour)
		svc.Now = func() time.Time { return ts }
		if _, err := svc.Create(ctx, u.ID, JournalInput{Title: "t", Body: "entry body", Mood: 3}); err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
	}

	items, total, err := svc.ListPage(ctx, u.ID, 1, 2)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if total != 5 || len(items) != 2 {
		t.Fatalf("page 1: total=%d len=%d", total, len(items))
	}
	// Newest first.
	if !items[0].CreatedAt.After(items[1].CreatedAt) {
		t.Fatalf("expected newest-first ordering")
	}

	items, _, err = svc.ListPage(ctx, u.ID, 3, 2)
	if err != nil || len(items) != 1 {
		t.Fatalf("page 3: %v len=%d", err, len(items))
	}

	// Empty result set is a valid page.
	items, total, err = svc.ListPage(ctx, "ghost", 1, 10)
	if err != nil || total != 0 || len(items) != 0 {
		t.Fatalf("empty page: %v total=%d len=%d", err, total, len(items))
	}
}

func TestReadingTime(t *testing.T) {
	cases := []struct{ words, want int }{
		{0, 1}, {1, 1}, {200, 1}, {201, 2}, {1000, 5},
	}
	for _, tc := range cases {
		if got := readingTime(tc.words); got != tc.want {
			t.Fatalf("readingTime(%d) = %d, want %d", tc.words, got, tc.want)
		}
	}
}
