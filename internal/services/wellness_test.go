package services

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/harborwell/wellness-backend/internal/domain"
	"github.com/harborwell/wellness-backend/internal/repo"
)

func TestSweepStreaks_ResetsStaleOnly(t *testing.T) {
	db := testDB(t)
	fresh := seedUser(t, db, "engineering")
	stale := seedUser2(t, db, "sales")
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	// fresh checked in yesterday, stale three days ago.
	setState(t, db, fresh.ID, 3, day.AddDate(0, 0, -1))
	setState(t, db, stale.ID, 5, day.AddDate(0, 0, -3))

	svc := &WellnessService{DB: db, Now: func() time.Time { return day.Add(2 * time.Hour) }}
	reset, err := svc.SweepStreaks(ctx)
	if err != nil {
		t.Fatalf("SweepStreaks: %v", err)
	}
	if reset != 1 {
		t.Fatalf("expected 1 reset, got %d", reset)
	}

	st, _ := repo.GetWellnessState(ctx, db, stale.ID)
	if st.CurrentStreak != 0 {
		t.Fatalf("stale streak not reset: %+v", st)
	}
	st, _ = repo.GetWellnessState(ctx, db, fresh.ID)
	if st.CurrentStreak != 3 {
		t.Fatalf("fresh streak must survive: %+v", st)
	}

	// Second run the same day is a no-op.
	reset, err = svc.SweepStreaks(ctx)
	if err != nil || reset != 0 {
		t.Fatalf("second sweep: %v reset=%d", err, reset)
	}
}

func TestRecomputeRisk_PersistsScoreAndLevel(t *testing.T) {
	db := testDB(t)
	u := seedUser(t, db, "engineering")
	ctx := context.Background()

	// No activity at all scores high.
	svc := &WellnessService{DB: db}
	st, err := svc.RecomputeRisk(ctx, u.ID)
	if err != nil {
		t.Fatalf("RecomputeRisk: %v", err)
	}
	if st.RiskLevel != domain.RiskHigh || st.RiskScore != 0.65 {
		t.Fatalf("silent user should be high risk: %+v", st)
	}

	stored, _ := repo.GetWellnessState(ctx, db, u.ID)
	if stored.RiskLevel != domain.RiskHigh {
		t.Fatalf("risk not persisted: %+v", stored)
	}
}

func TestWellnessState_MissingUser(t *testing.T) {
	db := testDB(t)
	svc := &WellnessService{DB: db}
	if _, err := svc.State(context.Background(), "ghost"); err != ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

// seedUser2 is seedUser with a distinct email so two users can share a test.
func seedUser2(t *testing.T, db *gorm.DB, department string) *domain.User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), db, t.Name()+"+2@example.com", "Second User", department, domain.RoleEmployee)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func setState(t *testing.T, db *gorm.DB, userID string, streak int, last time.Time) {
	t.Helper()
	st, err := repo.GetWellnessState(context.Background(), db, userID)
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	st.CurrentStreak = streak
	st.LongestStreak = streak
	st.LastCheckInDate = &last
	if err := repo.SaveWellnessState(context.Background(), db, st); err != nil {
		t.Fatalf("save state: %v", err)
	}
}
