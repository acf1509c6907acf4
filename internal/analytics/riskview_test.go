package analytics

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/harborwell/wellness-backend/internal/repo"
)

func setState(t *testing.T, db *gorm.DB, userID string, avgMood float64, lastDay string) {
	t.Helper()
	state, err := repo.GetWellnessState(context.Background(), db, userID)
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	state.AverageMood = &avgMood
	last := mustDay(t, lastDay)
	state.LastCheckInDate = &last
	if err := repo.SaveWellnessState(context.Background(), db, state); err != nil {
		t.Fatalf("save state: %v", err)
	}
}

func TestAssessRisk_Cohort(t *testing.T) {
	db := testDB(t)
	svc := &Service{DB: db, Now: fixedNow("2025-03-10", t)}

	engaged := seedUser(t, db, "engaged@example.com", "engineering")
	setState(t, db, engaged.ID, 4.5, "2025-03-10")
	for d := 4; d <= 10; d++ {
		seedCheckIn(t, db, engaged.ID, time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC).Format("2006-01-02"), 4)
	}

	fading := seedUser(t, db, "fading@example.com", "engineering")
	setState(t, db, fading.ID, 2.3, "2025-03-09")
	seedCheckIn(t, db, fading.ID, "2025-03-08", 2)
	seedCheckIn(t, db, fading.ID, "2025-03-09", 3)

	// Silent for twenty days, no check-ins at all in the window.
	silent := seedUser(t, db, "silent@example.com", "sales")
	state, err := repo.GetWellnessState(context.Background(), db, silent.ID)
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	last := mustDay(t, "2025-02-18")
	state.LastCheckInDate = &last
	if err := repo.SaveWellnessState(context.Background(), db, state); err != nil {
		t.Fatalf("save state: %v", err)
	}

	out, err := svc.AssessRisk(context.Background(), "", "")
	if err != nil {
		t.Fatalf("AssessRisk: %v", err)
	}
	if out.Total != 3 {
		t.Fatalf("total = %d, want 3", out.Total)
	}
	if out.ByLevel["low"] != 1 || out.ByLevel["medium"] != 1 || out.ByLevel["high"] != 1 {
		t.Fatalf("ByLevel = %v, want one of each", out.ByLevel)
	}
	if len(out.Employees) != 3 {
		t.Fatalf("expected all 3 employees unfiltered, got %d", len(out.Employees))
	}
	if out.Employees[0].UserID != silent.ID {
		t.Fatalf("highest risk should sort first, got %s", out.Employees[0].UserID)
	}

	filtered, err := svc.AssessRisk(context.Background(), "high", "")
	if err != nil {
		t.Fatalf("AssessRisk high: %v", err)
	}
	if len(filtered.Employees) != 1 || filtered.Employees[0].UserID != silent.ID {
		t.Fatalf("high filter should return exactly the silent user: %+v", filtered.Employees)
	}
	if filtered.Employees[0].RiskLevel != "high" || filtered.Employees[0].RiskScore < 0.6 {
		t.Fatalf("silent user scoring wrong: %+v", filtered.Employees[0])
	}
	if len(filtered.Employees[0].Indicators) == 0 {
		t.Fatalf("high-risk employee must carry indicators")
	}
	// Filtered summaries count the listing; the other buckets stay present
	// at zero.
	if filtered.ByLevel["high"] != 1 || filtered.ByLevel["medium"] != 0 || filtered.ByLevel["low"] != 0 {
		t.Fatalf("filtered ByLevel = %v, want {high:1 medium:0 low:0}", filtered.ByLevel)
	}
	for _, level := range []string{"low", "medium", "high"} {
		if _, ok := filtered.ByLevel[level]; !ok {
			t.Fatalf("bucket %q must be present even when empty: %v", level, filtered.ByLevel)
		}
	}

	scoped, err := svc.AssessRisk(context.Background(), "", "sales")
	if err != nil {
		t.Fatalf("AssessRisk sales: %v", err)
	}
	if scoped.Total != 1 || scoped.ByLevel["high"] != 1 {
		t.Fatalf("department scope wrong: %+v", scoped)
	}
}

func TestAssessRisk_ConfiguredWindow(t *testing.T) {
	db := testDB(t)
	u := seedUser(t, db, "steady@example.com", "engineering")
	setState(t, db, u.ID, 4.0, "2025-03-01")
	// Daily check-ins that fall outside the 7-day default but inside 18 days.
	for d := 23; d <= 28; d++ {
		seedCheckIn(t, db, u.ID, time.Date(2025, 2, d, 0, 0, 0, 0, time.UTC).Format("2006-01-02"), 4)
	}
	seedCheckIn(t, db, u.ID, "2025-03-01", 4)

	narrow := &Service{DB: db, Now: fixedNow("2025-03-10", t)}
	out, err := narrow.AssessRisk(context.Background(), "", "")
	if err != nil {
		t.Fatalf("AssessRisk: %v", err)
	}
	if out.Employees[0].RiskLevel != "high" {
		t.Fatalf("default window should miss the old check-ins: %+v", out.Employees[0])
	}

	wide := &Service{DB: db, Now: fixedNow("2025-03-10", t), RiskWindowDays: 18}
	out, err = wide.AssessRisk(context.Background(), "", "")
	if err != nil {
		t.Fatalf("AssessRisk wide: %v", err)
	}
	if out.Employees[0].RiskLevel != "low" {
		t.Fatalf("wide window should count the old check-ins: %+v", out.Employees[0])
	}
}
