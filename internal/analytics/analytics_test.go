package analytics

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"

	"github.com/harborwell/wellness-backend/internal/domain"
	"github.com/harborwell/wellness-backend/internal/repo"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: glogger.Default.LogMode(glogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email, department string) *domain.User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), db, email, "User "+email, department, domain.RoleEmployee)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func seedCheckIn(t *testing.T, db *gorm.DB, userID, day string, mood int) {
	t.Helper()
	c := &domain.CheckIn{
		UserID:    userID,
		Day:       day,
		Mood:      mood,
		Source:    domain.SourceWeb,
		CreatedAt: mustDay(t, day).Add(9 * time.Hour),
	}
	if err := repo.InsertCheckIn(context.Background(), db, c); err != nil {
		t.Fatalf("seed check-in: %v", err)
	}
}

func mustDay(t *testing.T, day string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", day)
	if err != nil {
		t.Fatalf("parse day: %v", err)
	}
	return d
}

func fixedNow(day string, t *testing.T) func() time.Time {
	d := mustDay(t, day).Add(12 * time.Hour)
	return func() time.Time { return d }
}

func TestOverview_WindowTooLarge(t *testing.T) {
	db := testDB(t)
	svc := &Service{DB: db}
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(2, 0, 0)
	if _, err := svc.Overview(context.Background(), from, to); !errors.Is(err, ErrWindowTooLarge) {
		t.Fatalf("expected ErrWindowTooLarge, got %v", err)
	}
}

func TestOverview_EmptyStoreIsWellFormed(t *testing.T) {
	db := testDB(t)
	svc := &Service{DB: db, Now: fixedNow("2025-03-10", t)}

	out, err := svc.Overview(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if out.TotalEmployees != 0 || out.TotalCheckIns != 0 || out.EngagementRate != 0 {
		t.Fatalf("expected zero-valued overview: %+v", out)
	}
	if len(out.MoodDistribution) != 5 {
		t.Fatalf("mood distribution must carry all five buckets: %v", out.MoodDistribution)
	}
	for m := 1; m <= 5; m++ {
		if v, ok := out.MoodDistribution[m]; !ok || v != 0 {
			t.Fatalf("bucket %d should be present and zero: %v", m, out.MoodDistribution)
		}
	}
	if out.From != "2025-02-08" || out.To != "2025-03-10" {
		t.Fatalf("default window wrong: %s .. %s", out.From, out.To)
	}
	if out.MoodTrend == "" || out.EngagementTrend == "" {
		t.Fatalf("trend labels must be set: %+v", out)
	}
	if out.Departments == nil {
		t.Fatalf("departments must be an empty slice, not nil")
	}
}

func TestOverview_Aggregates(t *testing.T) {
	db := testDB(t)
	a := seedUser(t, db, "a@example.com", "engineering")
	b := seedUser(t, db, "b@example.com", "sales")
	seedUser(t, db, "c@example.com", "sales") // never checks in

	seedCheckIn(t, db, a.ID, "2025-03-08", 4)
	seedCheckIn(t, db, a.ID, "2025-03-09", 5)
	seedCheckIn(t, db, b.ID, "2025-03-09", 3)

	svc := &Service{DB: db, Now: fixedNow("2025-03-10", t)}
	out, err := svc.Overview(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if out.TotalEmployees != 3 || out.ActiveEmployees != 2 || out.TotalCheckIns != 3 {
		t.Fatalf("counts wrong: %+v", out)
	}
	if out.AverageMood != 4 {
		t.Fatalf("average mood = %v, want 4", out.AverageMood)
	}
	if out.MoodDistribution[4] != 1 || out.MoodDistribution[5] != 1 || out.MoodDistribution[3] != 1 {
		t.Fatalf("mood distribution wrong: %v", out.MoodDistribution)
	}
	if out.EngagementRate != 66.7 {
		t.Fatalf("engagement rate = %v, want 66.7", out.EngagementRate)
	}
	if len(out.Departments) != 2 {
		t.Fatalf("expected 2 department rows: %+v", out.Departments)
	}
}

func TestENPS_Arithmetic(t *testing.T) {
	db := testDB(t)
	svc := &Service{DB: db, Now: fixedNow("2025-03-10", t)}
	ctx := context.Background()

	q := domain.SurveyQuestion{
		ID:     uuid.NewString(),
		Kind:   domain.QuestionScale,
		Prompt: "How likely are you to recommend working here?",
		Tags:   []string{"enps"},
	}
	survey := &domain.Survey{
		ID:        uuid.NewString(),
		Title:     "Quarterly pulse",
		Kind:      domain.SurveyKindPulse,
		Active:    true,
		Questions: []domain.SurveyQuestion{q},
	}
	if err := repo.CreateSurvey(ctx, db, survey); err != nil {
		t.Fatalf("seed survey: %v", err)
	}

	completed := mustDay(t, "2025-03-05").Add(9 * time.Hour)
	for i, score := range []float64{10, 9, 7, 3} {
		u := seedUser(t, db, "enps"+string(rune('a'+i))+"@example.com", "engineering")
		resp := &domain.SurveyResponse{
			SurveyID:    survey.ID,
			UserID:      u.ID,
			Answers:     map[string]any{q.ID: score},
			CompletedAt: completed,
		}
		if err := repo.InsertResponse(ctx, db, resp); err != nil {
			t.Fatalf("seed response: %v", err)
		}
	}

	out, err := svc.ENPS(ctx, time.Time{}, time.Time{}, "")
	if err != nil {
		t.Fatalf("ENPS: %v", err)
	}
	if out.Responses != 4 || out.Promoters != 2 || out.Passives != 1 || out.Detractors != 1 {
		t.Fatalf("buckets wrong: %+v", out)
	}
	// (2-1)/4 * 100 = 25 -> Good.
	if out.Score != 25 || out.Category != "Good" {
		t.Fatalf("score/category wrong: %+v", out)
	}
	if out.Average != 7.25 {
		t.Fatalf("average = %v, want 7.25", out.Average)
	}
}

func TestENPS_NoTaggedQuestions(t *testing.T) {
	db := testDB(t)
	svc := &Service{DB: db, Now: fixedNow("2025-03-10", t)}
	out, err := svc.ENPS(context.Background(), time.Time{}, time.Time{}, "")
	if err != nil {
		t.Fatalf("ENPS: %v", err)
	}
	if out.Responses != 0 || out.Score != 0 || out.Category != "Acceptable" {
		t.Fatalf("empty eNPS should be zero/Acceptable: %+v", out)
	}
}

func setCoins(t *testing.T, db *gorm.DB, userID string, coins, streak int) {
	t.Helper()
	err := db.Model(&domain.WellnessState{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{"happy_coins": coins, "current_streak": streak}).Error
	if err != nil {
		t.Fatalf("set coins: %v", err)
	}
}

func TestHappyCoins_OrderingAndTies(t *testing.T) {
	db := testDB(t)
	a := seedUser(t, db, "a@example.com", "engineering")
	b := seedUser(t, db, "b@example.com", "engineering")
	c := seedUser(t, db, "c@example.com", "sales")
	setCoins(t, db, a.ID, 100, 2)
	setCoins(t, db, b.ID, 300, 5)
	setCoins(t, db, c.ID, 100, 1)
	svc := &Service{DB: db}
	ctx := context.Background()

	lb, err := svc.HappyCoins(ctx, "", a.ID, 1, 10)
	if err != nil {
		t.Fatalf("HappyCoins: %v", err)
	}
	if lb.Total != 3 || len(lb.Entries) != 3 {
		t.Fatalf("total/entries: %+v", lb)
	}
	if lb.Entries[0].UserID != b.ID || lb.Entries[0].Rank != 1 {
		t.Fatalf("top entry wrong: %+v", lb.Entries[0])
	}
	// a and c tie on coins; user id ascending breaks the tie.
	low, high := a.ID, c.ID
	if low > high {
		low, high = high, low
	}
	if lb.Entries[1].UserID != low || lb.Entries[2].UserID != high {
		t.Fatalf("tie-break order wrong: %+v", lb.Entries)
	}

	// Requester marking and rank.
	var marked int
	for _, e := range lb.Entries {
		if e.IsRequester {
			marked++
			if e.UserID != a.ID {
				t.Fatalf("wrong requester marked: %+v", e)
			}
		}
	}
	if marked != 1 || lb.RequesterRank == 0 {
		t.Fatalf("requester rank missing: %+v", lb)
	}
}

func TestHappyCoins_DepartmentScopeAndPaging(t *testing.T) {
	db := testDB(t)
	a := seedUser(t, db, "a@example.com", "engineering")
	b := seedUser(t, db, "b@example.com", "sales")
	setCoins(t, db, a.ID, 100, 1)
	setCoins(t, db, b.ID, 300, 1)
	svc := &Service{DB: db}
	ctx := context.Background()

	lb, err := svc.HappyCoins(ctx, "engineering", "", 1, 10)
	if err != nil {
		t.Fatalf("HappyCoins: %v", err)
	}
	if lb.Total != 1 || len(lb.Entries) != 1 || lb.Entries[0].UserID != a.ID {
		t.Fatalf("department scope leaked: %+v", lb)
	}

	// Page past the end: empty entries, stable total.
	lb, err = svc.HappyCoins(ctx, "", "", 5, 10)
	if err != nil {
		t.Fatalf("HappyCoins page 5: %v", err)
	}
	if lb.Total != 2 || len(lb.Entries) != 0 {
		t.Fatalf("overrun page: %+v", lb)
	}
}

func TestUserNeighborhood(t *testing.T) {
	db := testDB(t)
	ids := make([]string, 0, 8)
	for i := 0; i < 8; i++ {
		u := seedUser(t, db, "n"+string(rune('a'+i))+"@example.com", "engineering")
		setCoins(t, db, u.ID, (8-i)*10, 1)
		ids = append(ids, u.ID)
	}
	svc := &Service{DB: db}

	lb, err := svc.UserNeighborhood(context.Background(), "", ids[7]) // last place
	if err != nil {
		t.Fatalf("UserNeighborhood: %v", err)
	}
	if lb.RequesterRank != 8 {
		t.Fatalf("rank = %d, want 8", lb.RequesterRank)
	}
	var found bool
	for _, e := range lb.Entries {
		if e.UserID == ids[7] && e.IsRequester {
			found = true
		}
	}
	if !found {
		t.Fatalf("requester row missing from neighborhood: %+v", lb.Entries)
	}
}

func TestEngagement_GapFreeSeries(t *testing.T) {
	db := testDB(t)
	u := seedUser(t, db, "a@example.com", "engineering")
	seedCheckIn(t, db, u.ID, "2025-03-09", 4)
	svc := &Service{DB: db, Now: fixedNow("2025-03-10", t)}

	out, err := svc.Engagement(context.Background(), 7)
	if err != nil {
		t.Fatalf("Engagement: %v", err)
	}
	if out.PeriodDays != 7 || len(out.DailySeries) != 7 {
		t.Fatalf("series length: %+v", out)
	}
	if out.DailySeries[0].Date != "2025-03-04" || out.DailySeries[6].Date != "2025-03-10" {
		t.Fatalf("series bounds: %s .. %s", out.DailySeries[0].Date, out.DailySeries[6].Date)
	}
	for _, d := range out.DailySeries {
		if d.Date == "2025-03-09" {
			if d.TotalCheckIns != 1 || d.ActiveUsers != 1 || d.EngagementRate != 100 {
				t.Fatalf("active day wrong: %+v", d)
			}
		} else if d.TotalCheckIns != 0 || d.ActiveUsers != 0 {
			t.Fatalf("gap day should be zero: %+v", d)
		}
	}
}

func TestEngagement_PeriodValidation(t *testing.T) {
	db := testDB(t)
	svc := &Service{DB: db}
	if _, err := svc.Engagement(context.Background(), 400); !errors.Is(err, ErrWindowTooLarge) {
		t.Fatalf("expected ErrWindowTooLarge, got %v", err)
	}
	out, err := svc.Engagement(context.Background(), 0)
	if err != nil || out.PeriodDays != 30 {
		t.Fatalf("default period: %v %+v", err, out)
	}
}

func TestExport_UnknownType(t *testing.T) {
	db := testDB(t)
	svc := &Service{DB: db}
	if _, err := svc.Export(context.Background(), "pdf", time.Time{}, time.Time{}); !errors.Is(err, ErrUnknownExportType) {
		t.Fatalf("expected ErrUnknownExportType, got %v", err)
	}
}

func TestHelpers_TrendsAndLabels(t *testing.T) {
	if moodTrend(3.5) != TrendPositive || moodTrend(2.5) != TrendNeutral || moodTrend(2.4) != TrendConcerning {
		t.Fatalf("moodTrend thresholds wrong")
	}
	if engagementTrend(75) != EngagementHigh || engagementTrend(50) != EngagementModerate || engagementTrend(49.9) != EngagementLow {
		t.Fatalf("engagementTrend thresholds wrong")
	}
	if enpsCategory(50) != "Excellent" || enpsCategory(10) != "Good" || enpsCategory(-10) != "Acceptable" || enpsCategory(-11) != "Poor" {
		t.Fatalf("enpsCategory thresholds wrong")
	}
	if percentage(1, 0) != 0 {
		t.Fatalf("percentage with zero total should be 0")
	}
	if DisplayName("") != "Unassigned" || DisplayName("customer success") != "Customer Success" {
		t.Fatalf("DisplayName wrong")
	}
}
