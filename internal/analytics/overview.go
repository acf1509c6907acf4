package analytics

import (
	"context"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/harborwell/wellness-backend/internal/domain"
	"github.com/harborwell/wellness-backend/internal/repo"
)

// DepartmentBreakdown is the per-department slice of a company overview.
type DepartmentBreakdown struct {
	Department    string  `json:"department"`
	DisplayName   string  `json:"display_name"`
	EmployeeCount int64   `json:"employee_count"`
	AvgHappyCoins float64 `json:"avg_happy_coins"`
	AvgStreak     float64 `json:"avg_streak"`
}

// CompanyOverview is the top-line wellness dashboard for a date window.
type CompanyOverview struct {
	From               string                `json:"from"`
	To                 string                `json:"to"`
	TotalEmployees     int64                 `json:"total_employees"`
	ActiveEmployees    int64                 `json:"active_employees"`
	EngagementRate     float64               `json:"engagement_rate"`
	TotalCheckIns      int64                 `json:"total_check_ins"`
	AverageMood        float64               `json:"average_mood"`
	MoodDistribution   map[int]int64         `json:"mood_distribution"`
	HighRiskCount      int64                 `json:"high_risk_count"`
	HighRiskPercentage float64               `json:"high_risk_percentage"`
	Departments        []DepartmentBreakdown `json:"departments"`
	MoodTrend          string                `json:"mood_trend"`
	EngagementTrend    string                `json:"engagement_trend"`
}

// Overview builds the company-wide dashboard for the window.
func (s *Service) Overview(ctx context.Context, from, to time.Time) (*CompanyOverview, error) {
	tr := otel.Tracer("analytics/Service")
	ctx, span := tr.Start(ctx, "Overview", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	from, to, err := s.normalizeWindow(from, to)
	if err != nil {
		return nil, err
	}

	total, err := repo.CountActiveUsers(ctx, s.DB, "")
	if err != nil {
		return nil, err
	}
	stats, err := repo.CheckInStatsInWindow(ctx, s.DB, from, to, "")
	if err != nil {
		return nil, err
	}
	moods, err := repo.MoodDistributionInWindow(ctx, s.DB, from, to, "")
	if err != nil {
		return nil, err
	}
	highRisk, err := s.countHighRisk(ctx, "")
	if err != nil {
		return nil, err
	}
	deptRows, err := repo.StateByDepartment(ctx, s.DB)
	if err != nil {
		return nil, err
	}

	rate := percentage(stats.ActiveUsers, total)
	out := &CompanyOverview{
		From:               from.UTC().Format("2006-01-02"),
		To:                 to.UTC().Format("2006-01-02"),
		TotalEmployees:     total,
		ActiveEmployees:    stats.ActiveUsers,
		EngagementRate:     round1(rate),
		TotalCheckIns:      stats.Total,
		AverageMood:        round2(stats.AverageMood),
		MoodDistribution:   fullMoodDistribution(moods),
		HighRiskCount:      highRisk,
		HighRiskPercentage: round1(percentage(highRisk, total)),
		Departments:        make([]DepartmentBreakdown, 0, len(deptRows)),
		MoodTrend:          moodTrend(stats.AverageMood),
		EngagementTrend:    engagementTrend(rate),
	}
	for _, d := range deptRows {
		out.Departments = append(out.Departments, DepartmentBreakdown{
			Department:    d.Department,
			DisplayName:   DisplayName(d.Department),
			EmployeeCount: d.Employees,
			AvgHappyCoins: round1(d.AvgCoins),
			AvgStreak:     round1(d.AvgStreak),
		})
	}
	span.SetAttributes(attribute.Int64("employees.total", total))
	return out, nil
}

// EmployeeMetrics is the optional per-employee detail of a department view.
type EmployeeMetrics struct {
	UserID        string  `json:"user_id"`
	Name          string  `json:"name"`
	CheckIns      int64   `json:"check_ins"`
	AverageMood   float64 `json:"average_mood"`
	CurrentStreak int     `json:"current_streak"`
	HappyCoins    int     `json:"happy_coins"`
	RiskLevel     string  `json:"risk_level"`
}

// AttentionItem flags an employee the department view surfaces for follow-up.
type AttentionItem struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// DepartmentAnalytics is the department-scoped overview.
type DepartmentAnalytics struct {
	Department       string            `json:"department"`
	DisplayName      string            `json:"display_name"`
	From             string            `json:"from"`
	To               string            `json:"to"`
	EmployeeCount    int64             `json:"employee_count"`
	ActiveEmployees  int64             `json:"active_employees"`
	EngagementRate   float64           `json:"engagement_rate"`
	TotalCheckIns    int64             `json:"total_check_ins"`
	AverageMood      float64           `json:"average_mood"`
	MoodDistribution map[int]int64     `json:"mood_distribution"`
	MoodTrend        string            `json:"mood_trend"`
	EngagementTrend  string            `json:"engagement_trend"`
	Individuals      []EmployeeMetrics `json:"individuals,omitempty"`
	NeedsAttention   []AttentionItem   `json:"needs_attention"`
}

const attentionLimit = 10

// Department builds the department-scoped overview, optionally with
// per-employee metrics. Up to ten employees needing attention are listed:
// high risk, window average mood below 2.5, or no check-ins in the window.
func (s *Service) Department(ctx context.Context, department string, from, to time.Time, includeIndividuals bool) (*DepartmentAnalytics, error) {
	tr := otel.Tracer("analytics/Service")
	ctx, span := tr.Start(ctx, "Department",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("department", department)),
	)
	defer span.End()

	from, to, err := s.normalizeWindow(from, to)
	if err != nil {
		return nil, err
	}

	users, err := repo.ListActiveUsers(ctx, s.DB, department)
	if err != nil {
		return nil, err
	}
	stats, err := repo.CheckInStatsInWindow(ctx, s.DB, from, to, department)
	if err != nil {
		return nil, err
	}
	moods, err := repo.MoodDistributionInWindow(ctx, s.DB, from, to, department)
	if err != nil {
		return nil, err
	}
	perUser, err := repo.UserMoodsInWindow(ctx, s.DB, from, to, department)
	if err != nil {
		return nil, err
	}

	rate := percentage(stats.ActiveUsers, int64(len(users)))
	out := &DepartmentAnalytics{
		Department:       department,
		DisplayName:      DisplayName(department),
		From:             from.UTC().Format("2006-01-02"),
		To:               to.UTC().Format("2006-01-02"),
		EmployeeCount:    int64(len(users)),
		ActiveEmployees:  stats.ActiveUsers,
		EngagementRate:   round1(rate),
		TotalCheckIns:    stats.Total,
		AverageMood:      round2(stats.AverageMood),
		MoodDistribution: fullMoodDistribution(moods),
		MoodTrend:        moodTrend(stats.AverageMood),
		EngagementTrend:  engagementTrend(rate),
		NeedsAttention:   []AttentionItem{},
	}

	type flagged struct {
		item  AttentionItem
		order int // high risk first, then low mood, then silent
	}
	var flags []flagged
	for _, u := range users {
		state, err := repo.GetWellnessState(ctx, s.DB, u.ID)
		if err != nil {
			return nil, err
		}
		row := perUser[u.ID]

		if includeIndividuals {
			out.Individuals = append(out.Individuals, EmployeeMetrics{
				UserID:        u.ID,
				Name:          u.Name,
				CheckIns:      row.N,
				AverageMood:   round2(row.Avg),
				CurrentStreak: state.CurrentStreak,
				HappyCoins:    state.HappyCoins,
				RiskLevel:     state.RiskLevel,
			})
		}
		switch {
		case state.RiskLevel == domain.RiskHigh:
			flags = append(flags, flagged{AttentionItem{UserID: u.ID, Name: u.Name, Reason: "high risk score"}, 0})
		case row.N > 0 && row.Avg < 2.5:
			flags = append(flags, flagged{AttentionItem{UserID: u.ID, Name: u.Name, Reason: "low average mood"}, 1})
		case row.N == 0:
			flags = append(flags, flagged{AttentionItem{UserID: u.ID, Name: u.Name, Reason: "no check-ins in period"}, 2})
		}
	}
	sort.SliceStable(flags, func(i, j int) bool {
		if flags[i].order != flags[j].order {
			return flags[i].order < flags[j].order
		}
		return flags[i].item.UserID < flags[j].item.UserID
	})
	for i, f := range flags {
		if i == attentionLimit {
			break
		}
		out.NeedsAttention = append(out.NeedsAttention, f.item)
	}
	return out, nil
}

// countHighRisk counts active users currently bucketed high.
func (s *Service) countHighRisk(ctx context.Context, department string) (int64, error) {
	q := s.DB.WithContext(ctx).
		Model(&domain.WellnessState{}).
		Joins("JOIN users ON users.id = wellness_states.user_id").
		Where("users.active = ?", true).
		Where("wellness_states.risk_level = ?", domain.RiskHigh)
	if department != "" {
		q = q.Where("users.department = ?", department)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

// fullMoodDistribution guarantees keys 1..5 even when a mood never occurs.
func fullMoodDistribution(in map[int]int64) map[int]int64 {
	out := make(map[int]int64, 5)
	for mood := 1; mood <= 5; mood++ {
		out[mood] = in[mood]
	}
	return out
}
