package analytics

import (
	"context"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/harborwell/wellness-backend/internal/repo"
	"github.com/harborwell/wellness-backend/internal/utils"
)

// EngagementDay is one point in the engagement daily series.
type EngagementDay struct {
	Date           string  `json:"date"`
	ActiveUsers    int64   `json:"active_users"`
	TotalCheckIns  int64   `json:"total_check_ins"`
	AverageMood    float64 `json:"average_mood"`
	EngagementRate float64 `json:"engagement_rate"`
}

// EngagementMetrics is the engagement dashboard for a look-back period.
type EngagementMetrics struct {
	PeriodDays      int              `json:"period_days"`
	DailySeries     []EngagementDay  `json:"daily_series"`
	StreakHistogram map[string]int64 `json:"streak_histogram"`
	CoinsHistogram  map[string]int64 `json:"coins_histogram"`
}

// Engagement builds the daily engagement series over the last period days
// plus streak and coin histograms of current state. Days with no check-ins
// appear with zero values so the series has no gaps.
func (s *Service) Engagement(ctx context.Context, periodDays int) (*EngagementMetrics, error) {
	tr := otel.Tracer("analytics/Service")
	ctx, span := tr.Start(ctx, "Engagement",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.Int("period_days", periodDays)),
	)
	defer span.End()

	if periodDays <= 0 {
		periodDays = 30
	}
	if periodDays > 366 {
		return nil, ErrWindowTooLarge
	}
	now := s.now().UTC()
	from := utils.DayUTC(now).AddDate(0, 0, -(periodDays - 1))

	total, err := repo.CountActiveUsers(ctx, s.DB, "")
	if err != nil {
		return nil, err
	}
	rows, err := repo.DailyCheckInSeries(ctx, s.DB, from, now, "")
	if err != nil {
		return nil, err
	}
	streaks, err := repo.StreakHistogram(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	coins, err := repo.CoinsHistogram(ctx, s.DB)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]repo.DailyCheckInRow, len(rows))
	for _, r := range rows {
		byDay[r.Day] = r
	}
	series := make([]EngagementDay, 0, periodDays)
	for d := from; !d.After(now); d = d.AddDate(0, 0, 1) {
		key := utils.DayString(d)
		r := byDay[key]
		series = append(series, EngagementDay{
			Date:           key,
			ActiveUsers:    r.ActiveUsers,
			TotalCheckIns:  r.Total,
			AverageMood:    round2(r.AverageMood),
			EngagementRate: round1(percentage(r.ActiveUsers, total)),
		})
	}
	return &EngagementMetrics{
		PeriodDays:      periodDays,
		DailySeries:     series,
		StreakHistogram: streaks,
		CoinsHistogram:  coins,
	}, nil
}

// eNPS question markers: a scale question tagged with any of these counts
// toward the recommendation score.
var enpsMarkers = []string{"recommendation", "loyalty", "enps"}

// ENPSResult is the employee net promoter score over a window.
type ENPSResult struct {
	From       string  `json:"from"`
	To         string  `json:"to"`
	Department string  `json:"department,omitempty"`
	Responses  int     `json:"responses"`
	Promoters  int     `json:"promoters"`
	Passives   int     `json:"passives"`
	Detractors int     `json:"detractors"`
	Score      int     `json:"score"`
	Category   string  `json:"category"`
	Average    float64 `json:"average"`
}

// ENPS computes the employee net promoter score from scale answers to
// recommendation-tagged questions: promoters score ≥ 9, detractors ≤ 6,
// eNPS = round((%promoters − %detractors) × 100).
func (s *Service) ENPS(ctx context.Context, from, to time.Time, department string) (*ENPSResult, error) {
	tr := otel.Tracer("analytics/Service")
	ctx, span := tr.Start(ctx, "ENPS", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	from, to, err := s.normalizeWindow(from, to)
	if err != nil {
		return nil, err
	}

	out := &ENPSResult{
		From:       from.UTC().Format("2006-01-02"),
		To:         to.UTC().Format("2006-01-02"),
		Department: department,
		Category:   enpsCategory(0),
	}

	questions, err := repo.ScaleQuestionsByTags(ctx, s.DB, enpsMarkers)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return out, nil
	}
	wanted := make(map[string]struct{}, len(questions))
	for _, q := range questions {
		wanted[q.ID] = struct{}{}
	}

	responses, err := repo.ResponsesInWindow(ctx, s.DB, from, to, department)
	if err != nil {
		return nil, err
	}

	sum := 0.0
	for _, r := range responses {
		for qid, raw := range r.Answers {
			if _, ok := wanted[qid]; !ok {
				continue
			}
			score, ok := numericAnswer(raw)
			if !ok {
				continue
			}
			out.Responses++
			sum += score
			switch {
			case score >= 9:
				out.Promoters++
			case score <= 6:
				out.Detractors++
			default:
				out.Passives++
			}
		}
	}
	if out.Responses > 0 {
		pct := (float64(out.Promoters) - float64(out.Detractors)) / float64(out.Responses) * 100
		out.Score = int(math.Round(pct))
		out.Average = round2(sum / float64(out.Responses))
	}
	out.Category = enpsCategory(out.Score)
	span.SetAttributes(attribute.Int("enps.responses", out.Responses))
	return out, nil
}

// enpsCategory buckets a score: Excellent ≥ 50, Good ≥ 10, Acceptable ≥ −10,
// else Poor.
func enpsCategory(score int) string {
	switch {
	case score >= 50:
		return "Excellent"
	case score >= 10:
		return "Good"
	case score >= -10:
		return "Acceptable"
	default:
		return "Poor"
	}
}

// numericAnswer coerces a stored answer to a float. JSON round-trips store
// numbers as float64; direct submissions may carry int.
func numericAnswer(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
