package analytics

import (
	"context"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/harborwell/wellness-backend/internal/repo"
	"github.com/harborwell/wellness-backend/internal/text"
)

// SentimentSample is one indexed event surfaced as a top or bottom response.
type SentimentSample struct {
	SourceKind string  `json:"source_kind"`
	SourceID   string  `json:"source_id"`
	UserID     string  `json:"user_id"`
	Day        string  `json:"day"`
	Score      float64 `json:"score"`
	Label      string  `json:"label"`
}

// KeywordCount is a lexicon word with its summed frequency.
type KeywordCount struct {
	Word      string `json:"word"`
	Frequency int    `json:"frequency"`
}

// SentimentDashboard aggregates sentiment over journals, survey text, and
// check-in feedback through the word index.
type SentimentDashboard struct {
	From            string             `json:"from"`
	To              string             `json:"to"`
	Department      string             `json:"department,omitempty"`
	TotalDocuments  int                `json:"total_documents"`
	AverageScore    float64            `json:"average_score"`
	OverallLabel    string             `json:"overall_label"`
	Distribution    map[string]int     `json:"distribution"`
	ByDepartment    map[string]float64 `json:"by_department"`
	TopResponses    []SentimentSample  `json:"top_responses"`
	BottomResponses []SentimentSample  `json:"bottom_responses"`
	TopPositive     []KeywordCount     `json:"top_positive_keywords"`
	TopNegative     []KeywordCount     `json:"top_negative_keywords"`
}

const sentimentSampleLimit = 5

// Sentiment builds the sentiment dashboard for a window, optionally scoped
// to one department. Empty windows yield a zero-valued dashboard.
func (s *Service) Sentiment(ctx context.Context, from, to time.Time, department string) (*SentimentDashboard, error) {
	tr := otel.Tracer("analytics/Service")
	ctx, span := tr.Start(ctx, "Sentiment", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	from, to, err := s.normalizeWindow(from, to)
	if err != nil {
		return nil, err
	}

	f := repo.WordRowFilter{From: from, To: to}
	if department != "" {
		f.Departments = []string{department}
	}
	rows, err := repo.ListWordRows(ctx, s.DB, f)
	if err != nil {
		return nil, err
	}

	out := &SentimentDashboard{
		From:            from.UTC().Format("2006-01-02"),
		To:              to.UTC().Format("2006-01-02"),
		Department:      department,
		OverallLabel:    text.Label(0),
		Distribution:    map[string]int{},
		ByDepartment:    map[string]float64{},
		TopResponses:    []SentimentSample{},
		BottomResponses: []SentimentSample{},
		TopPositive:     []KeywordCount{},
		TopNegative:     []KeywordCount{},
	}
	if len(rows) == 0 {
		return out, nil
	}

	sum := 0.0
	deptSum := map[string]float64{}
	deptN := map[string]int{}
	positive := map[string]int{}
	negative := map[string]int{}
	samples := make([]SentimentSample, 0, len(rows))
	for _, r := range rows {
		sum += r.Sentiment
		out.Distribution[r.SentimentLabel]++
		deptSum[r.Department] += r.Sentiment
		deptN[r.Department]++
		for _, w := range r.TopWords {
			switch w.Sentiment {
			case "positive":
				positive[w.Word] += w.Frequency
			case "negative":
				negative[w.Word] += w.Frequency
			}
		}
		samples = append(samples, SentimentSample{
			SourceKind: r.SourceKind,
			SourceID:   r.SourceID,
			UserID:     r.UserID,
			Day:        r.Day,
			Score:      round2(r.Sentiment),
			Label:      r.SentimentLabel,
		})
	}

	out.TotalDocuments = len(rows)
	avg := sum / float64(len(rows))
	out.AverageScore = round2(avg)
	out.OverallLabel = text.Label(avg)
	for d, n := range deptN {
		out.ByDepartment[d] = round2(deptSum[d] / float64(n))
	}

	sort.Slice(samples, func(i, j int) bool {
		if samples[i].Score != samples[j].Score {
			return samples[i].Score > samples[j].Score
		}
		return samples[i].SourceID < samples[j].SourceID
	})
	top := sentimentSampleLimit
	if top > len(samples) {
		top = len(samples)
	}
	out.TopResponses = append(out.TopResponses, samples[:top]...)
	for i := len(samples) - 1; i >= len(samples)-top; i-- {
		out.BottomResponses = append(out.BottomResponses, samples[i])
	}

	out.TopPositive = topKeywords(positive, sentimentSampleLimit)
	out.TopNegative = topKeywords(negative, sentimentSampleLimit)
	return out, nil
}

func topKeywords(counts map[string]int, limit int) []KeywordCount {
	out := make([]KeywordCount, 0, len(counts))
	for w, n := range counts {
		out = append(out, KeywordCount{Word: w, Frequency: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		return out[i].Word < out[j].Word
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
