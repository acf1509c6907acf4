package analytics

import (
	"context"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/harborwell/wellness-backend/internal/repo"
)

// WordCloudFilter narrows a word-cloud query.
type WordCloudFilter struct {
	From           time.Time
	To             time.Time
	UserID         string
	Departments    []string
	SourceKinds    []string
	MinOccurrences int
	Limit          int
}

// CloudWord is one aggregated word with its sentiment breakdown.
type CloudWord struct {
	Word      string         `json:"word"`
	Frequency int            `json:"frequency"`
	Users     int            `json:"users"`
	Sentiment map[string]int `json:"sentiment"`
}

// WordCloud is the aggregated word view over indexed events.
type WordCloud struct {
	From      string      `json:"from"`
	To        string      `json:"to"`
	Documents int         `json:"documents"`
	Words     []CloudWord `json:"words"`
}

// Cloud sums per-event top-word frequencies under the filter. Words are
// ordered by frequency descending, alphabetically on ties; entries under
// MinOccurrences are dropped; Limit defaults to 50.
func (s *Service) Cloud(ctx context.Context, f WordCloudFilter) (*WordCloud, error) {
	tr := otel.Tracer("analytics/Service")
	ctx, span := tr.Start(ctx, "Cloud", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	from, to, err := s.normalizeWindow(f.From, f.To)
	if err != nil {
		return nil, err
	}
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.MinOccurrences < 1 {
		f.MinOccurrences = 1
	}

	rows, err := repo.ListWordRows(ctx, s.DB, repo.WordRowFilter{
		From:        from,
		To:          to,
		UserID:      f.UserID,
		Departments: f.Departments,
		SourceKinds: f.SourceKinds,
	})
	if err != nil {
		return nil, err
	}

	type acc struct {
		freq      int
		users     map[string]struct{}
		sentiment map[string]int
	}
	words := map[string]*acc{}
	for _, r := range rows {
		for _, w := range r.TopWords {
			a := words[w.Word]
			if a == nil {
				a = &acc{users: map[string]struct{}{}, sentiment: map[string]int{}}
				words[w.Word] = a
			}
			a.freq += w.Frequency
			a.users[r.UserID] = struct{}{}
			a.sentiment[w.Sentiment] += w.Frequency
		}
	}

	out := &WordCloud{
		From:      from.UTC().Format("2006-01-02"),
		To:        to.UTC().Format("2006-01-02"),
		Documents: len(rows),
		Words:     []CloudWord{},
	}
	for w, a := range words {
		if a.freq < f.MinOccurrences {
			continue
		}
		out.Words = append(out.Words, CloudWord{
			Word:      w,
			Frequency: a.freq,
			Users:     len(a.users),
			Sentiment: a.sentiment,
		})
	}
	sort.Slice(out.Words, func(i, j int) bool {
		if out.Words[i].Frequency != out.Words[j].Frequency {
			return out.Words[i].Frequency > out.Words[j].Frequency
		}
		return out.Words[i].Word < out.Words[j].Word
	})
	if len(out.Words) > f.Limit {
		out.Words = out.Words[:f.Limit]
	}
	span.SetAttributes(attribute.Int("cloud.words", len(out.Words)))
	return out, nil
}

// TrendPoint is one day of a department's word-index trend.
type TrendPoint struct {
	Date      string  `json:"date"`
	Documents int     `json:"documents"`
	Sentiment float64 `json:"sentiment"`
}

// DepartmentTrends is the per-day sentiment/document series for a department.
type DepartmentTrends struct {
	Department string       `json:"department"`
	From       string       `json:"from"`
	To         string       `json:"to"`
	Series     []TrendPoint `json:"series"`
}

// Trends builds the per-day indexed-document and sentiment series for one
// department. Days with no documents are omitted.
func (s *Service) Trends(ctx context.Context, department string, from, to time.Time) (*DepartmentTrends, error) {
	tr := otel.Tracer("analytics/Service")
	ctx, span := tr.Start(ctx, "Trends",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("department", department)),
	)
	defer span.End()

	from, to, err := s.normalizeWindow(from, to)
	if err != nil {
		return nil, err
	}
	rows, err := repo.ListWordRows(ctx, s.DB, repo.WordRowFilter{
		From:        from,
		To:          to,
		Departments: []string{department},
	})
	if err != nil {
		return nil, err
	}

	out := &DepartmentTrends{
		Department: department,
		From:       from.UTC().Format("2006-01-02"),
		To:         to.UTC().Format("2006-01-02"),
		Series:     []TrendPoint{},
	}
	// rows arrive ordered by day ascending
	var cur *TrendPoint
	var sum float64
	var n int
	flush := func() {
		if cur != nil {
			cur.Sentiment = round2(sum / float64(n))
			out.Series = append(out.Series, *cur)
		}
	}
	for _, r := range rows {
		if cur == nil || cur.Date != r.Day {
			flush()
			cur = &TrendPoint{Date: r.Day}
			sum, n = 0, 0
		}
		cur.Documents++
		sum += r.Sentiment
		n++
	}
	flush()
	return out, nil
}

// ThemeSummary is one aggregated theme across indexed events.
type ThemeSummary struct {
	Theme         string  `json:"theme"`
	Documents     int     `json:"documents"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// IndexSummary is the word-index health and content overview.
type IndexSummary struct {
	From         string         `json:"from"`
	To           string         `json:"to"`
	Documents    int64          `json:"documents"`
	BySourceKind map[string]int `json:"by_source_kind"`
	TotalWords   int            `json:"total_words"`
	UniqueUsers  int            `json:"unique_users"`
	Themes       []ThemeSummary `json:"themes"`
}

// Summary reports document counts, word volume, and theme aggregation over
// the window.
func (s *Service) Summary(ctx context.Context, from, to time.Time) (*IndexSummary, error) {
	tr := otel.Tracer("analytics/Service")
	ctx, span := tr.Start(ctx, "Summary", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	from, to, err := s.normalizeWindow(from, to)
	if err != nil {
		return nil, err
	}
	rows, err := repo.ListWordRows(ctx, s.DB, repo.WordRowFilter{From: from, To: to})
	if err != nil {
		return nil, err
	}

	out := &IndexSummary{
		From:         from.UTC().Format("2006-01-02"),
		To:           to.UTC().Format("2006-01-02"),
		Documents:    int64(len(rows)),
		BySourceKind: map[string]int{},
		Themes:       []ThemeSummary{},
	}
	users := map[string]struct{}{}
	type themeAcc struct {
		docs int
		conf float64
	}
	themes := map[string]*themeAcc{}
	for _, r := range rows {
		out.BySourceKind[r.SourceKind]++
		out.TotalWords += r.TotalWords
		users[r.UserID] = struct{}{}
		for _, t := range r.Themes {
			a := themes[t.Theme]
			if a == nil {
				a = &themeAcc{}
				themes[t.Theme] = a
			}
			a.docs++
			a.conf += t.Confidence
		}
	}
	out.UniqueUsers = len(users)
	for name, a := range themes {
		out.Themes = append(out.Themes, ThemeSummary{
			Theme:         name,
			Documents:     a.docs,
			AvgConfidence: round2(a.conf / float64(a.docs)),
		})
	}
	sort.Slice(out.Themes, func(i, j int) bool {
		if out.Themes[i].Documents != out.Themes[j].Documents {
			return out.Themes[i].Documents > out.Themes[j].Documents
		}
		return out.Themes[i].Theme < out.Themes[j].Theme
	})
	return out, nil
}
