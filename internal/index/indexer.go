// Package index maintains the word-frequency index: one row per text-bearing
// event summarizing its top words, sentiment and themes. Rows are written
// post-commit and keyed by (source_kind, source_id), so reprocessing an
// event is an idempotent upsert.
package index

import (
	"context"
	"sort"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/harborwell/wellness-backend/internal/domain"
	"github.com/harborwell/wellness-backend/internal/repo"
	"github.com/harborwell/wellness-backend/internal/text"
	"github.com/harborwell/wellness-backend/internal/utils"
)

const (
	topWordLimit = 5

	// Check-in feedback is short and often templated; its words carry half
	// the weight of journal or survey prose when ranking.
	checkinWeight = 0.5
	defaultWeight = 1.0
)

// Writer builds and persists word rows. It satisfies the indexing hook the
// services layer calls after commit.
type Writer struct {
	DB  *gorm.DB
	Log zerolog.Logger
}

// NewWriter returns a Writer over db.
func NewWriter(db *gorm.DB, log zerolog.Logger) *Writer {
	return &Writer{DB: db, Log: log}
}

// IndexCheckIn indexes the feedback text of a check-in. Empty feedback is
// skipped upstream.
func (w *Writer) IndexCheckIn(ctx context.Context, c *domain.CheckIn, department string) {
	w.write(ctx, domain.SourceKindCheckIn, c.ID, c.UserID, c.Day, department, c.Feedback, checkinWeight)
}

// IndexJournal indexes a journal entry's content.
func (w *Writer) IndexJournal(ctx context.Context, j *domain.JournalEntry, department string) {
	w.write(ctx, domain.SourceKindJournal, j.ID, j.UserID, utils.DayString(j.CreatedAt), department, j.Body, defaultWeight)
}

// IndexSurveyText indexes the concatenated free-text answers of a response.
func (w *Writer) IndexSurveyText(ctx context.Context, r *domain.SurveyResponse, texts []string, department string) {
	joined := ""
	for i, t := range texts {
		if i > 0 {
			joined += " "
		}
		joined += t
	}
	w.write(ctx, domain.SourceKindSurvey, r.ID, r.UserID, utils.DayString(r.CreatedAt), department, joined, defaultWeight)
}

func (w *Writer) write(ctx context.Context, kind, sourceID, userID, day, department, content string, weight float64) {
	row := BuildRow(kind, sourceID, userID, day, department, content, weight)
	if row == nil {
		return
	}
	if err := repo.UpsertWordRow(ctx, w.DB, row); err != nil {
		w.Log.Error().Err(err).
			Str("source_kind", kind).
			Str("source_id", sourceID).
			Msg("upsert word row")
	}
}

// BuildRow tokenizes content and produces a word row, or nil when the text
// yields no tokens. Ranking is count*weight, ties broken alphabetically so
// output is stable.
func BuildRow(kind, sourceID, userID, day, department, content string, weight float64) *domain.WordFrequencyRow {
	tokens := text.Tokenize(content)
	if len(tokens) == 0 {
		return nil
	}
	counts := text.WordCounts(tokens)

	type ranked struct {
		word  string
		count int
		score float64
	}
	words := make([]ranked, 0, len(counts))
	for word, n := range counts {
		words = append(words, ranked{word: word, count: n, score: float64(n) * weight})
	}
	sort.Slice(words, func(i, j int) bool {
		if words[i].score != words[j].score {
			return words[i].score > words[j].score
		}
		return words[i].word < words[j].word
	})
	if len(words) > topWordLimit {
		words = words[:topWordLimit]
	}

	top := make([]domain.TopWord, len(words))
	for i, r := range words {
		top[i] = domain.TopWord{Word: r.word, Frequency: r.count, Sentiment: text.WordSentiment(r.word)}
	}

	score := text.Score(tokens)
	themes := text.ExtractThemes(tokens)
	ts := make([]domain.ThemeScore, len(themes))
	for i, th := range themes {
		ts[i] = domain.ThemeScore{Theme: th.Name, Confidence: th.Confidence}
	}

	return &domain.WordFrequencyRow{
		UserID:         userID,
		SourceKind:     kind,
		SourceID:       sourceID,
		Day:            day,
		Department:     department,
		TopWords:       top,
		Sentiment:      score,
		SentimentLabel: text.Label(score),
		Themes:         ts,
		TotalWords:     len(tokens),
		UniqueWords:    len(counts),
	}
}
