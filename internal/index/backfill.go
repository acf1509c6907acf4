package index

import (
	"context"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/harborwell/wellness-backend/internal/domain"
	"github.com/harborwell/wellness-backend/internal/repo"
	"github.com/harborwell/wellness-backend/internal/utils"
)

const backfillBatch = 200

// BackfillResult reports what a backfill pass touched per source kind.
type BackfillResult struct {
	CheckIns int `json:"check_ins"`
	Journals int `json:"journals"`
	Surveys  int `json:"surveys"`
	Skipped  int `json:"skipped"`
}

// Backfill rebuilds the word index from every existing text-bearing event.
// The three source kinds are scanned concurrently; each row is an upsert so
// re-running a backfill converges instead of duplicating. Events without
// usable text are counted as skipped.
func (w *Writer) Backfill(ctx context.Context) (BackfillResult, error) {
	departments, err := w.departmentsByUser(ctx)
	if err != nil {
		return BackfillResult{}, err
	}
	textQuestions, err := w.textQuestionIDs(ctx)
	if err != nil {
		return BackfillResult{}, err
	}

	var checkins, journals, surveys, skipped int64

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var batch []domain.CheckIn
		return w.DB.WithContext(gctx).
			Where("feedback <> ''").
			FindInBatches(&batch, backfillBatch, func(_ *gorm.DB, _ int) error {
				for i := range batch {
					c := &batch[i]
					row := BuildRow(domain.SourceKindCheckIn, c.ID, c.UserID, c.Day, departments[c.UserID], c.Feedback, checkinWeight)
					if row == nil {
						atomic.AddInt64(&skipped, 1)
						continue
					}
					if err := repo.UpsertWordRow(gctx, w.DB, row); err != nil {
						return err
					}
					atomic.AddInt64(&checkins, 1)
				}
				return nil
			}).Error
	})

	g.Go(func() error {
		var batch []domain.JournalEntry
		return w.DB.WithContext(gctx).
			FindInBatches(&batch, backfillBatch, func(_ *gorm.DB, _ int) error {
				for i := range batch {
					j := &batch[i]
					row := BuildRow(domain.SourceKindJournal, j.ID, j.UserID, utils.DayString(j.CreatedAt), departments[j.UserID], j.Body, defaultWeight)
					if row == nil {
						atomic.AddInt64(&skipped, 1)
						continue
					}
					if err := repo.UpsertWordRow(gctx, w.DB, row); err != nil {
						return err
					}
					atomic.AddInt64(&journals, 1)
				}
				return nil
			}).Error
	})

	g.Go(func() error {
		var batch []domain.SurveyResponse
		return w.DB.WithContext(gctx).
			FindInBatches(&batch, backfillBatch, func(_ *gorm.DB, _ int) error {
				for i := range batch {
					r := &batch[i]
					content := joinTextAnswers(r.Answers, textQuestions)
					row := BuildRow(domain.SourceKindSurvey, r.ID, r.UserID, utils.DayString(r.CreatedAt), departments[r.UserID], content, defaultWeight)
					if row == nil {
						atomic.AddInt64(&skipped, 1)
						continue
					}
					if err := repo.UpsertWordRow(gctx, w.DB, row); err != nil {
						return err
					}
					atomic.AddInt64(&surveys, 1)
				}
				return nil
			}).Error
	})

	if err := g.Wait(); err != nil {
		return BackfillResult{}, err
	}
	res := BackfillResult{
		CheckIns: int(checkins),
		Journals: int(journals),
		Surveys:  int(surveys),
		Skipped:  int(skipped),
	}
	w.Log.Info().
		Int("check_ins", res.CheckIns).
		Int("journals", res.Journals).
		Int("surveys", res.Surveys).
		Int("skipped", res.Skipped).
		Msg("word index backfill complete")
	return res, nil
}

func (w *Writer) departmentsByUser(ctx context.Context) (map[string]string, error) {
	var users []domain.User
	if err := w.DB.WithContext(ctx).Select("id", "department").Find(&users).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(users))
	for _, u := range users {
		out[u.ID] = u.Department
	}
	return out, nil
}

// textQuestionIDs collects the ids of every text question, across all
// surveys, so a rebuild indexes exactly what the submission path indexed.
func (w *Writer) textQuestionIDs(ctx context.Context) (map[string]bool, error) {
	var ids []string
	err := w.DB.WithContext(ctx).Model(&domain.SurveyQuestion{}).
		Where("kind = ?", domain.QuestionText).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// joinTextAnswers concatenates a response's free-text answers. Choice
// answers are also strings but carry option labels, not prose, so only
// answers to text questions are indexed.
func joinTextAnswers(answers map[string]any, textQuestions map[string]bool) string {
	joined := ""
	for qid, v := range answers {
		if !textQuestions[qid] {
			continue
		}
		s, ok := v.(string)
		if !ok || strings.TrimSpace(s) == "" {
			continue
		}
		if joined != "" {
			joined += " "
		}
		joined += s
	}
	return joined
}
