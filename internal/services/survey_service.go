// Package services – SurveyService
//
// Survey responses are idempotent per (survey, user): the unique index is
// the hard guarantee and the reward credit lives inside the same transaction
// as the response insert, so a retry storm can never double-credit coins.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/harborwell/wellness-backend/internal/domain"
	"github.com/harborwell/wellness-backend/internal/repo"
)

// SurveyService persists survey responses, credits rewards once, and feeds
// text answers to the word index.
type SurveyService struct {
	DB    *gorm.DB
	Locks *UserLocks

	Index  Indexer
	Notify Notifier

	Now func() time.Time
}

func (s *SurveyService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *SurveyService) indexer() Indexer {
	if s.Index != nil {
		return s.Index
	}
	return noopIndexer{}
}

func (s *SurveyService) notifier() Notifier {
	if s.Notify != nil {
		return s.Notify
	}
	return noopNotifier{}
}

// validateAnswers checks every answer against its question's type and
// collects the free-text values for indexing.
func validateAnswers(survey *domain.Survey, answers map[string]any) ([]string, error) {
	questions := make(map[string]domain.SurveyQuestion, len(survey.Questions))
	for _, q := range survey.Questions {
		questions[q.ID] = q
	}

	var texts []string
	for qid, val := range answers {
		q, ok := questions[qid]
		if !ok {
			return nil, ErrInvalidAnswer
		}
		switch q.Kind {
		case domain.QuestionScale, domain.QuestionBoolean:
			if _, ok := toFloat(val); !ok {
				return nil, ErrInvalidAnswer
			}
		case domain.QuestionText:
			s, ok := val.(string)
			if !ok {
				return nil, ErrInvalidAnswer
			}
			if strings.TrimSpace(s) != "" {
				texts = append(texts, s)
			}
		case domain.QuestionChoice:
			if _, ok := val.(string); !ok {
				return nil, ErrInvalidAnswer
			}
		case domain.QuestionMultiChoice:
			switch items := val.(type) {
			case []string:
				// Direct submissions may carry []string before a JSON round-trip.
			case []any:
				for _, it := range items {
					if _, ok := it.(string); !ok {
						return nil, ErrInvalidAnswer
					}
				}
			default:
				return nil, ErrInvalidAnswer
			}
		default:
			return nil, ErrInvalidAnswer
		}
	}
	return texts, nil
}

// toFloat normalizes the numeric representations a JSON decode can produce.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// SubmitResponse records a user's answers to a survey and credits the
// survey's Happy Coins reward exactly once. Returns ErrDuplicateResponse on
// a repeat submission and ErrInvalidAnswer when an answer does not match its
// question's type.
func (s *SurveyService) SubmitResponse(ctx context.Context, userID, surveyID string, answers map[string]any) (*domain.SurveyResponse, error) {
	tr := otel.Tracer("services/SurveyService")
	ctx, span := tr.Start(ctx, "SubmitResponse",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("survey.id", surveyID),
		),
	)
	defer span.End()

	user, err := repo.GetUser(ctx, s.DB, userID)
	if err != nil || !user.Active {
		return nil, ErrUserNotFound
	}

	survey, err := repo.GetSurvey(ctx, s.DB, surveyID)
	if err != nil || !survey.Active {
		return nil, ErrSurveyNotFound
	}

	texts, err := validateAnswers(survey, answers)
	if err != nil {
		return nil, err
	}

	unlock := s.Locks.Lock(userID)
	defer unlock()

	resp := &domain.SurveyResponse{
		SurveyID:    surveyID,
		UserID:      userID,
		Answers:     answers,
		CoinsEarned: survey.RewardCoins,
		CompletedAt: s.now().UTC(),
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.InsertResponse(ctx, tx, resp); err != nil {
			return err
		}
		if survey.RewardCoins > 0 {
			return repo.AddHappyCoins(ctx, tx, userID, survey.RewardCoins)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateResponse) {
			return nil, ErrDuplicateResponse
		}
		return nil, err
	}

	go s.afterResponse(resp, texts, user.Department, survey.Title)

	return resp, nil
}

func (s *SurveyService) afterResponse(r *domain.SurveyResponse, texts []string, department, surveyTitle string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if len(texts) > 0 {
		s.indexer().IndexSurveyText(ctx, r, texts, department)
	}
	s.notifier().Notify(r.UserID, NotifySurveyCompleted,
		"Survey complete",
		"Thanks for completing \""+surveyTitle+"\"!",
		map[string]any{"survey_id": r.SurveyID, "coins": r.CoinsEarned})
}

// Get returns a survey definition with its questions.
func (s *SurveyService) Get(ctx context.Context, surveyID string) (*domain.Survey, error) {
	survey, err := repo.GetSurvey(ctx, s.DB, surveyID)
	if err != nil {
		return nil, ErrSurveyNotFound
	}
	return survey, nil
}

// ListActive returns the active survey definitions.
func (s *SurveyService) ListActive(ctx context.Context) ([]domain.Survey, error) {
	return repo.ListActiveSurveys(ctx, s.DB)
}
