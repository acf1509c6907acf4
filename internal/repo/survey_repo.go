// Package repo – survey definitions and responses.
//
// Responses live in their own table with a unique index on
// (survey_id, user_id); a duplicate submission surfaces as
// ErrDuplicateResponse regardless of whether the pre-check or the index
// catches it.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborwell/wellness-backend/internal/domain"
)

// ErrDuplicateResponse is returned when a user submits a second response to
// the same survey.
var ErrDuplicateResponse = errors.New("survey already answered by this user")

// CreateSurvey inserts a survey definition with its questions.
func CreateSurvey(ctx context.Context, db *gorm.DB, s *domain.Survey) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	for i := range s.Questions {
		if s.Questions[i].ID == "" {
			s.Questions[i].ID = uuid.NewString()
		}
		s.Questions[i].SurveyID = s.ID
		s.Questions[i].Position = i
	}
	s.CreatedAt = time.Now().UTC()
	return db.WithContext(ctx).Create(s).Error
}

// GetSurvey fetches a survey with its questions, or ErrNotFound.
func GetSurvey(ctx context.Context, db *gorm.DB, id string) (*domain.Survey, error) {
	var s domain.Survey
	err := db.WithContext(ctx).
		Preload("Questions", func(q *gorm.DB) *gorm.DB { return q.Order("position asc") }).
		Where("id = ?", id).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListActiveSurveys returns active surveys ordered by creation descending.
func ListActiveSurveys(ctx context.Context, db *gorm.DB) ([]domain.Survey, error) {
	var out []domain.Survey
	err := db.WithContext(ctx).
		Preload("Questions", func(q *gorm.DB) *gorm.DB { return q.Order("position asc") }).
		Where("active = ?", true).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// InsertResponse persists a survey response. ErrDuplicateResponse is
// returned if the user has already answered the survey.
func InsertResponse(ctx context.Context, db *gorm.DB, r *domain.SurveyResponse) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CompletedAt.IsZero() {
		r.CompletedAt = time.Now().UTC()
	}
	r.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(r).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateResponse
		}
		return err
	}
	return nil
}

// GetResponse fetches one user's response to one survey, or ErrNotFound.
func GetResponse(ctx context.Context, db *gorm.DB, surveyID, userID string) (*domain.SurveyResponse, error) {
	var r domain.SurveyResponse
	err := db.WithContext(ctx).
		Where("survey_id = ? AND user_id = ?", surveyID, userID).
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CountResponsesSince counts the user's survey responses completed at or
// after since. Feeds the risk scorer's participation signal.
func CountResponsesSince(ctx context.Context, db *gorm.DB, userID string, since time.Time) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.SurveyResponse{}).
		Where("user_id = ? AND completed_at >= ?", userID, since).
		Count(&n).Error
	return n, err
}

// ResponsesInWindow returns responses completed inside [from, to], joined to
// active users and optionally scoped to a department, ordered by completion
// time descending.
func ResponsesInWindow(ctx context.Context, db *gorm.DB, from, to time.Time, department string) ([]domain.SurveyResponse, error) {
	q := db.WithContext(ctx).
		Model(&domain.SurveyResponse{}).
		Joins("JOIN users ON users.id = survey_responses.user_id").
		Where("users.active = ?", true).
		Where("survey_responses.completed_at >= ? AND survey_responses.completed_at <= ?", from, to)
	if department != "" {
		q = q.Where("users.department = ?", department)
	}
	var out []domain.SurveyResponse
	err := retryOnce(func() error {
		out = out[:0]
		return q.Order("survey_responses.completed_at desc").Find(&out).Error
	})
	return out, err
}

// ScaleQuestionsByTags returns scale questions whose tag list contains any
// of the given markers (stored as a JSON array, matched with LIKE).
func ScaleQuestionsByTags(ctx context.Context, db *gorm.DB, markers []string) ([]domain.SurveyQuestion, error) {
	if len(markers) == 0 {
		return nil, nil
	}
	q := db.WithContext(ctx).
		Model(&domain.SurveyQuestion{}).
		Where("kind = ?", domain.QuestionScale)
	cond := db.Session(&gorm.Session{NewDB: true})
	for _, m := range markers {
		cond = cond.Or("tags LIKE ?", "%\""+m+"\"%")
	}
	var out []domain.SurveyQuestion
	err := q.Where(cond).Order("survey_id asc, position asc").Find(&out).Error
	return out, err
}

// UsersWithoutResponseSince returns ids of active users who have no response
// to surveyID completed at or after since. Feeds the weekly pulse
// materialization job.
func UsersWithoutResponseSince(ctx context.Context, db *gorm.DB, surveyID string, since time.Time) ([]string, error) {
	var ids []string
	err := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("active = ?", true).
		Where("id NOT IN (?)", db.Session(&gorm.Session{NewDB: true}).
			Model(&domain.SurveyResponse{}).
			Select("user_id").
			Where("survey_id = ? AND completed_at >= ?", surveyID, since)).
		Order("id asc").
		Pluck("id", &ids).Error
	return ids, err
}
