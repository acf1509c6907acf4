// Package services – JournalService
//
// Journal entries are editable for 24 hours after creation; afterwards the
// content is immutable (soft delete stays allowed). Word count and reading
// time are computed on every write. Indexing and the optional LLM insight
// run post-commit and are best-effort.
package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/harborwell/wellness-backend/internal/domain"
	"github.com/harborwell/wellness-backend/internal/repo"
)

// editWindow is how long an entry's content stays mutable.
const editWindow = 24 * time.Hour

// readingWPM is the words-per-minute assumption for reading time.
const readingWPM = 200

// InsightAnalyzer is the optional LLM adapter consulted after a journal
// write. Failures are logged by the implementation and never propagate.
type InsightAnalyzer interface {
	AnalyzeJournal(ctx context.Context, entry *domain.JournalEntry)
}

// JournalInput is the payload for creating or editing an entry.
type JournalInput struct {
	Title    string
	Body     string
	Mood     int
	Category string
	Tags     []string
	Privacy  string
}

// JournalService owns journal entry lifecycle and stats.
type JournalService struct {
	DB *gorm.DB

	Index    Indexer
	Insights InsightAnalyzer

	Now func() time.Time
}

func (s *JournalService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *JournalService) indexer() Indexer {
	if s.Index != nil {
		return s.Index
	}
	return noopIndexer{}
}

func validPrivacy(p string) bool {
	switch p {
	case domain.PrivacyPrivate, domain.PrivacyAnonymousShare, domain.PrivacyTeamShare:
		return true
	}
	return false
}

// wordCount counts whitespace-separated words.
func wordCount(s string) int {
	return len(strings.Fields(s))
}

func readingTime(words int) int {
	mins := (words + readingWPM - 1) / readingWPM
	if mins < 1 {
		mins = 1
	}
	return mins
}

func (s *JournalService) validate(in *JournalInput) error {
	if in.Mood < 1 || in.Mood > 5 {
		return ErrInvalidMood
	}
	if in.Privacy == "" {
		in.Privacy = domain.PrivacyPrivate
	}
	if !validPrivacy(in.Privacy) {
		return ErrInvalidPrivacy
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Body = strings.TrimSpace(in.Body)
	return nil
}

// Create persists a new entry for userID.
func (s *JournalService) Create(ctx context.Context, userID string, in JournalInput) (*domain.JournalEntry, error) {
	tr := otel.Tracer("services/JournalService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	if err := s.validate(&in); err != nil {
		return nil, err
	}
	user, err := repo.GetUser(ctx, s.DB, userID)
	if err != nil || !user.Active {
		return nil, ErrUserNotFound
	}

	words := wordCount(in.Body)
	entry := &domain.JournalEntry{
		UserID:         userID,
		Title:          in.Title,
		Body:           in.Body,
		Mood:           in.Mood,
		Category:       in.Category,
		Tags:           in.Tags,
		Privacy:        in.Privacy,
		WordCount:      words,
		ReadingTimeMin: readingTime(words),
		CreatedAt:      s.now().UTC(),
	}
	if err := repo.CreateJournal(ctx, s.DB, entry); err != nil {
		return nil, err
	}

	go s.afterWrite(entry, user.Department)

	return entry, nil
}

func (s *JournalService) afterWrite(entry *domain.JournalEntry, department string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.indexer().IndexJournal(ctx, entry, department)
	if s.Insights != nil {
		s.Insights.AnalyzeJournal(ctx, entry)
	}
}

// Update edits an entry's content within the 24-hour window. Returns
// ErrJournalLocked once the window has passed and ErrJournalNotFound when
// the entry is missing or not owned by userID.
func (s *JournalService) Update(ctx context.Context, userID, entryID string, in JournalInput) (*domain.JournalEntry, error) {
	if err := s.validate(&in); err != nil {
		return nil, err
	}

	entry, err := repo.GetJournal(ctx, s.DB, entryID, userID)
	if err != nil {
		return nil, ErrJournalNotFound
	}
	if s.now().UTC().Sub(entry.CreatedAt) > editWindow {
		return nil, ErrJournalLocked
	}

	words := wordCount(in.Body)
	entry.Title = in.Title
	entry.Body = in.Body
	entry.Mood = in.Mood
	entry.Category = in.Category
	entry.Tags = in.Tags
	entry.Privacy = in.Privacy
	entry.WordCount = words
	entry.ReadingTimeMin = readingTime(words)

	if err := repo.UpdateJournal(ctx, s.DB, entry); err != nil {
		return nil, err
	}

	if user, err := repo.GetUser(ctx, s.DB, userID); err == nil {
		go s.afterWrite(entry, user.Department)
	}

	return entry, nil
}

// Delete soft-deletes an entry. Deletion is allowed at any age.
func (s *JournalService) Delete(ctx context.Context, userID, entryID string) error {
	if err := repo.SoftDeleteJournal(ctx, s.DB, entryID, userID); err != nil {
		return ErrJournalNotFound
	}
	return nil
}

// ListPage returns a page of the user's entries and the total count.
func (s *JournalService) ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.JournalEntry, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	total, err := repo.CountJournals(ctx, s.DB, userID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.JournalEntry{}, 0, nil
	}
	items, err := repo.ListJournalsPage(ctx, s.DB, userID, (page-1)*pageSize, pageSize)
	return items, total, err
}

// Stats returns the user's journal rollup.
func (s *JournalService) Stats(ctx context.Context, userID string) (repo.JournalStatsRow, error) {
	return repo.JournalStats(ctx, s.DB, userID)
}
