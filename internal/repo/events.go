// Package repo – unified event queries.
//
// The raw events live in one table per kind. This file exposes the typed
// query surface the aggregate layer consumes: filtered event listings,
// distinct-author sets, and grouped numeric rollups. Multi-kind requests
// run one typed query per kind and stitch the results in Go, keeping every
// query plan simple and index-backed.
package repo

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/harborwell/wellness-backend/internal/domain"
)

// EventKind discriminates the four event streams.
type EventKind string

const (
	KindCheckIn EventKind = "checkin"
	KindSurvey  EventKind = "survey"
	KindJournal EventKind = "journal"
	KindQuote   EventKind = "quote"
)

// AllEventKinds lists every kind in stable order.
var AllEventKinds = []EventKind{KindCheckIn, KindSurvey, KindJournal, KindQuote}

// EventFilter scopes event queries. Zero values mean "no constraint".
type EventFilter struct {
	UserID      string
	Departments []string
	Kinds       []EventKind
	From        time.Time
	To          time.Time
	Limit       int
}

// Event is the kind-erased projection of one raw event used by listings and
// distinct-user queries. Mood is set for check-ins and journals; Text holds
// whatever free text the event carries.
type Event struct {
	ID        string    `json:"id"`
	Kind      EventKind `json:"kind"`
	UserID    string    `json:"user_id"`
	Mood      *int      `json:"mood,omitempty"`
	Text      string    `json:"text,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (f EventFilter) kinds() []EventKind {
	if len(f.Kinds) == 0 {
		return AllEventKinds
	}
	return f.Kinds
}

func (f EventFilter) scope(q *gorm.DB, table string) *gorm.DB {
	q = q.Joins("JOIN users ON users.id = "+table+".user_id").
		Where("users.active = ?", true)
	if f.UserID != "" {
		q = q.Where(table+".user_id = ?", f.UserID)
	}
	if len(f.Departments) > 0 {
		q = q.Where("users.department IN ?", f.Departments)
	}
	if !f.From.IsZero() {
		q = q.Where(table+".created_at >= ?", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where(table+".created_at <= ?", f.To)
	}
	return q
}

// QueryEvents returns events matching the filter ordered by timestamp
// descending, capped at filter.Limit (<=0 means 100). Multi-kind filters are
// stitched from per-kind queries.
func QueryEvents(ctx context.Context, db *gorm.DB, f EventFilter) ([]Event, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}

	var all []Event
	for _, kind := range f.kinds() {
		events, err := queryKind(ctx, db, f, kind, limit)
		if err != nil {
			return nil, err
		}
		all = append(all, events...)
	}

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func queryKind(ctx context.Context, db *gorm.DB, f EventFilter, kind EventKind, limit int) ([]Event, error) {
	switch kind {
	case KindCheckIn:
		var rows []domain.CheckIn
		err := f.scope(db.WithContext(ctx).Model(&domain.CheckIn{}), "check_ins").
			Order("check_ins.created_at desc").
			Limit(limit).
			Find(&rows).Error
		if err != nil {
			return nil, err
		}
		out := make([]Event, 0, len(rows))
		for _, r := range rows {
			mood := r.Mood
			out = append(out, Event{ID: r.ID, Kind: kind, UserID: r.UserID, Mood: &mood, Text: r.Feedback, CreatedAt: r.CreatedAt})
		}
		return out, nil

	case KindSurvey:
		var rows []domain.SurveyResponse
		err := f.scope(db.WithContext(ctx).Model(&domain.SurveyResponse{}), "survey_responses").
			Order("survey_responses.created_at desc").
			Limit(limit).
			Find(&rows).Error
		if err != nil {
			return nil, err
		}
		out := make([]Event, 0, len(rows))
		for _, r := range rows {
			out = append(out, Event{ID: r.ID, Kind: kind, UserID: r.UserID, CreatedAt: r.CreatedAt})
		}
		return out, nil

	case KindJournal:
		var rows []domain.JournalEntry
		err := f.scope(db.WithContext(ctx).Model(&domain.JournalEntry{}), "journal_entries").
			Order("journal_entries.created_at desc").
			Limit(limit).
			Find(&rows).Error
		if err != nil {
			return nil, err
		}
		out := make([]Event, 0, len(rows))
		for _, r := range rows {
			mood := r.Mood
			out = append(out, Event{ID: r.ID, Kind: kind, UserID: r.UserID, Mood: &mood, Text: r.Body, CreatedAt: r.CreatedAt})
		}
		return out, nil

	case KindQuote:
		var rows []domain.QuoteEngagement
		err := f.scope(db.WithContext(ctx).Model(&domain.QuoteEngagement{}), "quote_engagements").
			Order("quote_engagements.created_at desc").
			Limit(limit).
			Find(&rows).Error
		if err != nil {
			return nil, err
		}
		out := make([]Event, 0, len(rows))
		for _, r := range rows {
			out = append(out, Event{ID: r.ID, Kind: kind, UserID: r.UserID, CreatedAt: r.CreatedAt})
		}
		return out, nil
	}
	return nil, nil
}

// DistinctUsers returns the sorted set of user ids with at least one event
// matching the filter.
func DistinctUsers(ctx context.Context, db *gorm.DB, f EventFilter) ([]string, error) {
	set := map[string]struct{}{}
	tables := map[EventKind]struct {
		model any
		table string
	}{
		KindCheckIn: {&domain.CheckIn{}, "check_ins"},
		KindSurvey:  {&domain.SurveyResponse{}, "survey_responses"},
		KindJournal: {&domain.JournalEntry{}, "journal_entries"},
		KindQuote:   {&domain.QuoteEngagement{}, "quote_engagements"},
	}
	for _, kind := range f.kinds() {
		t := tables[kind]
		var ids []string
		err := f.scope(db.WithContext(ctx).Model(t.model), t.table).
			Distinct(t.table+".user_id").
			Pluck(t.table+".user_id", &ids).Error
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			set[id] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// AggregateSpec describes a grouped numeric rollup over one event kind.
// Field is the numeric column to aggregate (empty means count-only);
// ByDay buckets results per UTC day.
type AggregateSpec struct {
	Kind   EventKind
	Filter EventFilter
	Field  string
	ByDay  bool
}

// AggregateRow is one group of an Aggregate result. Bucket is the day bucket
// (empty when ByDay is false).
type AggregateRow struct {
	Bucket string
	Count  int64
	Sum    float64
	Avg    float64
	Min    float64
	Max    float64
}

// Aggregate runs a grouped rollup over one event kind. Only check-ins and
// journals carry numeric fields; the other kinds are count-only.
func Aggregate(ctx context.Context, db *gorm.DB, spec AggregateSpec) ([]AggregateRow, error) {
	tables := map[EventKind]struct {
		model any
		table string
	}{
		KindCheckIn: {&domain.CheckIn{}, "check_ins"},
		KindSurvey:  {&domain.SurveyResponse{}, "survey_responses"},
		KindJournal: {&domain.JournalEntry{}, "journal_entries"},
		KindQuote:   {&domain.QuoteEngagement{}, "quote_engagements"},
	}
	t, ok := tables[spec.Kind]
	if !ok {
		return nil, nil
	}

	sel := "COUNT(*) AS count"
	if spec.Field != "" {
		col := t.table + "." + spec.Field
		sel += ", SUM(" + col + ") AS sum, AVG(" + col + ") AS avg, MIN(" + col + ") AS min, MAX(" + col + ") AS max"
	}

	q := spec.Filter.scope(db.WithContext(ctx).Model(t.model), t.table)
	if spec.ByDay {
		bucket := "strftime('%Y-%m-%d', " + t.table + ".created_at)"
		q = q.Select(bucket + " AS bucket, " + sel).Group("bucket").Order("bucket asc")
	} else {
		q = q.Select(sel)
	}

	var rows []AggregateRow
	err := retryOnce(func() error {
		rows = rows[:0]
		return q.Scan(&rows).Error
	})
	return rows, err
}
