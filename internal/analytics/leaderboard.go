package analytics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/harborwell/wellness-backend/internal/repo"
)

// LeaderboardEntry is one ranked user.
type LeaderboardEntry struct {
	Rank          int64  `json:"rank"`
	UserID        string `json:"user_id"`
	Name          string `json:"name"`
	Department    string `json:"department"`
	HappyCoins    int    `json:"happy_coins"`
	CurrentStreak int    `json:"current_streak"`
	IsRequester   bool   `json:"is_requester,omitempty"`
}

// Leaderboard is a page of the coin ranking plus the requester's own rank.
type Leaderboard struct {
	Department    string             `json:"department,omitempty"`
	Page          int                `json:"page"`
	PageSize      int                `json:"page_size"`
	Total         int64              `json:"total"`
	Entries       []LeaderboardEntry `json:"entries"`
	RequesterRank int64              `json:"requester_rank,omitempty"`
}

const (
	defaultLeaderboardPage = 50
	maxLeaderboardPage     = 100
	neighborWindow         = 5
)

func (s *Service) pageSize(limit int) int {
	def := s.LeaderboardPageSize
	if def <= 0 {
		def = defaultLeaderboardPage
	}
	if limit <= 0 {
		return def
	}
	if limit > maxLeaderboardPage {
		return maxLeaderboardPage
	}
	return limit
}

// HappyCoins returns a page of the leaderboard, global or per department.
// Ordering is coins descending with user id ascending on ties; requesterID
// marks the caller's row and fills RequesterRank even when off-page.
func (s *Service) HappyCoins(ctx context.Context, department, requesterID string, page, limit int) (*Leaderboard, error) {
	tr := otel.Tracer("analytics/Service")
	ctx, span := tr.Start(ctx, "HappyCoins",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("department", department)),
	)
	defer span.End()

	size := s.pageSize(limit)
	if page < 1 {
		page = 1
	}

	total, err := repo.CountLeaderboard(ctx, s.DB, department)
	if err != nil {
		return nil, err
	}
	states, err := repo.LeaderboardPage(ctx, s.DB, department, (page-1)*size, size)
	if err != nil {
		return nil, err
	}

	out := &Leaderboard{
		Department: department,
		Page:       page,
		PageSize:   size,
		Total:      total,
		Entries:    make([]LeaderboardEntry, 0, len(states)),
	}
	rank := int64((page-1)*size) + 1
	for _, st := range states {
		e, err := s.entry(ctx, rank, st.UserID, st.HappyCoins, st.CurrentStreak)
		if err != nil {
			return nil, err
		}
		e.IsRequester = st.UserID == requesterID
		out.Entries = append(out.Entries, *e)
		rank++
	}

	if requesterID != "" {
		if st, err := repo.GetWellnessState(ctx, s.DB, requesterID); err == nil {
			r, err := repo.LeaderboardRank(ctx, s.DB, department, requesterID, st.HappyCoins)
			if err != nil {
				return nil, err
			}
			out.RequesterRank = r
		}
	}
	return out, nil
}

// UserNeighborhood returns the user's rank with a window of ±5 neighbors.
func (s *Service) UserNeighborhood(ctx context.Context, department, userID string) (*Leaderboard, error) {
	tr := otel.Tracer("analytics/Service")
	ctx, span := tr.Start(ctx, "UserNeighborhood",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("user_id", userID)),
	)
	defer span.End()

	st, err := repo.GetWellnessState(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	rank, err := repo.LeaderboardRank(ctx, s.DB, department, userID, st.HappyCoins)
	if err != nil {
		return nil, err
	}
	total, err := repo.CountLeaderboard(ctx, s.DB, department)
	if err != nil {
		return nil, err
	}

	start := rank - neighborWindow
	if start < 1 {
		start = 1
	}
	window := int(rank-start) + 1 + neighborWindow
	states, err := repo.LeaderboardPage(ctx, s.DB, department, int(start-1), window)
	if err != nil {
		return nil, err
	}

	out := &Leaderboard{
		Department:    department,
		Page:          1,
		PageSize:      len(states),
		Total:         total,
		Entries:       make([]LeaderboardEntry, 0, len(states)),
		RequesterRank: rank,
	}
	r := start
	for _, row := range states {
		e, err := s.entry(ctx, r, row.UserID, row.HappyCoins, row.CurrentStreak)
		if err != nil {
			return nil, err
		}
		e.IsRequester = row.UserID == userID
		out.Entries = append(out.Entries, *e)
		r++
	}
	return out, nil
}

func (s *Service) entry(ctx context.Context, rank int64, userID string, coins, streak int) (*LeaderboardEntry, error) {
	u, err := repo.GetUser(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	return &LeaderboardEntry{
		Rank:          rank,
		UserID:        userID,
		Name:          u.Name,
		Department:    u.Department,
		HappyCoins:    coins,
		CurrentStreak: streak,
	}, nil
}
