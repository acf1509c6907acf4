// Package adapters holds thin integrations with optional external systems.
// Each adapter satisfies a consumer-side interface declared by the package
// that uses it, and degrades to a logging no-op when unconfigured.
package adapters

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/harborwell/wellness-backend/internal/domain"
)

// InsightClient generates wellness insights from journal text. The platform
// runs without one configured; AnalyzeJournal falls back to logging only.
type InsightClient interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// LLMInsights adapts an InsightClient to the journal pipeline. Analysis is
// advisory: failures are logged and swallowed, never surfaced to the writer.
type LLMInsights struct {
	Client InsightClient
	Log    zerolog.Logger
}

// AnalyzeJournal requests an insight summary for the entry. A nil client
// means insights are disabled and the call is a cheap log line.
func (a *LLMInsights) AnalyzeJournal(ctx context.Context, entry *domain.JournalEntry) {
	if a == nil || a.Client == nil {
		return
	}
	summary, err := a.Client.Summarize(ctx, entry.Body)
	if err != nil {
		a.Log.Warn().Err(err).Str("journal_id", entry.ID).Msg("journal insight analysis failed")
		return
	}
	a.Log.Info().
		Str("journal_id", entry.ID).
		Str("user_id", entry.UserID).
		Int("summary_len", len(summary)).
		Msg("journal insight generated")
}
