package adapters

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/harborwell/wellness-backend/internal/domain"
)

type fakeClient struct {
	summary string
	err     error
	calls   int
}

func (f *fakeClient) Summarize(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.summary, f.err
}

func TestLLMInsights_AnalyzeJournal(t *testing.T) {
	entry := &domain.JournalEntry{ID: "j1", UserID: "u1", Body: "long week, heavy workload"}

	// Nil adapter and nil client are both safe no-ops.
	var missing *LLMInsights
	missing.AnalyzeJournal(context.Background(), entry)
	(&LLMInsights{Log: zerolog.Nop()}).AnalyzeJournal(context.Background(), entry)

	// A configured client is consulted once per entry.
	client := &fakeClient{summary: "workload pressure"}
	a := &LLMInsights{Client: client, Log: zerolog.Nop()}
	a.AnalyzeJournal(context.Background(), entry)
	if client.calls != 1 {
		t.Fatalf("client called %d times", client.calls)
	}

	// Failures never propagate to the writer.
	failing := &LLMInsights{Client: &fakeClient{err: errors.New("quota")}, Log: zerolog.Nop()}
	failing.AnalyzeJournal(context.Background(), entry)
}
