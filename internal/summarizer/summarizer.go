// Package summarizer recomputes a conversation's rolling summary off the
// turn's critical path, consuming recompute_summary tasks from
// internal/queue. An ambient optimization, not a correctness invariant
// any turn depends on — a single-purpose consumer over a task-processing
// shape.
package summarizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/tracepace/coach/internal/completion"
	"github.com/tracepace/coach/internal/convstore"
	"github.com/tracepace/coach/internal/model"
)

// maxSummaryMessages bounds how much history feeds one recompute —
// unbounded growth would make the summary call itself the thing that
// needs summarizing.
const maxSummaryMessages = 40

// Summarizer recomputes and persists one conversation's rolling summary.
type Summarizer struct {
	store      *convstore.Store
	completion completion.Client
}

func New(store *convstore.Store, comp completion.Client) *Summarizer {
	return &Summarizer{store: store, completion: comp}
}

type summaryResult struct {
	Summary string `json:"summary" jsonschema:"required"`
}

// Recompute reloads conversationID's recent history and writes a fresh
// rolling summary, retrying once on an optimistic-concurrency conflict
// (another turn saved progress while this recompute was running).
func (s *Summarizer) Recompute(ctx context.Context, conversationID int64) error {
	messages, err := s.store.LoadContext(ctx, conversationID, maxSummaryMessages)
	if err != nil {
		return fmt.Errorf("summarizer: loading context: %w", err)
	}
	if len(messages) == 0 {
		return nil
	}

	summary, err := s.summarize(ctx, messages)
	if err != nil {
		return fmt.Errorf("summarizer: generating summary: %w", err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		progress, err := s.store.LoadProgress(ctx, conversationID)
		if err != nil {
			return fmt.Errorf("summarizer: loading progress: %w", err)
		}
		progress.Summary = summary

		err = s.store.SaveProgress(ctx, progress)
		if err == nil {
			return nil
		}
		if err != convstore.ErrVersionConflict {
			return fmt.Errorf("summarizer: saving progress: %w", err)
		}
	}
	return fmt.Errorf("summarizer: exhausted retries on version conflict for conversation %d", conversationID)
}

func (s *Summarizer) summarize(ctx context.Context, messages []model.Message) (string, error) {
	if s.completion == nil {
		return fallbackSummary(messages), nil
	}

	schema := completion.GenerateSchema[summaryResult]()
	var result summaryResult
	_, err := s.completion.Complete(ctx, completion.Request{
		SystemPrompt: "Summarize this coaching conversation in two sentences: what the athlete is training for and what has already been decided.",
		UserPrompt:   transcriptPrompt(messages),
		SchemaName:   "conversation_summary",
		Schema:       schema,
		Temperature:  completion.Temp(0.2),
	}, &result)
	if err != nil || result.Summary == "" {
		return fallbackSummary(messages), nil
	}
	return result.Summary, nil
}

func transcriptPrompt(messages []model.Message) string {
	var b strings.Builder
	for _, m := range messages {
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	return b.String()
}

func fallbackSummary(messages []model.Message) string {
	last := messages[len(messages)-1]
	return fmt.Sprintf("Conversation with %d messages; most recent from %s.", len(messages), last.Role)
}
