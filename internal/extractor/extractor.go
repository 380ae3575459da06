// Package extractor implements the Attribute Extractor: it reads slot
// values out of an athlete's free-form message, normalizes and validates
// each one against internal/slot's registry, and never lets a value that
// fails either step land in the result's confident Values map.
package extractor

import (
	"context"
	"fmt"
	"strings"

	"github.com/tracepace/coach/internal/completion"
	"github.com/tracepace/coach/internal/model"
	"github.com/tracepace/coach/internal/slot"
)

// ExtractRequest is one extraction call.
type ExtractRequest struct {
	UserMessage          string
	AttributesRequested  []string // slot names the controller needs filled
	KnownSlots           map[string]model.SlotValue
	ConversationSummary  string
	// JustPromptedSlot, if set, is the one slot the controller's previous
	// turn explicitly asked about — it unlocks slot.NormalizeMileageExplicit's
	// bare-number carve-out for that slot only.
	JustPromptedSlot string
}

// rawExtraction is the schema-constrained shape the completion capability
// fills in: one optional raw string per requested attribute.
type rawExtraction struct {
	Fields []rawField `json:"fields" jsonschema:"required"`
}

type rawField struct {
	Slot       string  `json:"slot" jsonschema:"required"`
	Present    bool    `json:"present" jsonschema:"required"`
	RawValue   string  `json:"raw_value"`
	Confidence float64 `json:"confidence" jsonschema:"required"`
}

// Extractor extracts slot values from athlete messages using a
// structured-completion capability.
type Extractor struct {
	completion completion.Client
}

func New(c completion.Client) *Extractor {
	return &Extractor{completion: c}
}

// Extract reads req.AttributesRequested out of req.UserMessage. An empty
// message short-circuits to an all-missing result without calling the
// completion capability at all — a no-op extraction is free.
func (e *Extractor) Extract(ctx context.Context, req ExtractRequest) (*model.ExtractionResult, error) {
	result := &model.ExtractionResult{
		Values:          map[string]model.SlotValue{},
		AmbiguousFields: map[string]string{},
	}

	if strings.TrimSpace(req.UserMessage) == "" || len(req.AttributesRequested) == 0 {
		result.Missing = append(result.Missing, req.AttributesRequested...)
		return result, nil
	}

	schema := completion.GenerateSchema[rawExtraction]()
	var raw rawExtraction
	_, err := e.completion.Complete(ctx, completion.Request{
		SystemPrompt: extractionSystemPrompt(req.AttributesRequested),
		UserPrompt:   extractionUserPrompt(req),
		SchemaName:   "slot_extraction",
		Schema:       schema,
		Temperature:  completion.Temp(0),
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("extractor: completion call: %w", err)
	}

	seen := make(map[string]bool, len(raw.Fields))
	for _, f := range raw.Fields {
		seen[f.Slot] = true
		if !f.Present || strings.TrimSpace(f.RawValue) == "" {
			result.Missing = append(result.Missing, f.Slot)
			continue
		}

		def, ok := slot.Get(f.Slot)
		if !ok {
			result.AmbiguousFields[f.Slot] = f.RawValue
			continue
		}

		normalized, err := e.normalize(def, f.Slot, f.RawValue, req.JustPromptedSlot)
		if err != nil {
			result.AmbiguousFields[f.Slot] = f.RawValue
			continue
		}
		if err := def.Validate(normalized); err != nil {
			result.AmbiguousFields[f.Slot] = f.RawValue
			continue
		}

		result.Values[f.Slot] = model.SlotValue{
			Raw:        f.RawValue,
			Normalized: normalized,
			Confidence: f.Confidence,
		}
	}

	for _, requested := range req.AttributesRequested {
		if !seen[requested] {
			result.Missing = append(result.Missing, requested)
		}
	}

	return result, nil
}

// normalize applies def.Normalize, routing weekly_mileage through the
// explicit-prompt carve-out when this slot is the one the controller just
// asked about.
func (e *Extractor) normalize(def slot.Definition, slotName, raw, justPrompted string) (any, error) {
	if slotName == slot.WeeklyMileage && slotName == justPrompted {
		return slot.NormalizeMileageExplicit(raw)
	}
	return def.Normalize(raw)
}

func extractionSystemPrompt(attrs []string) string {
	return fmt.Sprintf(
		"Extract the following attributes from the athlete's message if present: %s. "+
			"For each, report whether it is present and the raw text span, never an interpretation.",
		strings.Join(attrs, ", "))
}

func extractionUserPrompt(req ExtractRequest) string {
	var b strings.Builder
	if req.ConversationSummary != "" {
		b.WriteString("Conversation so far: ")
		b.WriteString(req.ConversationSummary)
		b.WriteString("\n\n")
	}
	b.WriteString("Athlete message: ")
	b.WriteString(req.UserMessage)
	return b.String()
}
