package extractor_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/tracepace/coach/internal/completion"
	"github.com/tracepace/coach/internal/extractor"
	"github.com/tracepace/coach/internal/slot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCompletion struct {
	response any
}

func (s *stubCompletion) Complete(ctx context.Context, req completion.Request, result any) (*completion.Response, error) {
	b, err := json.Marshal(s.response)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(b, result); err != nil {
		return nil, err
	}
	return &completion.Response{}, nil
}

func (s *stubCompletion) Model() string { return "stub" }

func TestExtract_EmptyMessageShortCircuits(t *testing.T) {
	e := extractor.New(&stubCompletion{})

	result, err := e.Extract(context.Background(), extractor.ExtractRequest{
		UserMessage:         "",
		AttributesRequested: []string{slot.RaceDistance},
	})

	require.NoError(t, err)
	assert.Empty(t, result.Values)
	assert.Equal(t, []string{slot.RaceDistance}, result.Missing)
}

func TestExtract_ConfidentValue(t *testing.T) {
	e := extractor.New(&stubCompletion{response: map[string]any{
		"fields": []map[string]any{
			{"slot": slot.RaceDistance, "present": true, "raw_value": "half marathon", "confidence": 0.95},
		},
	}})

	result, err := e.Extract(context.Background(), extractor.ExtractRequest{
		UserMessage:         "I'm training for a half marathon",
		AttributesRequested: []string{slot.RaceDistance},
	})

	require.NoError(t, err)
	require.Contains(t, result.Values, slot.RaceDistance)
	assert.Equal(t, "half_marathon", result.Values[slot.RaceDistance].Normalized)
	assert.Empty(t, result.AmbiguousFields)
}

func TestExtract_AmbiguousValueNeverEntersValues(t *testing.T) {
	e := extractor.New(&stubCompletion{response: map[string]any{
		"fields": []map[string]any{
			{"slot": slot.RaceDistance, "present": true, "raw_value": "banana", "confidence": 0.4},
		},
	}})

	result, err := e.Extract(context.Background(), extractor.ExtractRequest{
		UserMessage:         "banana",
		AttributesRequested: []string{slot.RaceDistance},
	})

	require.NoError(t, err)
	assert.Empty(t, result.Values)
	assert.Equal(t, "banana", result.AmbiguousFields[slot.RaceDistance])
}

func TestExtract_BareMileageRejectedUnlessJustPrompted(t *testing.T) {
	e := extractor.New(&stubCompletion{response: map[string]any{
		"fields": []map[string]any{
			{"slot": slot.WeeklyMileage, "present": true, "raw_value": "40", "confidence": 0.8},
		},
	}})

	result, err := e.Extract(context.Background(), extractor.ExtractRequest{
		UserMessage:         "40",
		AttributesRequested: []string{slot.WeeklyMileage},
	})
	require.NoError(t, err)
	assert.Empty(t, result.Values)
	assert.Contains(t, result.AmbiguousFields, slot.WeeklyMileage)

	result, err = e.Extract(context.Background(), extractor.ExtractRequest{
		UserMessage:         "40",
		AttributesRequested: []string{slot.WeeklyMileage},
		JustPromptedSlot:    slot.WeeklyMileage,
	})
	require.NoError(t, err)
	assert.Contains(t, result.Values, slot.WeeklyMileage)
}

func TestExtract_MissingAttributeReported(t *testing.T) {
	e := extractor.New(&stubCompletion{response: map[string]any{
		"fields": []map[string]any{
			{"slot": slot.RaceDistance, "present": false},
		},
	}})

	result, err := e.Extract(context.Background(), extractor.ExtractRequest{
		UserMessage:         "hi coach",
		AttributesRequested: []string{slot.RaceDistance, slot.RaceDate},
	})

	require.NoError(t, err)
	assert.Contains(t, result.Missing, slot.RaceDistance)
	assert.Contains(t, result.Missing, slot.RaceDate)
}
