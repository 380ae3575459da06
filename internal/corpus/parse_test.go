package corpus_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/tracepace/coach/internal/corpus"

	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	docs []corpus.RawDocument
}

func (f *fakeStore) ListDocuments(ctx context.Context) ([]corpus.RawDocument, error) {
	return f.docs, nil
}

func (f *fakeStore) GetDocument(ctx context.Context, id string) (corpus.RawDocument, error) {
	for _, d := range f.docs {
		if d.ID == id {
			return d, nil
		}
	}
	return corpus.RawDocument{}, nil
}

func structureFrontMatter(t *testing.T) []byte {
	t.Helper()
	fm := map[string]any{
		"id":            "std_marathon_base",
		"kind":          "structure",
		"philosophy_id": "lydiard",
		"race_type":     "marathon",
		"audience":      "intermediate",
		"phase":         "base",
		"priority":      10,
		"structure_spec": map[string]any{
			"days": []map[string]any{
				{"label": "mon", "intent": "easy"},
				{"label": "tue", "intent": "quality"},
			},
			"hard_group":   []string{"tue"},
			"days_to_race": [2]int{60, 120},
		},
	}
	b, err := json.Marshal(fm)
	require.NoError(t, err)
	return b
}

func TestLoadAllAndFilter(t *testing.T) {
	store := &fakeStore{docs: []corpus.RawDocument{
		{ID: "std_marathon_base", Kind: "structure", FrontMatter: structureFrontMatter(t), Body: "body"},
	}}
	cache := corpus.New(store)
	require.NoError(t, cache.LoadAll(context.Background()))

	structures := cache.Structures("lydiard", "marathon", "intermediate", "base", 90)
	require.Len(t, structures, 1)
	require.Equal(t, "std_marathon_base", structures[0].ID)
	require.Equal(t, []string{"tue"}, structures[0].HardGroup)

	require.Empty(t, cache.Structures("lydiard", "marathon", "intermediate", "base", 200))
}

func TestFrontMatterRoundTrip(t *testing.T) {
	raw := structureFrontMatter(t)
	store := &fakeStore{docs: []corpus.RawDocument{{ID: "a", Kind: "structure", FrontMatter: raw, Body: "b"}}}
	cache := corpus.New(store)
	require.NoError(t, cache.LoadAll(context.Background()))
	structures := cache.Structures("lydiard", "marathon", "intermediate", "base", 90)
	require.Len(t, structures, 1)

	reserialized, err := json.Marshal(structures[0].Days)
	require.NoError(t, err)

	var roundTripped []map[string]any
	require.NoError(t, json.Unmarshal(reserialized, &roundTripped))
	require.Equal(t, "mon", roundTripped[0]["label"])
}

func TestCosineSimilarity(t *testing.T) {
	require.InDelta(t, 1.0, corpus.CosineSimilarity([]float64{1, 0}, []float64{1, 0}), 1e-9)
	require.InDelta(t, 0.0, corpus.CosineSimilarity([]float64{1, 0}, []float64{0, 1}), 1e-9)
	require.Equal(t, 0.0, corpus.CosineSimilarity(nil, []float64{1}))
}
