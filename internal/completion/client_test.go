package completion_test

import (
	"strings"
	"testing"

	"github.com/tracepace/coach/internal/completion"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeName(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{"valid name unchanged", "alice", "alice"},
		{"dots replaced with underscore", "alice.smith", "alice_smith"},
		{"at sign replaced with underscore", "alice@dev", "alice_dev"},
		{"hyphens preserved", "alice-dev", "alice-dev"},
		{"spaces replaced", "alice smith", "alice_smith"},
		{"long name truncated to 64 chars", strings.Repeat("a", 100), strings.Repeat("a", 64)},
		{"empty string unchanged", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, completion.SanitizeName(tc.input))
		})
	}
}

func TestGenerateSchema(t *testing.T) {
	type sample struct {
		Name string `json:"name"`
	}
	schema := completion.GenerateSchema[sample]()
	assert.NotNil(t, schema)
}
