package controller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tracepace/coach/internal/toolclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTrainingMetrics_ToolFailureIsNonFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	tools, err := toolclient.New(toolclient.Config{DataToolEndpoint: srv.URL, PromptToolEndpoint: srv.URL})
	require.NoError(t, err)

	c := &Controller{tools: tools}

	metrics := c.loadTrainingMetrics(context.Background(), 42)
	assert.Nil(t, metrics)
}

func TestLoadTrainingMetrics_ComputesSnapshotFromActivities(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result": [
			{"id": 1, "athlete_id": 42, "occurred_at": "2026-01-01T08:00:00Z", "type": "run", "duration_s": 3600, "distance_m": 10000, "source": "manuallike"}
		]}`))
	}))
	defer srv.Close()

	tools, err := toolclient.New(toolclient.Config{DataToolEndpoint: srv.URL, PromptToolEndpoint: srv.URL})
	require.NoError(t, err)

	c := &Controller{tools: tools}

	metrics := c.loadTrainingMetrics(context.Background(), 42)
	require.NotNil(t, metrics)
	assert.Greater(t, metrics.CTL, 0.0)
	assert.Greater(t, metrics.ATL, 0.0)
}
