package toolclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tracepace/coach/internal/toolclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FailsClosedWithoutEndpoints(t *testing.T) {
	_, err := toolclient.New(toolclient.Config{})
	require.Error(t, err)

	_, err = toolclient.New(toolclient.Config{DataToolEndpoint: "http://x"})
	require.Error(t, err)
}

func TestCall_UnrecognizedTool(t *testing.T) {
	c, err := toolclient.New(toolclient.Config{DataToolEndpoint: "http://x", PromptToolEndpoint: "http://y"})
	require.NoError(t, err)

	_, err = c.Call(context.Background(), "not_a_tool", nil)
	require.Error(t, err)
	var protoErr *toolclient.ProtocolError
	require.ErrorAs(t, err, &protoErr)
}

func TestCall_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result": {"ok": true}}`))
	}))
	defer srv.Close()

	c, err := toolclient.New(toolclient.Config{DataToolEndpoint: srv.URL, PromptToolEndpoint: srv.URL})
	require.NoError(t, err)

	raw, err := c.Call(context.Background(), "load_context", map[string]any{"conversation_id": 1})
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, true, out["ok"])
}

func TestCall_RemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": {"code": "NOT_FOUND", "message": "no such conversation"}}`))
	}))
	defer srv.Close()

	c, err := toolclient.New(toolclient.Config{DataToolEndpoint: srv.URL, PromptToolEndpoint: srv.URL})
	require.NoError(t, err)

	_, err = c.Call(context.Background(), "load_context", map[string]any{})
	require.Error(t, err)
	var remoteErr *toolclient.RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, "NOT_FOUND", remoteErr.Code)
}

func TestCall_TransportErrorOnUnreachable(t *testing.T) {
	c, err := toolclient.New(toolclient.Config{
		DataToolEndpoint:   "http://127.0.0.1:1",
		PromptToolEndpoint: "http://127.0.0.1:1",
		ToolCallTimeout:    200 * time.Millisecond,
	})
	require.NoError(t, err)

	_, err = c.Call(context.Background(), "load_context", map[string]any{})
	require.Error(t, err)
	var transportErr *toolclient.TransportError
	require.ErrorAs(t, err, &transportErr)
}
