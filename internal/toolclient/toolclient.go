// Package toolclient is the Execution Controller's only path to the two
// MCP tool servers. It knows the routing table and the timeout per call
// class; it does not know what a tool does.
package toolclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// endpoint names a tool server and tells the client which deadline class
// to apply.
type endpoint struct {
	baseURL string
	planner bool // true => use the plan deadline instead of the generic tool-call timeout
}

// planningTools is the closed set of tool names that run the full
// planning pipeline and therefore need the longer deadline.
var planningTools = map[string]bool{
	"plan_race_build":    true,
	"plan_season":        true,
	"add_workout":        true,
	"modify_day":         true,
	"modify_week":        true,
	"save_planned_sessions": true,
}

// Config configures a Client. Both endpoints are required — New refuses
// to construct a Client missing either, so a caller can never reach a
// half-wired tool boundary at request time.
type Config struct {
	DataToolEndpoint   string
	PromptToolEndpoint string
	ToolCallTimeout    time.Duration
	PlanDeadline       time.Duration
}

// Client routes tool calls by name to the data or prompt tool server.
type Client struct {
	cfg    Config
	http   *http.Client
	routes map[string]endpoint
}

// New builds a Client. It fails closed: if either tool endpoint is
// unconfigured, construction itself fails rather than deferring the
// failure to the first call.
func New(cfg Config) (*Client, error) {
	if cfg.DataToolEndpoint == "" {
		return nil, fmt.Errorf("toolclient: data tool endpoint is required")
	}
	if cfg.PromptToolEndpoint == "" {
		return nil, fmt.Errorf("toolclient: prompt tool endpoint is required")
	}
	if cfg.ToolCallTimeout <= 0 {
		cfg.ToolCallTimeout = 30 * time.Second
	}
	if cfg.PlanDeadline <= 0 {
		cfg.PlanDeadline = 120 * time.Second
	}

	c := &Client{
		cfg:  cfg,
		http: &http.Client{},
	}
	c.routes = map[string]endpoint{
		"load_context":           {baseURL: cfg.DataToolEndpoint},
		"save_context":           {baseURL: cfg.DataToolEndpoint},
		"save_progress":          {baseURL: cfg.DataToolEndpoint},
		"load_progress":          {baseURL: cfg.DataToolEndpoint},
		"get_recent_activities":  {baseURL: cfg.DataToolEndpoint},
		"save_planned_sessions":  {baseURL: cfg.DataToolEndpoint, planner: true},
		"plan_race_build":        {baseURL: cfg.DataToolEndpoint, planner: true},
		"plan_season":            {baseURL: cfg.DataToolEndpoint, planner: true},
		"add_workout":            {baseURL: cfg.DataToolEndpoint, planner: true},
		"modify_day":             {baseURL: cfg.DataToolEndpoint, planner: true},
		"modify_week":            {baseURL: cfg.DataToolEndpoint, planner: true},
		"load_orchestrator_prompt": {baseURL: cfg.PromptToolEndpoint},
		"load_prompt":            {baseURL: cfg.PromptToolEndpoint},
	}
	return c, nil
}

type callEnvelope struct {
	Tool      string          `json:"tool"`
	Arguments json.RawMessage `json:"arguments"`
}

type resultEnvelope struct {
	Result json.RawMessage `json:"result"`
	Error  *remoteErrorBody `json:"error"`
}

type remoteErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Call invokes tool with arguments (marshaled with encoding/json) and
// returns the raw JSON result. No retries and no caching happen at this
// layer — a tool call either completes within its deadline or the caller
// gets back a typed error to act on (deterministic fallback, not a
// silent retry loop).
func (c *Client) Call(ctx context.Context, tool string, arguments any) (json.RawMessage, error) {
	ep, ok := c.routes[tool]
	if !ok {
		return nil, &ProtocolError{Tool: tool, Reason: fmt.Sprintf("unrecognized tool %q", tool)}
	}

	timeout := c.cfg.ToolCallTimeout
	if ep.planner || planningTools[tool] {
		timeout = c.cfg.PlanDeadline
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	argBytes, err := json.Marshal(arguments)
	if err != nil {
		return nil, &ProtocolError{Tool: tool, Reason: fmt.Sprintf("encoding arguments: %v", err)}
	}

	body, err := json.Marshal(callEnvelope{Tool: tool, Arguments: argBytes})
	if err != nil {
		return nil, &ProtocolError{Tool: tool, Reason: fmt.Sprintf("encoding request: %v", err)}
	}

	url := ep.baseURL + "/mcp/tools/call"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Tool: tool, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Tool: tool, Err: err}
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Tool: tool, Err: err}
	}

	if resp.StatusCode >= 500 {
		return nil, &TransportError{Tool: tool, Err: fmt.Errorf("tool server returned %d", resp.StatusCode)}
	}

	var envelope resultEnvelope
	if err := json.Unmarshal(respBytes, &envelope); err != nil {
		return nil, &ProtocolError{Tool: tool, Reason: fmt.Sprintf("decoding response: %v", err)}
	}

	if envelope.Error != nil {
		return nil, &RemoteError{Tool: tool, Code: envelope.Error.Code, Message: envelope.Error.Message}
	}

	return envelope.Result, nil
}
