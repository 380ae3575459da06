package toolclient

import "fmt"

// ToolError is satisfied by every error toolclient.Call can return,
// letting a caller switch on category without a type switch over three
// concrete types.
type ToolError interface {
	error
	Category() string
}

// TransportError means the request never reached a tool server handler
// (connection refused, timeout, 5xx) — retryable in principle, but
// toolclient itself never retries.
type TransportError struct {
	Tool string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("toolclient: transport error calling %q: %v", e.Tool, e.Err)
}
func (e *TransportError) Unwrap() error { return e.Err }
func (e *TransportError) Category() string { return "TRANSPORT" }

// ProtocolError means the request or response could not be encoded or
// decoded, or the tool name itself is not in the routing table — a
// programmer error, never a transient one.
type ProtocolError struct {
	Tool   string
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("toolclient: protocol error calling %q: %s", e.Tool, e.Reason)
}
func (e *ProtocolError) Category() string { return "PROTOCOL" }

// RemoteError means the tool server handled the request and returned a
// structured error — the handler ran and rejected the call on its own
// terms.
type RemoteError struct {
	Tool    string
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("toolclient: %q returned %s: %s", e.Tool, e.Code, e.Message)
}
func (e *RemoteError) Category() string { return "REMOTE" }

var (
	_ ToolError = (*TransportError)(nil)
	_ ToolError = (*ProtocolError)(nil)
	_ ToolError = (*RemoteError)(nil)
)
