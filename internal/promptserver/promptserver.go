// Package promptserver is the Prompt Tool Server (C3): a Gin HTTP
// service that reads orchestrator/extractor/session-text prompt files off
// disk. It is the only component allowed to touch the filesystem for
// prompt content — the controller and pipeline reach it exclusively
// through internal/toolclient.
package promptserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/gin-gonic/gin"
)

var filenamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Server serves prompt files out of a directory.
type Server struct {
	dir string
}

func New(dir string) *Server {
	return &Server{dir: dir}
}

type toolError struct {
	Code    string
	Message string
}

// Closed error-code taxonomy for this server.
const (
	CodeInvalidFilename = "INVALID_FILENAME"
	CodeFileNotFound    = "FILE_NOT_FOUND"
	CodeReadError       = "READ_ERROR"
	CodeEncodingError   = "ENCODING_ERROR"
)

func (s *Server) readPrompt(name string) (string, *toolError) {
	if !filenamePattern.MatchString(name) {
		return "", &toolError{Code: CodeInvalidFilename, Message: fmt.Sprintf("filename %q contains disallowed characters", name)}
	}

	path := filepath.Join(s.dir, name)
	if filepath.Dir(path) != filepath.Clean(s.dir) {
		return "", &toolError{Code: CodeInvalidFilename, Message: fmt.Sprintf("filename %q escapes the prompt directory", name)}
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", &toolError{Code: CodeFileNotFound, Message: fmt.Sprintf("prompt %q not found", name)}
		}
		return "", &toolError{Code: CodeReadError, Message: fmt.Sprintf("reading prompt %q: %v", name, err)}
	}
	return string(contents), nil
}

type callEnvelope struct {
	Tool      string          `json:"tool"`
	Arguments json.RawMessage `json:"arguments"`
}

type loadPromptRequest struct {
	Filename string `json:"filename"`
}

type promptResult struct {
	Content string `json:"content"`
}

func (s *Server) handleToolCall(c *gin.Context) {
	var req callEnvelope
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(200, gin.H{"error": toolError{Code: CodeEncodingError, Message: err.Error()}})
		return
	}

	var name string
	switch req.Tool {
	case "load_orchestrator_prompt":
		name = "orchestrator.md"
	case "load_prompt":
		var args loadPromptRequest
		if err := json.Unmarshal(req.Arguments, &args); err != nil {
			c.JSON(200, gin.H{"error": toolError{Code: CodeEncodingError, Message: err.Error()}})
			return
		}
		name = args.Filename
	default:
		c.JSON(200, gin.H{"error": toolError{Code: CodeInvalidFilename, Message: fmt.Sprintf("unrecognized tool %q", req.Tool)}})
		return
	}

	content, tErr := s.readPrompt(name)
	if tErr != nil {
		c.JSON(200, gin.H{"error": tErr})
		return
	}
	c.JSON(200, gin.H{"result": promptResult{Content: content}})
}
