package dataserver

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tracepace/coach/common/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type callEnvelope struct {
	Tool      string          `json:"tool"`
	Arguments json.RawMessage `json:"arguments"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewRouter builds the Gin engine exposing POST /mcp/tools/call, the
// tool-call endpoint, plus GET /health.
func (s *Server) NewRouter(otelEnabled bool, serviceName string) *gin.Engine {
	router := gin.New()
	withOTel(router, otelEnabled, serviceName)
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.POST("/mcp/tools/call", s.handleToolCall)

	return router
}

func (s *Server) handleToolCall(c *gin.Context) {
	var req callEnvelope
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errorBody{Code: CodeInvalidInput, Message: err.Error()}})
		return
	}

	result, tErr := s.dispatch(c.Request.Context(), req.Tool, req.Arguments)
	if tErr != nil {
		slog.WarnContext(c.Request.Context(), "tool call failed", "tool", req.Tool, "code", tErr.Code, "error", tErr.Message)
		c.JSON(http.StatusOK, gin.H{"error": errorBody{Code: tErr.Code, Message: tErr.Message}})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}

func withOTel(router *gin.Engine, enabled bool, serviceName string) {
	if enabled {
		router.Use(otelgin.Middleware(serviceName))
	}
}
