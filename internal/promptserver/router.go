package promptserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tracepace/coach/common/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// NewRouter builds the Gin engine exposing POST /mcp/tools/call.
func (s *Server) NewRouter(otelEnabled bool, serviceName string) *gin.Engine {
	router := gin.New()
	if otelEnabled {
		router.Use(otelgin.Middleware(serviceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.POST("/mcp/tools/call", s.handleToolCall)

	return router
}
