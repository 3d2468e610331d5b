package server

import (
	"log/slog"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine with recovery, request logging and CORS.
func NewRouter(h *Handler, logger *slog.Logger, allowOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(logger))

	corsCfg := cors.DefaultConfig()
	if len(allowOrigins) == 0 || (len(allowOrigins) == 1 && allowOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = allowOrigins
	}
	corsCfg.AddAllowHeaders("Accept", RequestIDHeader, "Mcp-Session-Id")
	corsCfg.AddExposeHeaders("Content-Disposition", RequestIDHeader, "Mcp-Session-Id")
	r.Use(cors.New(corsCfg))

	h.RegisterRoutes(r)
	return r
}
