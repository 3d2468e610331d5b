package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mikeboe/newsletter-helper/pkg/app"
	"github.com/mikeboe/newsletter-helper/pkg/config"
	"github.com/mikeboe/newsletter-helper/pkg/logging"
	"github.com/mikeboe/newsletter-helper/pkg/mcpserver"
	"github.com/mikeboe/newsletter-helper/pkg/metrics"
	"github.com/mikeboe/newsletter-helper/pkg/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	ctx := context.Background()
	a, err := app.New(ctx, cfg, logger, collector)
	if err != nil {
		logger.Error("Failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	mcpSrv, err := mcpserver.New(a.Researcher, a.Writer)
	if err != nil {
		logger.Error("Failed to initialize MCP server", "error", err)
		os.Exit(1)
	}

	handler := server.NewHandler(a.Studio)
	handler.MCP = mcpSrv.Handler()
	handler.Metrics = collector.Handler()
	handler.Timeout = cfg.ModelTimeout

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := server.NewRouter(handler, logger, cfg.CORSOrigins)

	logger.Info("Server starting", "port", cfg.Port, "model", cfg.Model)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}
