package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/metalhealth/checkin-insights/internal/domain/auth"
	"github.com/metalhealth/checkin-insights/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler, authSvc auth.Service) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.AllowOrigins),
		errorHandlingMiddleware(handler.logger),
	)

	router.GET("/healthz", handler.Health)

	api := router.Group("/api/v1")
	api.Use(rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger))

	analyses := api.Group("/analyses")
	if cfg.Auth.Required {
		analyses.Use(authMiddleware(authSvc))
	} else {
		analyses.Use(optionalAuthMiddleware(authSvc))
	}
	{
		analyses.POST("/checkin", handler.AnalyzeCheckIn)
		analyses.POST("/daily-summary", handler.AnalyzeDailySummary)
		analyses.POST("/period", handler.AnalyzePeriod)
		analyses.POST("/risk", handler.AssessRisk)
	}

	reports := api.Group("/reports", authMiddleware(authSvc))
	{
		reports.GET("", handler.ListReports)
		reports.GET("/latest", handler.LatestReport)
		reports.GET("/download", handler.DownloadReport)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds())
	}
}
