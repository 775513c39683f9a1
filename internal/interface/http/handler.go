package http

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/metalhealth/checkin-insights/internal/domain/analytics"
	"github.com/metalhealth/checkin-insights/internal/domain/report"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	analyticsSvc analytics.Service
	reportSvc    report.Service
	logger       *slog.Logger
}

// NewHandler constructs the root HTTP handler. reportSvc may be nil when
// archiving is disabled.
func NewHandler(analyticsSvc analytics.Service, reportSvc report.Service, logger *slog.Logger) *Handler {
	return &Handler{
		analyticsSvc: analyticsSvc,
		reportSvc:    reportSvc,
		logger:       logger.With("component", "http.handler"),
	}
}

// AnalyzeCheckIn handles a single-day check-in.
func (h *Handler) AnalyzeCheckIn(c *gin.Context) {
	var req analytics.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.rejectInput(c, analytics.KindCheckIn, err)
		return
	}
	result := h.analyticsSvc.AnalyzeCheckIn(c.Request.Context(), req)
	answers := req.Answers
	h.respond(c, result, report.Entry{Answers: &answers})
}

// AnalyzeDailySummary handles a free-text journal entry.
func (h *Handler) AnalyzeDailySummary(c *gin.Context) {
	var req analytics.DailySummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.rejectInput(c, analytics.KindDailySummary, err)
		return
	}
	h.respond(c, h.analyticsSvc.AnalyzeDailySummary(c.Request.Context(), req), report.Entry{})
}

// AnalyzePeriod handles weekly and monthly longitudinal analysis.
func (h *Handler) AnalyzePeriod(c *gin.Context) {
	var req analytics.PeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.rejectInput(c, analytics.KindPeriod, err)
		return
	}
	period := req.Period
	if period == "" {
		period = analytics.PeriodWeekly
	}
	h.respond(c, h.analyticsSvc.AnalyzePeriod(c.Request.Context(), req), report.Entry{Period: period})
}

// AssessRisk produces a narrative risk assessment with specialist suggestions.
func (h *Handler) AssessRisk(c *gin.Context) {
	var req analytics.RiskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.rejectInput(c, analytics.KindRisk, err)
		return
	}
	h.respond(c, h.analyticsSvc.AssessRisk(c.Request.Context(), req), report.Entry{})
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) rejectInput(c *gin.Context, kind analytics.Kind, err error) {
	h.logger.Warn("analysis request rejected", "kind", string(kind), "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusBadRequest, analytics.InvalidInputResult(kind, err))
}

// respond writes the result and archives it for authenticated callers.
// Archive failures never change the response. Requests the service rejected
// as invalid get the same 400 as undecodable ones.
func (h *Handler) respond(c *gin.Context, result analytics.Result, entry report.Entry) {
	if slices.Contains(result.Notes, analytics.CodeInvalidInput) {
		c.JSON(http.StatusBadRequest, result)
		return
	}
	if claims, ok := getClaims(c); ok && h.reportSvc != nil && result.Error() == "" {
		entry.UserID = claims.UserID
		entry.Result = result
		if _, err := h.reportSvc.Archive(c.Request.Context(), entry); err != nil {
			h.logger.Error("archive analysis failed", "kind", string(result.Kind), "userId", claims.UserID, "error", err)
		}
	}
	c.JSON(http.StatusOK, result)
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
