package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/metalhealth/checkin-insights/internal/domain/analytics"
	"github.com/metalhealth/checkin-insights/internal/domain/report"
	apperrors "github.com/metalhealth/checkin-insights/pkg/errors"
)

// ListReports returns the caller's archived reports, newest first.
func (h *Handler) ListReports(c *gin.Context) {
	userID, ok := h.reportUser(c)
	if !ok {
		return
	}
	kind, ok := parseKind(c)
	if !ok {
		return
	}
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "limit must be a non-negative integer", err))
			return
		}
		limit = value
	}
	reports, err := h.reportSvc.History(c.Request.Context(), userID, kind, limit)
	if err != nil {
		abortWithError(c, reportError(err))
		return
	}
	if reports == nil {
		reports = []report.Report{}
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

// LatestReport returns the most recent archived report, optionally of one kind.
func (h *Handler) LatestReport(c *gin.Context) {
	userID, ok := h.reportUser(c)
	if !ok {
		return
	}
	kind, ok := parseKind(c)
	if !ok {
		return
	}
	rep, err := h.reportSvc.Latest(c.Request.Context(), userID, kind)
	if err != nil {
		abortWithError(c, reportError(err))
		return
	}
	c.JSON(http.StatusOK, rep)
}

// DownloadReport renders the caller's check-in history as a text attachment.
func (h *Handler) DownloadReport(c *gin.Context) {
	userID, ok := h.reportUser(c)
	if !ok {
		return
	}
	doc, err := h.reportSvc.Download(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, reportError(err))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	if doc.Location != "" {
		c.Header("X-Report-Location", doc.Location)
	}
	c.Data(http.StatusOK, doc.ContentType, doc.Body)
}

func (h *Handler) reportUser(c *gin.Context) (int64, bool) {
	if h.reportSvc == nil {
		abortWithError(c, NewHTTPError(http.StatusNotFound, "archive_disabled", "report archive is disabled", nil))
		return 0, false
	}
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "authentication required", nil))
		return 0, false
	}
	return claims.UserID, true
}

func parseKind(c *gin.Context) (analytics.Kind, bool) {
	kind := analytics.Kind(strings.TrimSpace(c.Query("kind")))
	switch kind {
	case "", analytics.KindCheckIn, analytics.KindDailySummary, analytics.KindPeriod, analytics.KindRisk:
		return kind, true
	default:
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "unknown report kind", nil))
		return "", false
	}
}

func reportError(err error) *HTTPError {
	switch {
	case apperrors.IsCode(err, report.CodeNotFound):
		return NewHTTPError(http.StatusNotFound, report.CodeNotFound, errMessage(err), err)
	case apperrors.IsCode(err, report.CodeInvalidInput):
		return NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err)
	default:
		return NewHTTPError(http.StatusInternalServerError, "report_failed", errMessage(err), err)
	}
}
