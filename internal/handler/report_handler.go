package handler

import (
	"net/http"
	"strconv"
	"time"

	"comanda-pos/internal/model"
	"comanda-pos/internal/service"

	"github.com/rs/zerolog"
)

const dateLayout = "2006-01-02"

// ReportHandler handles read-only reporting HTTP requests.
type ReportHandler struct {
	service service.ReportService
	logger  zerolog.Logger
}

// NewReportHandler creates a new report handler.
func NewReportHandler(service service.ReportService, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger.With().Str("handler", "report").Logger(),
	}
}

// Revenue handles GET /api/reports/revenue requests. An optional ?date=
// query selects a day other than today.
func (h *ReportHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	var day time.Time
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			writeError(w, http.StatusBadRequest, model.ErrCodeInvalidFormat, "invalid date format, expected YYYY-MM-DD", h.logger)
			return
		}
		day = parsed
	}

	report, err := h.service.Revenue(r.Context(), day)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// ClosedTabs handles GET /api/reports/closed-tabs requests with optional
// ?from= and ?to= date bounds (to is exclusive, advanced by one day so a
// same-day range covers the whole day).
func (h *ReportHandler) ClosedTabs(w http.ResponseWriter, r *http.Request) {
	var from, to *time.Time

	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			writeError(w, http.StatusBadRequest, model.ErrCodeInvalidFormat, "invalid from date, expected YYYY-MM-DD", h.logger)
			return
		}
		from = &parsed
	}

	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			writeError(w, http.StatusBadRequest, model.ErrCodeInvalidFormat, "invalid to date, expected YYYY-MM-DD", h.logger)
			return
		}
		end := parsed.AddDate(0, 0, 1)
		to = &end
	}

	tabs, err := h.service.ClosedTabs(r.Context(), from, to)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, tabs)
}

// TopProducts handles GET /api/reports/top-products requests with an
// optional ?limit= query.
func (h *ReportHandler) TopProducts(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, model.ErrCodeInvalidFormat, "limit must be a positive integer", h.logger)
			return
		}
		limit = parsed
	}

	products, err := h.service.TopProducts(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}
