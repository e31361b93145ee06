package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/agentlens/backend/internal/cache"
	"github.com/agentlens/backend/internal/csvio"
	"github.com/agentlens/backend/internal/metrics"
	"github.com/agentlens/backend/internal/report"
	"github.com/agentlens/backend/internal/types"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// ReportsHandler handles the upload, re-fetch and export endpoints.
type ReportsHandler struct {
	cache          *cache.ReportCache
	maxUploadBytes int64
	logger         zerolog.Logger
}

// NewReportsHandler creates a new ReportsHandler
func NewReportsHandler(c *cache.ReportCache, maxUploadBytes int64, logger zerolog.Logger) *ReportsHandler {
	return &ReportsHandler{
		cache:          c,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With().Str("component", "reports_api").Logger(),
	}
}

// uploadResponse wraps the derived payload with its cache ID.
type uploadResponse struct {
	ReportID string        `json:"reportId"`
	RowCount int           `json:"rowCount"`
	Report   report.Report `json:"report"`
}

// UploadOccupancy handles POST /api/reports/occupancy
func (h *ReportsHandler) UploadOccupancy(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, types.ReportOccupancy)
}

// UploadNotReady handles POST /api/reports/notready
func (h *ReportsHandler) UploadNotReady(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, types.ReportNotReady)
}

// UploadExceptions handles POST /api/reports/exceptions
func (h *ReportsHandler) UploadExceptions(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, types.ReportExceptions)
}

func (h *ReportsHandler) upload(w http.ResponseWriter, r *http.Request, kind types.ReportKind) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, _, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.reject(w, r, kind, http.StatusRequestEntityTooLarge, "upload exceeds size limit", nil)
			return
		}
		h.reject(w, r, kind, http.StatusBadRequest, `multipart field "file" is required`, nil)
		return
	}
	defer file.Close()

	recs, err := h.decode(file, kind)
	if err != nil {
		var missing *csvio.MissingColumnError
		if errors.As(err, &missing) {
			h.reject(w, r, kind, http.StatusBadRequest, missing.Error(), missing.Columns)
			return
		}
		var malformed *csvio.MalformedFileError
		if errors.As(err, &malformed) {
			h.reject(w, r, kind, http.StatusBadRequest, malformed.Error(), nil)
			return
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.reject(w, r, kind, http.StatusRequestEntityTooLarge, "upload exceeds size limit", nil)
			return
		}
		h.logger.Error().Err(err).Str("report", string(kind)).Msg("failed to decode upload")
		h.reject(w, r, kind, http.StatusBadRequest, "could not read upload", nil)
		return
	}

	start := time.Now()
	rep := h.build(recs, kind, r.URL.Query().Get("by"))
	metrics.DeriveDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())

	id := h.cache.Put(rep)
	metrics.UploadsTotal.WithLabelValues(string(kind), "accepted").Inc()

	h.logger.Info().
		Str("report", string(kind)).
		Str("report_id", id).
		Int("rows", len(recs)).
		Msg("report derived")

	writeJSON(w, http.StatusCreated, uploadResponse{
		ReportID: id,
		RowCount: len(recs),
		Report:   rep,
	})
}

func (h *ReportsHandler) decode(file io.Reader, kind types.ReportKind) ([]types.AgentRecord, error) {
	switch kind {
	case types.ReportNotReady:
		return csvio.DecodeNotReady(file)
	case types.ReportExceptions:
		return csvio.DecodeExceptions(file)
	default:
		return csvio.DecodeOccupancy(file)
	}
}

func (h *ReportsHandler) build(recs []types.AgentRecord, kind types.ReportKind, by string) report.Report {
	switch kind {
	case types.ReportNotReady:
		return report.BuildNotReady(recs)
	case types.ReportExceptions:
		return report.BuildExceptions(recs, types.CountField(by))
	default:
		return report.BuildOccupancy(recs)
	}
}

// GetReport handles GET /api/reports/{reportID}
func (h *ReportsHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.cache.Get(chi.URLParam(r, "reportID"))
	if !ok {
		writeError(w, http.StatusNotFound, "report not found or expired")
		return
	}

	if groups := queryGroups(r); len(groups) > 0 {
		if ex, isEx := rep.(*report.ExceptionsReport); isEx {
			rep = ex.FilterGroups(groups)
		}
	}

	writeJSON(w, http.StatusOK, rep)
}

// ExportReport handles GET /api/reports/{reportID}/export
func (h *ReportsHandler) ExportReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "reportID")
	rep, ok := h.cache.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "report not found or expired")
		return
	}

	kind := rep.ReportKind()
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", string(kind)+"_report.csv"))

	if err := rep.WriteCSV(w, queryGroups(r)); err != nil {
		h.logger.Error().Err(err).Str("report_id", id).Msg("failed to write export")
		return
	}

	metrics.ExportsTotal.WithLabelValues(string(kind)).Inc()
}

func (h *ReportsHandler) reject(w http.ResponseWriter, r *http.Request, kind types.ReportKind, status int, msg string, missing []string) {
	metrics.UploadsTotal.WithLabelValues(string(kind), "rejected").Inc()
	h.logger.Warn().
		Str("report", string(kind)).
		Int("status", status).
		Str("reason", msg).
		Msg("upload rejected")

	body := map[string]interface{}{"error": msg}
	if len(missing) > 0 {
		body["missingColumns"] = missing
	}
	writeJSON(w, status, body)
}

// queryGroups reads the agent-group filter from the query string. Both
// repeated params and comma-separated values are accepted.
func queryGroups(r *http.Request) []string {
	var groups []string
	for _, raw := range r.URL.Query()["groups"] {
		for _, g := range strings.Split(raw, ",") {
			if g = strings.TrimSpace(g); g != "" {
				groups = append(groups, g)
			}
		}
	}
	return groups
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
