package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"firebay/internal/core"
	"firebay/internal/report"
	"firebay/internal/risk"
	"firebay/internal/types"
)

// ReportHandler serves downloadable risk reports.
type ReportHandler struct {
	conditions ConditionsSource
	profiles   map[string]risk.Profile
	region     types.Region
	clock      types.Clock
	logger     *slog.Logger
}

// NewReportHandler creates a ReportHandler.
func NewReportHandler(conditions ConditionsSource, profiles map[string]risk.Profile, region types.Region, clock types.Clock, logger *slog.Logger) *ReportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportHandler{
		conditions: conditions,
		profiles:   profiles,
		region:     region,
		clock:      clock,
		logger:     logger,
	}
}

// RegisterRoutes mounts the report endpoints.
func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/reports/risk", h.HandleRiskReport)
}

// HandleRiskReport handles GET /v1/reports/risk?profile=. It evaluates the
// live conditions and streams the rendered PDF.
func (h *ReportHandler) HandleRiskReport(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("profile")
	if name == "" {
		name = risk.DefaultProfileName
	}
	profile, ok := h.profiles[name]
	if !ok {
		core.Error(w, r, types.NewAppErrorWithDetails(
			types.ErrCodeNotFoundProfile,
			"unknown threshold profile",
			nil,
			map[string]any{"profile": name},
		))
		return
	}

	reading, err := h.conditions.Current(r.Context())
	if err != nil {
		h.logger.Error("failed to fetch conditions for report", "error", err)
		core.Error(w, r, err)
		return
	}

	generatedAt := h.clock.Now()
	out, err := report.BuildRiskPDF(report.RiskReport{
		Region:      h.region,
		Reading:     reading,
		Thresholds:  profile.Thresholds,
		Metrics:     profile.Metrics,
		Assessment:  risk.Evaluate(reading, profile.Thresholds, profile.Metrics),
		GeneratedAt: generatedAt,
	})
	if err != nil {
		h.logger.Error("failed to render risk report", "error", err)
		core.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.Header().Set("Content-Disposition",
		`attachment; filename="firebay-risk-`+generatedAt.Format("2006-01-02")+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}
