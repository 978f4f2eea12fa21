// Package handlers contains the HTTP handler implementations for the Firebay
// API. Each handler declares a local interface for the services it consumes,
// receives them via its constructor, and mounts its own routes on the /v1
// router group.
package handlers

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"firebay/internal/core"
	"firebay/internal/risk"
	"firebay/internal/types"
)

// ConditionsSource supplies the latest sensor reading. Defined locally to
// keep the handler decoupled from the external package.
type ConditionsSource interface {
	Current(ctx context.Context) (types.SensorReading, error)
}

// RiskHandler serves the risk evaluation endpoints.
type RiskHandler struct {
	conditions ConditionsSource
	profiles   map[string]risk.Profile
	logger     *slog.Logger
}

// NewRiskHandler creates a RiskHandler. The profiles map must contain at
// least the default profile.
func NewRiskHandler(conditions ConditionsSource, profiles map[string]risk.Profile, logger *slog.Logger) *RiskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RiskHandler{
		conditions: conditions,
		profiles:   profiles,
		logger:     logger,
	}
}

// RegisterRoutes mounts the risk endpoints.
func (h *RiskHandler) RegisterRoutes(r chi.Router) {
	r.Route("/risk", func(r chi.Router) {
		r.Post("/evaluate", h.HandleEvaluate)
		r.Get("/current", h.HandleCurrent)
	})
}

// evaluateRequest is the POST /v1/risk/evaluate body. Thresholds are always
// explicit; there is no server-side default applied silently to a submitted
// evaluation.
type evaluateRequest struct {
	Reading    types.SensorReading   `json:"reading"`
	Thresholds types.ThresholdConfig `json:"thresholds"`
	// Metrics optionally narrows the active metric set. Empty means the
	// standard four-metric set.
	Metrics []types.Metric `json:"metrics,omitempty"`
}

// evaluateResponse pairs the assessment with what was evaluated, so clients
// can render the result without re-reading their request.
type evaluateResponse struct {
	Assessment types.RiskAssessment  `json:"assessment"`
	Breached   []types.Metric        `json:"breached_metrics"`
	Reading    types.SensorReading   `json:"reading"`
	Thresholds types.ThresholdConfig `json:"thresholds"`
	Metrics    []types.Metric        `json:"metrics"`
}

// HandleEvaluate handles POST /v1/risk/evaluate: score a caller-supplied
// reading against caller-supplied thresholds.
func (h *RiskHandler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}

	if err := rejectNonFinite(req.Reading, req.Thresholds); err != nil {
		core.Error(w, r, err)
		return
	}

	metrics := req.Metrics
	if len(metrics) == 0 {
		metrics = risk.DefaultMetricSet
	}
	for _, m := range metrics {
		if !types.ValidMetric(m) {
			core.Error(w, r, types.NewAppErrorWithDetails(
				types.ErrCodeValidationInvalidMetric,
				"unknown metric in active set",
				nil,
				map[string]any{"metric": string(m)},
			))
			return
		}
	}

	assessment := risk.Evaluate(req.Reading, req.Thresholds, metrics)

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: evaluateResponse{
		Assessment: assessment,
		Breached:   assessment.BreachedMetrics(),
		Reading:    req.Reading,
		Thresholds: req.Thresholds,
		Metrics:    metrics,
	}})
}

// HandleCurrent handles GET /v1/risk/current: score the live conditions
// against a named profile, with optional per-threshold query overrides
// (temperature_c, humidity_pct, ndvi, ndmi, nbr).
func (h *RiskHandler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	profile, err := h.resolveProfile(r.URL.Query().Get("profile"))
	if err != nil {
		core.Error(w, r, err)
		return
	}

	thresholds, err := applyThresholdOverrides(profile.Thresholds, r.URL.Query())
	if err != nil {
		core.Error(w, r, err)
		return
	}

	reading, err := h.conditions.Current(r.Context())
	if err != nil {
		h.logger.Error("failed to fetch current conditions", "error", err)
		core.Error(w, r, err)
		return
	}

	assessment := risk.Evaluate(reading, thresholds, profile.Metrics)

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: evaluateResponse{
		Assessment: assessment,
		Breached:   assessment.BreachedMetrics(),
		Reading:    reading,
		Thresholds: thresholds,
		Metrics:    profile.Metrics,
	}})
}

func (h *RiskHandler) resolveProfile(name string) (risk.Profile, error) {
	if name == "" {
		name = risk.DefaultProfileName
	}
	profile, ok := h.profiles[name]
	if !ok {
		return risk.Profile{}, types.NewAppErrorWithDetails(
			types.ErrCodeNotFoundProfile,
			"unknown threshold profile",
			nil,
			map[string]any{"profile": name},
		)
	}
	return profile, nil
}

// applyThresholdOverrides replaces individual thresholds from query
// parameters named after the metrics.
func applyThresholdOverrides(base types.ThresholdConfig, q url.Values) (types.ThresholdConfig, error) {
	set := func(param string, dst *float64) error {
		raw := q.Get(param)
		if raw == "" {
			return nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return types.NewAppErrorWithDetails(
				types.ErrCodeValidationInvalidThreshold,
				"threshold override must be a finite number",
				err,
				map[string]any{"param": param, "value": raw},
			)
		}
		*dst = v
		return nil
	}

	if err := set("temperature_c", &base.TemperatureC); err != nil {
		return base, err
	}
	if err := set("humidity_pct", &base.HumidityPct); err != nil {
		return base, err
	}
	if err := set("ndvi", &base.NDVI); err != nil {
		return base, err
	}
	if err := set("ndmi", &base.NDMI); err != nil {
		return base, err
	}
	if err := set("nbr", &base.NBR); err != nil {
		return base, err
	}
	return base, nil
}

// rejectNonFinite guards the evaluator's boundary: the evaluator itself
// accepts any real-valued input, so NaN and infinities are rejected here.
func rejectNonFinite(reading types.SensorReading, thresholds types.ThresholdConfig) error {
	values := map[string]float64{
		"reading.temperature_c":    reading.TemperatureC,
		"reading.humidity_pct":     reading.HumidityPct,
		"reading.ndvi":             reading.NDVI,
		"reading.ndmi":             reading.NDMI,
		"reading.nbr":              reading.NBR,
		"thresholds.temperature_c": thresholds.TemperatureC,
		"thresholds.humidity_pct":  thresholds.HumidityPct,
		"thresholds.ndvi":          thresholds.NDVI,
		"thresholds.ndmi":          thresholds.NDMI,
		"thresholds.nbr":           thresholds.NBR,
	}
	for field, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return types.NewAppErrorWithDetails(
				types.ErrCodeValidationInvalidReading,
				"values must be finite numbers",
				nil,
				map[string]any{"field": field},
			)
		}
	}
	return nil
}
