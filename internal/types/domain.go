// Package types defines the shared domain model for the Firebay platform:
// sensor readings, threshold configuration, risk assessments, detected events,
// and the error/context primitives used across all layers.
package types

import "time"

// SensorReading is a flat snapshot of the measured values for the monitored
// zone. It is produced by a conditions provider (upstream weather API or the
// simulated source) and is immutable for the duration of one evaluation.
type SensorReading struct {
	// TemperatureC is the air temperature in degrees Celsius.
	TemperatureC float64 `json:"temperature_c"`
	// HumidityPct is the relative humidity in percent (nominally 0-100).
	HumidityPct float64 `json:"humidity_pct"`
	// NDVI is the Normalized Difference Vegetation Index (low = stressed).
	NDVI float64 `json:"ndvi"`
	// NDMI is the Normalized Difference Moisture Index (low = dry).
	NDMI float64 `json:"ndmi"`
	// NBR is the Normalized Burn Ratio (high = burned/stressed).
	NBR float64 `json:"nbr"`

	// ObservedAt is when the reading was taken. Zero for ad-hoc evaluations.
	ObservedAt time.Time `json:"observed_at,omitzero"`
	// Source identifies where the reading came from (e.g. "open-meteo",
	// "simulated"). Informational only; the evaluator ignores it.
	Source string `json:"source,omitempty"`
}

// ThresholdConfig holds the critical threshold for each metric. It has the
// same shape as SensorReading's measured fields. Thresholds are always passed
// explicitly into the evaluator; there is no ambient global configuration.
type ThresholdConfig struct {
	TemperatureC float64 `json:"temperature_c" yaml:"temperature_c"`
	HumidityPct  float64 `json:"humidity_pct" yaml:"humidity_pct"`
	NDVI         float64 `json:"ndvi" yaml:"ndvi"`
	NDMI         float64 `json:"ndmi" yaml:"ndmi"`
	NBR          float64 `json:"nbr" yaml:"nbr"`
}

// RiskAssessment is the evaluator's output: a clamped integer score, the
// discrete risk level derived from it, and one breach flag per active metric.
// It is derived, never stored; every evaluation recomputes it from scratch.
type RiskAssessment struct {
	Score    int             `json:"score"`
	Level    RiskLevel       `json:"level"`
	Breaches map[Metric]bool `json:"breaches"`
}

// BreachedMetrics returns the metrics whose primary threshold comparison
// fired, in the canonical AllMetrics order. Used to build alert lists.
func (a RiskAssessment) BreachedMetrics() []Metric {
	var out []Metric
	for _, m := range AllMetrics {
		if a.Breaches[m] {
			out = append(out, m)
		}
	}
	return out
}

// DetectedEvent is one row of the operational event registry (thermal
// anomalies, index alerts, hotspots) shown on the dashboard's history tab.
type DetectedEvent struct {
	ID         string      `json:"id"`
	OccurredAt time.Time   `json:"occurred_at"`
	Kind       EventKind   `json:"kind"`
	Severity   RiskLevel   `json:"severity"`
	Sector     string      `json:"sector"`
	Status     EventStatus `json:"status"`
}

// IndexSnapshot is one row of the vegetation/severity index table: the
// current and previous value of a spectral index plus its alert state.
type IndexSnapshot struct {
	Index       string     `json:"index"`
	Current     float64    `json:"current"`
	Previous    float64    `json:"previous"`
	State       IndexState `json:"state"`
	Description string     `json:"description"`
}

// Region describes the fixed monitored zone.
type Region struct {
	Name string  `json:"name"`
	Zone string  `json:"zone"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}
