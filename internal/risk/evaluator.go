// Package risk implements the wildfire risk score evaluator: a pure function
// that maps a sensor reading and a threshold configuration to a 0-100 score,
// a four-tier level, and per-metric breach flags.
package risk

import (
	"firebay/internal/types"
)

// Scoring constants. A primary threshold breach contributes PointsPrimary;
// a reading inside the secondary margin band contributes PointsSecondary.
const (
	PointsPrimary   = 25
	PointsSecondary = 15
	MaxScore        = 100
)

// Level boundaries, evaluated high-to-low. score >= LevelCriticalMin is
// CRÍTICO, and so on down; anything below LevelMediumMin is BAJO.
const (
	LevelCriticalMin = 75
	LevelHighMin     = 50
	LevelMediumMin   = 25
)

// margins holds the per-metric secondary band width. The constants are
// asymmetric and metric-specific with no unifying formula; they are carried
// over exactly as observed.
var margins = map[types.Metric]float64{
	types.MetricTemperature: 5,    // °C below the critical temperature
	types.MetricHumidity:    10,   // percentage points above critical humidity
	types.MetricNDVI:        0.15, // index units above the NDVI floor
	types.MetricNDMI:        0.15, // index units above the NDMI floor
	types.MetricNBR:         0.2,  // index units below the NBR ceiling
}

// polarities states which direction of each metric is dangerous.
var polarities = map[types.Metric]types.MetricPolarity{
	types.MetricTemperature: types.HighIsBad,
	types.MetricHumidity:    types.LowIsBad,
	types.MetricNDVI:        types.LowIsBad,
	types.MetricNDMI:        types.LowIsBad,
	types.MetricNBR:         types.HighIsBad,
}

// DefaultMetricSet is the set of metrics scored by the standard dashboard
// evaluation: temperature, humidity, and the vegetation/moisture indices.
// NBR is scored only when explicitly included in the active set.
var DefaultMetricSet = []types.Metric{
	types.MetricTemperature,
	types.MetricHumidity,
	types.MetricNDVI,
	types.MetricNDMI,
}

// Polarity returns the danger direction for a metric.
func Polarity(m types.Metric) types.MetricPolarity {
	return polarities[m]
}

// Margin returns the secondary band width for a metric.
func Margin(m types.Metric) float64 {
	return margins[m]
}

// Evaluate scores the reading against the thresholds over the given active
// metric set and returns the assessment. It is pure and performs no input
// validation: any real-valued input is accepted and scored per the
// arithmetic rules, with the final sum clamped to [0, MaxScore]. Callers
// that need to reject non-finite input do so before calling.
//
// Per-metric rule:
//   - high-is-bad: reading > threshold → +25; threshold-margin < reading
//     ≤ threshold → +15; otherwise 0.
//   - low-is-bad: reading < threshold → +25; threshold ≤ reading <
//     threshold+margin → +15; otherwise 0.
//
// The breach flag records only the primary comparison; the margin band
// affects the score but never the flag.
func Evaluate(reading types.SensorReading, thresholds types.ThresholdConfig, metrics []types.Metric) types.RiskAssessment {
	score := 0
	breaches := make(map[types.Metric]bool, len(metrics))

	for _, m := range metrics {
		v := metricValue(reading, m)
		t := thresholdValue(thresholds, m)
		pts, breached := scoreMetric(m, v, t)
		score += pts
		breaches[m] = breached
	}

	if score > MaxScore {
		score = MaxScore
	}

	return types.RiskAssessment{
		Score:    score,
		Level:    LevelForScore(score),
		Breaches: breaches,
	}
}

// EvaluateDefault scores the reading over DefaultMetricSet.
func EvaluateDefault(reading types.SensorReading, thresholds types.ThresholdConfig) types.RiskAssessment {
	return Evaluate(reading, thresholds, DefaultMetricSet)
}

// scoreMetric applies the per-metric rule and returns the contributed points
// and whether the primary comparison fired.
func scoreMetric(m types.Metric, v, t float64) (points int, breached bool) {
	margin := margins[m]
	switch polarities[m] {
	case types.HighIsBad:
		if v > t {
			return PointsPrimary, true
		}
		if v > t-margin {
			return PointsSecondary, false
		}
	case types.LowIsBad:
		if v < t {
			return PointsPrimary, true
		}
		if v < t+margin {
			return PointsSecondary, false
		}
	}
	return 0, false
}

// LevelForScore maps a final score to its risk level. Boundaries are
// inclusive on the lower end of each band.
func LevelForScore(score int) types.RiskLevel {
	switch {
	case score >= LevelCriticalMin:
		return types.RiskCritical
	case score >= LevelHighMin:
		return types.RiskHigh
	case score >= LevelMediumMin:
		return types.RiskMedium
	default:
		return types.RiskLow
	}
}

func metricValue(r types.SensorReading, m types.Metric) float64 {
	switch m {
	case types.MetricTemperature:
		return r.TemperatureC
	case types.MetricHumidity:
		return r.HumidityPct
	case types.MetricNDVI:
		return r.NDVI
	case types.MetricNDMI:
		return r.NDMI
	case types.MetricNBR:
		return r.NBR
	}
	return 0
}

func thresholdValue(t types.ThresholdConfig, m types.Metric) float64 {
	switch m {
	case types.MetricTemperature:
		return t.TemperatureC
	case types.MetricHumidity:
		return t.HumidityPct
	case types.MetricNDVI:
		return t.NDVI
	case types.MetricNDMI:
		return t.NDMI
	case types.MetricNBR:
		return t.NBR
	}
	return 0
}
