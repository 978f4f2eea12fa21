package types

// RiskLevel is the four-tier label derived from the risk score.
// The Spanish labels are part of the external contract and must not change.
type RiskLevel string

const (
	RiskLow      RiskLevel = "BAJO"
	RiskMedium   RiskLevel = "MEDIO"
	RiskHigh     RiskLevel = "ALTO"
	RiskCritical RiskLevel = "CRÍTICO"
)

// Metric identifies one scored sensor metric.
type Metric string

const (
	MetricTemperature Metric = "temperature_c"
	MetricHumidity    Metric = "humidity_pct"
	MetricNDVI        Metric = "ndvi"
	MetricNDMI        Metric = "ndmi"
	MetricNBR         Metric = "nbr"
)

// AllMetrics lists every scoreable metric in canonical order.
var AllMetrics = []Metric{
	MetricTemperature,
	MetricHumidity,
	MetricNDVI,
	MetricNDMI,
	MetricNBR,
}

// ValidMetric reports whether m names a known metric.
func ValidMetric(m Metric) bool {
	switch m {
	case MetricTemperature, MetricHumidity, MetricNDVI, MetricNDMI, MetricNBR:
		return true
	}
	return false
}

// MetricPolarity states which direction of a metric is dangerous.
type MetricPolarity string

const (
	// HighIsBad: readings above the threshold indicate danger
	// (temperature, burn-brightness indices).
	HighIsBad MetricPolarity = "high_is_bad"
	// LowIsBad: readings below the threshold indicate danger
	// (humidity, vegetation and moisture indices).
	LowIsBad MetricPolarity = "low_is_bad"
)

// EventKind classifies a detected event.
type EventKind string

const (
	EventThermalAnomaly EventKind = "thermal_anomaly"
	EventIndexAlert     EventKind = "index_alert"
	EventHotspot        EventKind = "hotspot"
)

// EventStatus is the lifecycle state of a detected event.
type EventStatus string

const (
	EventStatusMonitoring EventStatus = "monitoring"
	EventStatusResolved   EventStatus = "resolved"
)

// IndexState is the alert state of a spectral index row.
type IndexState string

const (
	IndexStateNormal IndexState = "normal"
	IndexStateAlert  IndexState = "alert"
)
