// Package report renders downloadable risk reports for the monitored zone.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"firebay/internal/risk"
	"firebay/internal/types"
)

// RiskReport bundles everything one rendered report needs.
type RiskReport struct {
	Region      types.Region
	Reading     types.SensorReading
	Thresholds  types.ThresholdConfig
	Metrics     []types.Metric
	Assessment  types.RiskAssessment
	GeneratedAt time.Time
}

// metricLabels maps metric identifiers to report row labels.
var metricLabels = map[types.Metric]string{
	types.MetricTemperature: "Temperature (C)",
	types.MetricHumidity:    "Humidity (%)",
	types.MetricNDVI:        "NDVI",
	types.MetricNDMI:        "NDMI",
	types.MetricNBR:         "NBR",
}

// BuildRiskPDF renders an A4 risk report: zone header, score and level,
// then one table row per active metric with its reading, threshold, and
// breach flag.
func BuildRiskPDF(r RiskReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "B", 14)
	pdf.AddPage()

	pdf.Cell(0, 8, "Wildfire Risk Report")
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Region: %s", r.Region.Name))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Zone: %s", r.Region.Zone))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Coordinates: %.5f, %.5f", r.Region.Lat, r.Region.Lon))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", r.GeneratedAt.Format(time.RFC3339)))
	pdf.Ln(5)
	if r.Reading.Source != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Data source: %s", r.Reading.Source))
		pdf.Ln(5)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Risk score: %d / %d", r.Assessment.Score, risk.MaxScore))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Risk level: %s", r.Assessment.Level))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(50, 6, "Metric", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Reading", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Threshold", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Breached", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, m := range r.Metrics {
		label, ok := metricLabels[m]
		if !ok {
			label = string(m)
		}

		breached := "no"
		if r.Assessment.Breaches[m] {
			breached = "YES"
		}

		pdf.CellFormat(50, 6, label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 6, formatMetricValue(m, r.Reading), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, formatThresholdValue(m, r.Thresholds), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, breached, "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, types.NewAppError(
			types.ErrCodeInternalReport,
			"failed to render risk report",
			err,
		)
	}
	return buf.Bytes(), nil
}

func formatMetricValue(m types.Metric, reading types.SensorReading) string {
	switch m {
	case types.MetricTemperature:
		return fmt.Sprintf("%.1f", reading.TemperatureC)
	case types.MetricHumidity:
		return fmt.Sprintf("%.1f", reading.HumidityPct)
	case types.MetricNDVI:
		return fmt.Sprintf("%.2f", reading.NDVI)
	case types.MetricNDMI:
		return fmt.Sprintf("%.2f", reading.NDMI)
	case types.MetricNBR:
		return fmt.Sprintf("%.2f", reading.NBR)
	}
	return ""
}

func formatThresholdValue(m types.Metric, th types.ThresholdConfig) string {
	switch m {
	case types.MetricTemperature:
		return fmt.Sprintf("%.1f", th.TemperatureC)
	case types.MetricHumidity:
		return fmt.Sprintf("%.1f", th.HumidityPct)
	case types.MetricNDVI:
		return fmt.Sprintf("%.2f", th.NDVI)
	case types.MetricNDMI:
		return fmt.Sprintf("%.2f", th.NDMI)
	case types.MetricNBR:
		return fmt.Sprintf("%.2f", th.NBR)
	}
	return ""
}
