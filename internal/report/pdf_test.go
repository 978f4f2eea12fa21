package report

import (
	"bytes"
	"testing"
	"time"

	"firebay/internal/risk"
	"firebay/internal/types"
)

func sampleReport() RiskReport {
	reading := types.SensorReading{
		TemperatureC: 38,
		HumidityPct:  20,
		NDVI:         0.25,
		NDMI:         0.30,
		Source:       "simulated",
	}
	thresholds := risk.DefaultThresholds()

	return RiskReport{
		Region: types.Region{
			Name: "Aysén",
			Zone: "Bahía Exploradores",
			Lat:  -46.31050588037077,
			Lon:  -73.42610705801674,
		},
		Reading:     reading,
		Thresholds:  thresholds,
		Metrics:     risk.DefaultMetricSet,
		Assessment:  risk.Evaluate(reading, thresholds, risk.DefaultMetricSet),
		GeneratedAt: time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC),
	}
}

func TestBuildRiskPDF(t *testing.T) {
	out, err := BuildRiskPDF(sampleReport())
	if err != nil {
		t.Fatalf("BuildRiskPDF: %v", err)
	}

	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Errorf("output does not start with a PDF header: %q", out[:min(len(out), 8)])
	}
	if len(out) < 500 {
		t.Errorf("suspiciously small PDF: %d bytes", len(out))
	}
}

func TestBuildRiskPDFUnknownMetricDoesNotPanic(t *testing.T) {
	r := sampleReport()
	r.Metrics = append(r.Metrics, types.Metric("mystery"))

	if _, err := BuildRiskPDF(r); err != nil {
		t.Fatalf("BuildRiskPDF: %v", err)
	}
}
