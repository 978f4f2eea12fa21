package external

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"firebay/internal/types"
)

func noSleep() ClientOption {
	return WithSleepFunc(func(time.Duration) {})
}

func testPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 2, MinWait: time.Millisecond, MaxWait: 5 * time.Millisecond}
}

func TestDoRetriesOn500ThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), "test", testPolicy(), "firebay-test", noSleep())

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("upstream called %d times, want 3", got)
	}
}

func TestDoExhaustedRetriesMapsToUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), "test", testPolicy(), "firebay-test", noSleep())

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	_, err := c.Do(req)
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}

	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *types.AppError, got %T", err)
	}
	if appErr.Code != types.ErrCodeUpstreamWeather {
		t.Errorf("code = %s, want %s", appErr.Code, types.ErrCodeUpstreamWeather)
	}
}

func TestDoDoesNotRetryOn4xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), "test", testPolicy(), "firebay-test", noSleep())

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("upstream called %d times, want 1", got)
	}
}

func TestDoMaps429ToRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	var slept atomic.Int32
	c := NewClient(srv.Client(), "test", testPolicy(), "firebay-test",
		WithSleepFunc(func(time.Duration) { slept.Add(1) }))

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	_, err := c.Do(req)
	if err == nil {
		t.Fatal("expected error for persistent 429")
	}

	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *types.AppError, got %T", err)
	}
	if appErr.Code != types.ErrCodeUpstreamRateLimited {
		t.Errorf("code = %s, want %s", appErr.Code, types.ErrCodeUpstreamRateLimited)
	}
	if slept.Load() == 0 {
		t.Error("expected at least one backoff sleep")
	}
}

func TestDoSetsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), "test", testPolicy(), "Firebay-Weather/1.0", noSleep())

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	resp.Body.Close()

	if gotUA != "Firebay-Weather/1.0" {
		t.Errorf("User-Agent = %q", gotUA)
	}
}

func TestWeatherClientParsesForecast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/forecast" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"current":{"temperature_2m":33.5,"relative_humidity_2m":22}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), "weather", testPolicy(), "firebay-test", noSleep())
	wc := NewWeatherClient(c, srv.URL, -46.31, -73.43, types.RealClock{})

	reading, err := wc.Current(context.Background())
	if err != nil {
		t.Fatalf("Current: %v", err)
	}

	if reading.TemperatureC != 33.5 || reading.HumidityPct != 22 {
		t.Errorf("reading = %+v", reading)
	}
	if reading.NDVI != baselineNDVI || reading.NDMI != baselineNDMI || reading.NBR != baselineNBR {
		t.Errorf("indices should come from the baseline: %+v", reading)
	}
	if reading.Source != "weather_api" {
		t.Errorf("Source = %q", reading.Source)
	}
	if reading.ObservedAt.IsZero() {
		t.Error("ObservedAt should be set")
	}
}

func TestSimulatedProviderBaseline(t *testing.T) {
	p := NewSimulatedProvider(types.RealClock{})

	reading, err := p.Current(context.Background())
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if reading.TemperatureC != 32 || reading.HumidityPct != 28 {
		t.Errorf("reading = %+v", reading)
	}
	if reading.Source != "simulated" {
		t.Errorf("Source = %q", reading.Source)
	}
}

type failingProvider struct{}

func (failingProvider) Current(ctx context.Context) (types.SensorReading, error) {
	return types.SensorReading{}, types.NewAppError(types.ErrCodeUpstreamWeather, "down", nil)
}

func TestFallbackProviderUsesSecondaryOnFailure(t *testing.T) {
	p := NewFallbackProvider(failingProvider{}, NewSimulatedProvider(types.RealClock{}))

	reading, err := p.Current(context.Background())
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if reading.Source != "simulated" {
		t.Errorf("expected fallback reading, got %+v", reading)
	}
}

func TestFallbackProviderPrefersPrimary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"current":{"temperature_2m":30,"relative_humidity_2m":40}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), "weather", testPolicy(), "firebay-test", noSleep())
	primary := NewWeatherClient(c, srv.URL, -46.31, -73.43, types.RealClock{})
	p := NewFallbackProvider(primary, NewSimulatedProvider(types.RealClock{}))

	reading, err := p.Current(context.Background())
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if reading.Source != "weather_api" {
		t.Errorf("expected primary reading, got %+v", reading)
	}
}
