package openweather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

const pollutionBody = `{"list":[{"main":{"aqi":3},"components":{"pm2_5":14.2,"pm10":22.8,"o3":51.0,"no2":7.9}}]}`

const weatherBody = `{"main":{"temp":28.6,"humidity":74,"pressure":1009},"wind":{"speed":2.4}}`

func newTestClient(t *testing.T, handler http.HandlerFunc, timeout time.Duration) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(&http.Client{Timeout: timeout}, "test-key", zap.NewNop())
	c.baseURL = srv.URL
	return c, srv
}

func TestFetchAirQualitySuccess(t *testing.T) {
	var pollutionQuery, weatherQuery string

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/air_pollution"):
			pollutionQuery = r.URL.RawQuery
			w.Write([]byte(pollutionBody))
		case strings.HasSuffix(r.URL.Path, "/weather"):
			weatherQuery = r.URL.RawQuery
			w.Write([]byte(weatherBody))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}, 5*time.Second)

	res, err := c.FetchAirQuality(context.Background(), 8.312, -73.626)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Pollution.List) != 1 {
		t.Fatalf("expected one pollution reading, got %d", len(res.Pollution.List))
	}
	entry := res.Pollution.List[0]
	if entry.Main.AQI == nil || *entry.Main.AQI != 3 {
		t.Errorf("expected aqi 3, got %v", entry.Main.AQI)
	}
	if entry.Components.PM25 == nil || *entry.Components.PM25 != 14.2 {
		t.Errorf("expected pm2_5 14.2, got %v", entry.Components.PM25)
	}
	if res.Weather.Main.Temp == nil || *res.Weather.Main.Temp != 28.6 {
		t.Errorf("expected temp 28.6, got %v", res.Weather.Main.Temp)
	}

	if !strings.Contains(pollutionQuery, "appid=test-key") {
		t.Errorf("pollution request missing credential: %s", pollutionQuery)
	}
	if !strings.Contains(weatherQuery, "units=metric") {
		t.Errorf("weather request missing metric units: %s", weatherQuery)
	}
}

func TestFetchAirQualityWeatherUpstreamError(t *testing.T) {
	var calls int

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if strings.HasSuffix(r.URL.Path, "/air_pollution") {
			w.Write([]byte(pollutionBody))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}, 5*time.Second)

	res, err := c.FetchAirQuality(context.Background(), 8.312, -73.626)
	if err == nil {
		t.Fatal("expected error when the weather call returns 503")
	}
	if len(res.Pollution.List) != 0 {
		t.Error("no partial data should be returned on failure")
	}
	// Both calls are attempted exactly once; no retries.
	if calls != 2 {
		t.Errorf("expected 2 upstream calls, got %d", calls)
	}
}

func TestFetchAirQualityPollutionUpstreamError(t *testing.T) {
	var calls int

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}, 5*time.Second)

	if _, err := c.FetchAirQuality(context.Background(), 8.312, -73.626); err == nil {
		t.Fatal("expected error when the pollution call fails")
	}
	// The weather call is skipped once the pollution call has failed.
	if calls != 1 {
		t.Errorf("expected 1 upstream call, got %d", calls)
	}
}

func TestFetchAirQualityTimeout(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(pollutionBody))
	}, 20*time.Millisecond)

	if _, err := c.FetchAirQuality(context.Background(), 8.312, -73.626); err == nil {
		t.Fatal("expected error when the call exceeds the client timeout")
	}
}

func TestFetchAirQualityMissingKey(t *testing.T) {
	var calls int
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
	}, time.Second)
	c.apiKey = ""

	if _, err := c.FetchAirQuality(context.Background(), 0, 0); err == nil {
		t.Fatal("expected error when the api key is not configured")
	}
	if calls != 0 {
		t.Errorf("expected no upstream calls, got %d", calls)
	}
}
