package weather

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDescribeCode(t *testing.T) {
	tests := []struct {
		code     int
		wantDesc string
	}{
		{0, "Clear sky"},
		{2, "Partly cloudy"},
		{45, "Foggy"},
		{63, "Rain"},
		{75, "Heavy snow"},
		{95, "Thunderstorm"},
		{999, "Unknown"},
	}
	for _, tt := range tests {
		desc, icon := describeCode(tt.code)
		if desc != tt.wantDesc {
			t.Errorf("describeCode(%d) = %q, want %q", tt.code, desc, tt.wantDesc)
		}
		if icon == "" {
			t.Errorf("describeCode(%d) returned empty icon", tt.code)
		}
	}
}

func TestGetFetchesAndCaches(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(map[string]any{
			"current": map[string]any{"temperature_2m": 70.5, "weather_code": 2},
			"daily": map[string]any{
				"time":               []string{"2026-08-29", "2026-08-30"},
				"temperature_2m_max": []float64{78, 80},
				"temperature_2m_min": []float64{55, 57},
				"weather_code":       []int{2, 61},
			},
		})
	}))
	defer server.Close()

	svc := NewService(Config{Latitude: "47.6", Longitude: "-122.3"})
	svc.baseURL = server.URL

	data := svc.Get(context.Background())
	if !data.Available {
		t.Fatal("forecast not available after fetch")
	}
	if data.CurrentTemp != 70.5 || data.Description != "Partly cloudy" {
		t.Errorf("current = %v %q", data.CurrentTemp, data.Description)
	}
	if len(data.Days) != 2 {
		t.Fatalf("days = %d, want 2", len(data.Days))
	}
	if data.Days[1].Date != "2026-08-30" || data.Days[1].Description != "Light rain" {
		t.Errorf("day[1] = %+v", data.Days[1])
	}
	if data.Unit != "F" {
		t.Errorf("unit = %q, want F", data.Unit)
	}

	// Second call inside the TTL must not hit the API again.
	svc.Get(context.Background())
	if calls != 1 {
		t.Errorf("API calls = %d, want 1", calls)
	}
}

func TestGetReturnsStaleOnError(t *testing.T) {
	svc := NewService(Config{Latitude: "47.6", Longitude: "-122.3"})
	svc.baseURL = "http://127.0.0.1:1"

	svc.mu.Lock()
	svc.cached = Forecast{
		CurrentTemp: 70,
		Description: "Clear sky",
		Unit:        "F",
		Available:   true,
		Configured:  true,
	}
	svc.lastFetch = time.Now().Add(-cacheTTL - time.Minute)
	svc.mu.Unlock()

	data := svc.Get(context.Background())
	if data.CurrentTemp != 70 {
		t.Errorf("stale temp = %v, want 70", data.CurrentTemp)
	}
}

func TestNotConfigured(t *testing.T) {
	svc := NewService(Config{})
	if svc.Configured() {
		t.Error("empty config should not be configured")
	}
	data := svc.Get(context.Background())
	if data.Available || data.Configured {
		t.Errorf("forecast = %+v, want unavailable", data)
	}
}
