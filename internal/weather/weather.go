// Package weather fetches a short forecast from the Open-Meteo API for the
// family dashboard and the week view of the calendar. Open-Meteo needs no
// API key; the service is disabled unless a latitude and longitude are
// configured.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

const (
	cacheTTL     = 30 * time.Minute
	forecastDays = 7
)

type Config struct {
	Latitude        string
	Longitude       string
	TemperatureUnit string // "fahrenheit" or "celsius"
}

// Day is one day of the forecast, aligned with the calendar week view.
type Day struct {
	Date        string  `json:"date"` // YYYY-MM-DD
	HighTemp    float64 `json:"high_temp"`
	LowTemp     float64 `json:"low_temp"`
	Code        int     `json:"code"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
}

// Forecast is the payload served at /api/weather.
type Forecast struct {
	CurrentTemp float64 `json:"current_temp"`
	Code        int     `json:"code"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Unit        string  `json:"unit"` // "F" or "C"
	Days        []Day   `json:"days,omitempty"`
	Available   bool    `json:"available"`
	Configured  bool    `json:"configured"`
}

// Service caches Open-Meteo responses for cacheTTL and serves stale data
// when a refresh fails.
type Service struct {
	config    Config
	client    *http.Client
	baseURL   string
	mu        sync.RWMutex
	cached    Forecast
	lastFetch time.Time
}

func NewService(cfg Config) *Service {
	if cfg.TemperatureUnit == "" {
		cfg.TemperatureUnit = "fahrenheit"
	}
	unit := "F"
	if cfg.TemperatureUnit == "celsius" {
		unit = "C"
	}
	return &Service{
		config:  cfg,
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: "https://api.open-meteo.com/v1/forecast",
		cached: Forecast{
			Unit:       unit,
			Configured: cfg.Latitude != "" && cfg.Longitude != "",
		},
	}
}

// Configured reports whether coordinates are set.
func (s *Service) Configured() bool {
	return s.cached.Configured
}

// Get returns the forecast, refreshing from the API when the cache is
// stale. On fetch failure the previous forecast is returned unchanged.
func (s *Service) Get(ctx context.Context) Forecast {
	if !s.cached.Configured {
		return s.cached
	}

	s.mu.RLock()
	if time.Since(s.lastFetch) < cacheTTL && s.cached.Available {
		data := s.cached
		s.mu.RUnlock()
		return data
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring the write lock.
	if time.Since(s.lastFetch) < cacheTTL && s.cached.Available {
		return s.cached
	}

	data, err := s.fetch(ctx)
	if err != nil {
		return s.cached
	}

	s.cached = data
	s.lastFetch = time.Now()
	return s.cached
}

type apiResponse struct {
	Current struct {
		Temperature float64 `json:"temperature_2m"`
		WeatherCode int     `json:"weather_code"`
	} `json:"current"`
	Daily struct {
		Time        []string  `json:"time"`
		TempMax     []float64 `json:"temperature_2m_max"`
		TempMin     []float64 `json:"temperature_2m_min"`
		WeatherCode []int     `json:"weather_code"`
	} `json:"daily"`
}

func (s *Service) fetch(ctx context.Context) (Forecast, error) {
	url := fmt.Sprintf(
		"%s?latitude=%s&longitude=%s&current=temperature_2m,weather_code&daily=temperature_2m_max,temperature_2m_min,weather_code&timezone=auto&forecast_days=%d&temperature_unit=%s",
		s.baseURL, s.config.Latitude, s.config.Longitude, forecastDays, s.config.TemperatureUnit,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Forecast{}, fmt.Errorf("weather request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return Forecast{}, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Forecast{}, fmt.Errorf("weather API returned status %d", resp.StatusCode)
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return Forecast{}, fmt.Errorf("decode weather response: %w", err)
	}

	unit := "F"
	if s.config.TemperatureUnit == "celsius" {
		unit = "C"
	}
	desc, icon := describeCode(apiResp.Current.WeatherCode)

	data := Forecast{
		CurrentTemp: apiResp.Current.Temperature,
		Code:        apiResp.Current.WeatherCode,
		Description: desc,
		Icon:        icon,
		Unit:        unit,
		Available:   true,
		Configured:  true,
	}

	for i, date := range apiResp.Daily.Time {
		if i >= len(apiResp.Daily.TempMax) || i >= len(apiResp.Daily.TempMin) || i >= len(apiResp.Daily.WeatherCode) {
			break
		}
		dayDesc, dayIcon := describeCode(apiResp.Daily.WeatherCode[i])
		data.Days = append(data.Days, Day{
			Date:        date,
			HighTemp:    apiResp.Daily.TempMax[i],
			LowTemp:     apiResp.Daily.TempMin[i],
			Code:        apiResp.Daily.WeatherCode[i],
			Description: dayDesc,
			Icon:        dayIcon,
		})
	}

	return data, nil
}

// describeCode maps a WMO weather code to a description and emoji icon.
func describeCode(code int) (string, string) {
	switch code {
	case 0:
		return "Clear sky", "☀️"
	case 1:
		return "Mainly clear", "🌤️"
	case 2:
		return "Partly cloudy", "⛅"
	case 3:
		return "Overcast", "☁️"
	case 45, 48:
		return "Foggy", "🌫️"
	case 51, 53:
		return "Drizzle", "🌦️"
	case 55, 56, 57:
		return "Dense drizzle", "🌧️"
	case 61, 80:
		return "Light rain", "🌦️"
	case 63, 81:
		return "Rain", "🌧️"
	case 65, 66, 67, 82:
		return "Heavy rain", "🌧️"
	case 71, 73, 85:
		return "Snow", "🌨️"
	case 75, 77, 86:
		return "Heavy snow", "❄️"
	case 95, 96, 99:
		return "Thunderstorm", "⛈️"
	default:
		return "Unknown", "🌡️"
	}
}
