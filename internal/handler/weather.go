package handler

import (
	"net/http"

	"github.com/Carlosdescammer/Familytasklist-sub002/internal/weather"
)

// WeatherHandler serves the dashboard forecast.
type WeatherHandler struct {
	svc *weather.Service
}

func NewWeatherHandler(svc *weather.Service) *WeatherHandler {
	return &WeatherHandler{svc: svc}
}

func (h *WeatherHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Get(r.Context()))
}
