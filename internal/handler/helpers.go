package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Carlosdescammer/Familytasklist-sub002/internal/gamification"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func errorJSON(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func parsePathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}

// writeDomainError maps engine and store errors onto HTTP statuses. Unmatched
// errors become a generic 500 so internals never leak to the client.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gamification.ErrNotFound):
		errorJSON(w, http.StatusNotFound, "not found")
	case errors.Is(err, gamification.ErrNotAssignee), errors.Is(err, gamification.ErrNotGuardian):
		errorJSON(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, gamification.ErrInvalidStatus):
		// Wrong-state transitions are failed preconditions, not conflicts.
		errorJSON(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, gamification.ErrValidation):
		errorJSON(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrInsufficientPoints):
		errorJSON(w, http.StatusConflict, "insufficient points")
	default:
		errorJSON(w, http.StatusInternalServerError, "internal error")
	}
}

// parseDateParam reads an RFC 3339 or YYYY-MM-DD query parameter, returning
// the fallback when absent.
func parseDateParam(r *http.Request, name string, fallback time.Time) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
