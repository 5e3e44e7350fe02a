// Package handlers implements the dashboard API endpoints.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/akraiem/attendance-tracker/internal/store"
)

const errInvalidRequestBody = "invalid request body"

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// parseFilter builds a record filter from query parameters: days (7, 14,
// 21, 30 or 0 for all), date and name.
func parseFilter(r *http.Request) (store.Filter, error) {
	var f store.Filter
	q := r.URL.Query()

	switch days := q.Get("days"); days {
	case "", "0":
	case "7", "14", "21", "30":
		fmt.Sscanf(days, "%d", &f.LastDays)
	default:
		return f, fmt.Errorf("days must be one of 7, 14, 21, 30")
	}

	f.Date = q.Get("date")
	f.Name = q.Get("name")
	return f, nil
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
