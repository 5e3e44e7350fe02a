package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/akraiem/attendance-tracker/internal/report"
	"github.com/akraiem/attendance-tracker/internal/store"
)

// ReportsHandler serves summaries, charts, exports and the absentee pass.
type ReportsHandler struct {
	store store.Store
	now   func() time.Time
}

func NewReportsHandler(st store.Store) *ReportsHandler {
	return &ReportsHandler{store: st, now: time.Now}
}

// Summary returns the headline statistics for the filtered records.
func (h *ReportsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	records, err := h.store.Attendance().List(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "listing records failed")
		return
	}
	respondJSON(w, http.StatusOK, report.Summarize(records))
}

// Charts returns the dashboard chart series. top bounds the ranked
// series and defaults to 10.
func (h *ReportsHandler) Charts(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	top := 10
	if v := r.URL.Query().Get("top"); v != "" {
		top, err = strconv.Atoi(v)
		if err != nil || top < 1 {
			respondError(w, http.StatusBadRequest, "top must be a positive integer")
			return
		}
	}
	records, err := h.store.Attendance().List(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "listing records failed")
		return
	}
	respondJSON(w, http.StatusOK, report.BuildCharts(records, top))
}

// Export streams the filtered records as a CSV download.
func (h *ReportsHandler) Export(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	records, err := h.store.Attendance().List(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "listing records failed")
		return
	}
	data, err := report.RenderCSV(records)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "rendering csv failed")
		return
	}

	name := report.ExportFilename(h.now().Format(store.DateLayout))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

type absenteesRequest struct {
	Date string `json:"date"`
}

// MarkAbsentees writes Absent records for every registered student with
// no record on the given date (today when omitted).
func (h *ReportsHandler) MarkAbsentees(w http.ResponseWriter, r *http.Request) {
	var req absenteesRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, errInvalidRequestBody)
			return
		}
	}
	date := req.Date
	if date == "" {
		date = h.now().Format(store.DateLayout)
	}
	if _, err := time.Parse(store.DateLayout, date); err != nil {
		respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	n, err := report.PersistAbsentees(r.Context(), h.store.Students(), h.store.Attendance(), date)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "marking absentees failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"date": date, "marked_absent": n})
}
