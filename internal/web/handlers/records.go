package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/akraiem/attendance-tracker/internal/report"
	"github.com/akraiem/attendance-tracker/internal/store"
)

// RecordsHandler serves the attendance log table.
type RecordsHandler struct {
	store store.Store
	now   func() time.Time
}

func NewRecordsHandler(st store.Store) *RecordsHandler {
	return &RecordsHandler{store: st, now: time.Now}
}

// List returns the records matching the query filter, newest first.
func (h *RecordsHandler) List(w http.ResponseWriter, r *http.Request) {
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
	respondJSON(w, http.StatusOK, map[string]any{
		"records": records,
		"count":   len(records),
	})
}

// Get returns a single record by id.
func (h *RecordsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid record id")
		return
	}
	record, err := h.store.Attendance().Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "record not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "loading record failed")
		return
	}
	respondJSON(w, http.StatusOK, record)
}

type saveRequest struct {
	// Filter describes the subset the operator was editing. The current
	// rows for this filter form the baseline of the diff.
	Days    int            `json:"days"`
	Date    string         `json:"date"`
	Name    string         `json:"name"`
	Records []store.Record `json:"records"`
}

// Save reconciles an edited copy of a filtered record set with the log.
// Rows missing from the submitted set are deleted, rows without an id
// inserted, changed rows updated. Records outside the filter are never
// touched.
func (h *RecordsHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	filter := store.Filter{LastDays: req.Days, Date: req.Date, Name: req.Name}
	before, err := h.store.Attendance().List(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "listing records failed")
		return
	}

	stats, err := report.ApplyEdits(r.Context(), h.store.Attendance(), before, req.Records)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// Toggle flips a record between Present and Absent. Switching to Present
// stamps the current time; switching to Absent restores the sentinel.
func (h *RecordsHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid record id")
		return
	}
	record, err := h.store.Attendance().Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "record not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "loading record failed")
		return
	}

	if record.Status == store.StatusPresent {
		record.Status = store.StatusAbsent
		record.Time = store.SentinelTime
	} else {
		record.Status = store.StatusPresent
		record.Time = h.now().Format(store.TimeLayout)
	}

	if err := h.store.Attendance().Update(r.Context(), *record); err != nil {
		respondError(w, http.StatusInternalServerError, "updating record failed")
		return
	}
	respondJSON(w, http.StatusOK, record)
}
