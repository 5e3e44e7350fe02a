package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/akraiem/attendance-tracker/internal/store"
)

// StudentsHandler serves the student registry.
type StudentsHandler struct {
	store store.Store
}

func NewStudentsHandler(st store.Store) *StudentsHandler {
	return &StudentsHandler{store: st}
}

// List returns all registered students ordered by name.
func (h *StudentsHandler) List(w http.ResponseWriter, r *http.Request) {
	students, err := h.store.Students().List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "listing students failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"students": students,
		"count":    len(students),
	})
}

// Get returns one student by registration number.
func (h *StudentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	regNo := chi.URLParam(r, "regNo")
	student, err := h.store.Students().GetByRegNo(r.Context(), regNo)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "student not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "loading student failed")
		return
	}
	respondJSON(w, http.StatusOK, student)
}
