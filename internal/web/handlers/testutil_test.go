package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/akraiem/attendance-tracker/internal/store"
	"github.com/akraiem/attendance-tracker/internal/store/mock"
)

// requestWithChiParams creates a request with chi URL parameters.
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 2, 9, 15, 0, 0, time.UTC)
}

// seededStore returns a mock store with three students and a day of
// attendance on 2026-03-02.
func seededStore(t *testing.T) *mock.Store {
	t.Helper()
	ctx := context.Background()
	st := mock.New()

	for _, s := range []store.Student{
		{FullName: "amal omar khalid", RegNo: "2021001", FolderName: "amal_omar_khalid_2021001", RegistrationDate: "2026-01-01"},
		{FullName: "sara ali hassan", RegNo: "2021002", FolderName: "sara_ali_hassan_2021002", RegistrationDate: "2026-01-01"},
		{FullName: "omar said nasser", RegNo: "2021003", FolderName: "omar_said_nasser_2021003", RegistrationDate: "2026-01-01"},
	} {
		if err := st.Students().Upsert(ctx, s, 1); err != nil {
			t.Fatalf("seeding students: %v", err)
		}
	}

	for _, r := range []store.Record{
		{FullName: "amal omar khalid", RegNo: "2021001", Date: "2026-03-02", Time: "09:00:00", Status: store.StatusPresent},
		{FullName: "sara ali hassan", RegNo: "2021002", Date: "2026-03-02", Time: "09:30:00", Status: store.StatusPresent},
	} {
		if _, err := st.Attendance().Insert(ctx, r); err != nil {
			t.Fatalf("seeding records: %v", err)
		}
	}
	return st
}
