package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/akraiem/attendance-tracker/internal/config"
	"github.com/akraiem/attendance-tracker/internal/store/mock"
)

func TestRoutesAreWired(t *testing.T) {
	s := NewServer(&config.WebConfig{Host: "127.0.0.1", Port: 8080}, mock.New())

	paths := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/api/v1/health", http.StatusOK},
		{http.MethodGet, "/api/v1/records", http.StatusOK},
		{http.MethodGet, "/api/v1/summary", http.StatusOK},
		{http.MethodGet, "/api/v1/charts", http.StatusOK},
		{http.MethodGet, "/api/v1/export", http.StatusOK},
		{http.MethodGet, "/api/v1/students", http.StatusOK},
		{http.MethodPost, "/api/v1/absentees", http.StatusOK},
		{http.MethodGet, "/api/v1/nope", http.StatusNotFound},
	}
	for _, tc := range paths {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, req)
		if rec.Code != tc.status {
			t.Errorf("%s %s = %d, want %d", tc.method, tc.path, rec.Code, tc.status)
		}
	}
}
