package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/akraiem/attendance-tracker/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	recordsHandler := handlers.NewRecordsHandler(s.store)
	reportsHandler := handlers.NewReportsHandler(s.store)
	studentsHandler := handlers.NewStudentsHandler(s.store)

	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Attendance log
		r.Get("/records", recordsHandler.List)
		r.Put("/records", recordsHandler.Save)
		r.Get("/records/{id}", recordsHandler.Get)
		r.Post("/records/{id}/toggle", recordsHandler.Toggle)

		// Reports
		r.Get("/summary", reportsHandler.Summary)
		r.Get("/charts", reportsHandler.Charts)
		r.Get("/export", reportsHandler.Export)
		r.Post("/absentees", reportsHandler.MarkAbsentees)

		// Registry
		r.Get("/students", studentsHandler.List)
		r.Get("/students/{regNo}", studentsHandler.Get)
	})
}
