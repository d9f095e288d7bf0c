package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes builds the HTTP router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", s.handleHealth)

	// Learner registration happens before a learner ID exists.
	r.Post("/api/learners", s.handleUpsertLearner)

	r.Group(func(r chi.Router) {
		r.Use(s.learnerMiddleware)

		r.Route("/api/items", func(r chi.Router) {
			r.Get("/", s.handleListItems)
			r.Post("/", s.handleCreateItem)
			r.Get("/due/today", s.handleDueToday)
			r.Get("/due/soon", s.handleDueSoon)
			r.Get("/{itemID}", s.handleGetItem)
			r.Get("/{itemID}/stats", s.handleItemStats)
			r.Post("/{itemID}/deactivate", s.handleDeactivateItem)
		})

		r.Route("/api/sessions", func(r chi.Router) {
			r.Post("/", s.handleStartSession)
			r.Post("/{sessionID}/answers", s.handleSubmitAnswer)
			r.Post("/{sessionID}/rating", s.handleRateItem)
			r.Post("/{sessionID}/finish", s.handleFinishSession)
			r.Delete("/{sessionID}", s.handleAbandonSession)
		})

		r.Route("/api/notes", func(r chi.Router) {
			r.Get("/", s.handleListNotes)
			r.Post("/", s.handleCreateNote)
			r.Get("/{noteID}", s.handleGetNote)
			r.Delete("/{noteID}", s.handleDeleteNote)
		})

		r.Get("/api/learners/me", s.handleGetLearner)
		r.Get("/api/learners/me/stats", s.handleLearnerStats)
	})

	return r
}
