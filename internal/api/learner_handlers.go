package api

import (
	"net/http"
	"time"
)

type upsertLearnerRequest struct {
	DisplayName string `json:"display_name" validate:"required"`
}

func (s *Server) handleUpsertLearner(w http.ResponseWriter, r *http.Request) {
	var req upsertLearnerRequest
	if err := decodeAndValidate(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	learner, err := s.LearnerService.Upsert(r.Context(), req.DisplayName)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, learner)
}

func (s *Server) handleGetLearner(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, learnerFromContext(r.Context()))
}

func (s *Server) handleLearnerStats(w http.ResponseWriter, r *http.Request) {
	learner := learnerFromContext(r.Context())

	stats, err := s.LearnerService.Stats(r.Context(), learner.ID, time.Now(), s.DueSoonDays)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
