package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lucasreis/reviewdeck/internal/apperr"
	"github.com/lucasreis/reviewdeck/internal/models"
	"github.com/lucasreis/reviewdeck/internal/review"
)

// questionView is what the learner sees while answering. The canonical
// answer is withheld until the answer is graded.
type questionView struct {
	ItemID   int64           `json:"item_id"`
	ItemKind models.ItemKind `json:"item_kind"`
	ID       string          `json:"id"`
	Prompt   string          `json:"prompt"`
	Options  []string        `json:"options,omitempty"`
}

type sessionPayload struct {
	SessionID  string        `json:"session_id"`
	Phase      string        `json:"phase"`
	Empty      bool          `json:"empty"`
	TotalItems int           `json:"total_items"`
	Current    *questionView `json:"current,omitempty"`
}

func sessionToPayload(sess *review.Session) sessionPayload {
	p := sessionPayload{
		SessionID:  sess.ID,
		Phase:      sess.Phase().String(),
		Empty:      sess.Empty(),
		TotalItems: len(sess.Items()),
	}
	if item, q, err := sess.Current(); err == nil {
		p.Current = &questionView{
			ItemID:   item.ID,
			ItemKind: item.Kind,
			ID:       q.ID,
			Prompt:   q.Prompt,
			Options:  q.Options,
		}
	}
	return p
}

type startSessionRequest struct {
	ItemIDs     []int64 `json:"item_ids"`
	Granularity string  `json:"granularity" validate:"omitempty,oneof=per_question per_item"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	learner := learnerFromContext(r.Context())

	var req startSessionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	granularity := review.PerQuestion
	if req.Granularity == "per_item" {
		granularity = review.PerItem
	}

	sess, err := s.ReviewService.StartSession(r.Context(), learner.ID, req.ItemIDs, granularity, time.Now())
	if err != nil {
		handleError(w, r, err)
		return
	}
	status := http.StatusCreated
	if sess.Empty() {
		// Nothing due is a normal outcome, not a created session worth
		// driving through the answer flow.
		status = http.StatusOK
	}
	respondJSON(w, status, sessionToPayload(sess))
}

type submitAnswerRequest struct {
	QuestionID       string  `json:"question_id" validate:"required"`
	Text             string  `json:"text"`
	Rating           string  `json:"rating"`
	TimeSpentSeconds float64 `json:"time_spent_seconds"`
}

func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		handleError(w, r, apperr.BadRequest("invalid sessionID"))
		return
	}

	var req submitAnswerRequest
	if err := decodeAndValidate(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	result, err := s.ReviewService.SubmitAnswer(r.Context(), sessionID, req.QuestionID, req.Text, models.Rating(req.Rating), req.TimeSpentSeconds)
	if err != nil {
		handleError(w, r, err)
		return
	}

	// Re-read the session so the response carries the next question to
	// present. The session is only dropped from the registry on finish or
	// abandon, so it still exists here.
	sess, err := s.ReviewService.GetSession(r.Context(), sessionID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"result": result, "session": sessionToPayload(sess)})
}

type rateItemRequest struct {
	Rating string `json:"rating" validate:"required,oneof=easy medium hard"`
}

func (s *Server) handleRateItem(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req rateItemRequest
	if err := decodeAndValidate(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	if err := s.ReviewService.RateItem(r.Context(), sessionID, models.Rating(req.Rating)); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type itemOutcomePayload struct {
	ItemID    int64                  `json:"item_id"`
	Committed bool                   `json:"committed"`
	State     models.SchedulingState `json:"state"`
	Record    *models.SessionRecord  `json:"record,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

func (s *Server) handleFinishSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	outcomes, err := s.ReviewService.FinishSession(r.Context(), sessionID, time.Now())
	if err != nil {
		handleError(w, r, err)
		return
	}

	payload := make([]itemOutcomePayload, 0, len(outcomes))
	allCommitted := true
	for _, o := range outcomes {
		p := itemOutcomePayload{
			ItemID:    o.ItemID,
			Committed: o.Committed(),
			State:     o.State,
			Record:    o.Record,
		}
		if o.Err != nil {
			p.Error = o.Err.Error()
			allCommitted = false
		}
		payload = append(payload, p)
	}

	status := http.StatusOK
	if !allCommitted {
		// Partial success: committed items stay committed, failed ones are
		// reported individually.
		status = http.StatusMultiStatus
	}
	respondJSON(w, status, map[string]any{"outcomes": payload, "committed": allCommitted})
}

func (s *Server) handleAbandonSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := s.ReviewService.AbandonSession(r.Context(), sessionID); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
