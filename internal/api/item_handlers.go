package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lucasreis/reviewdeck/internal/apperr"
	"github.com/lucasreis/reviewdeck/internal/models"
)

func parseIDParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.BadRequest("invalid " + name)
	}
	return id, nil
}

type createItemRequest struct {
	NoteID    int64  `json:"note_id"`
	Kind      string `json:"kind" validate:"required"`
	Questions []struct {
		ID      string   `json:"id"`
		Prompt  string   `json:"prompt" validate:"required"`
		Options []string `json:"options"`
		Answer  string   `json:"answer" validate:"required"`
	} `json:"questions" validate:"required,min=1"`
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	learner := learnerFromContext(r.Context())

	var req createItemRequest
	if err := decodeAndValidate(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	item := models.ReviewItem{
		LearnerID: learner.ID,
		NoteID:    req.NoteID,
		Kind:      models.ItemKind(req.Kind),
	}
	for _, q := range req.Questions {
		item.Questions = append(item.Questions, models.Question{
			ID:      q.ID,
			Prompt:  q.Prompt,
			Options: q.Options,
			Answer:  q.Answer,
		})
	}

	created, err := s.ItemService.Create(r.Context(), item, time.Now())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	learner := learnerFromContext(r.Context())

	q := r.URL.Query()
	filter := models.ItemFilter{
		Kind:          models.ItemKind(q.Get("kind")),
		IncludeHidden: q.Get("include_hidden") == "true",
	}
	if raw := q.Get("note_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			handleError(w, r, apperr.BadRequest("invalid note_id"))
			return
		}
		filter.NoteID = id
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			handleError(w, r, apperr.BadRequest("invalid limit"))
			return
		}
		filter.Limit = n
	}
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			handleError(w, r, apperr.BadRequest("invalid offset"))
			return
		}
		filter.Offset = n
	}

	items, err := s.ItemService.List(r.Context(), learner.ID, filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	learner := learnerFromContext(r.Context())
	id, err := parseIDParam(r, "itemID")
	if err != nil {
		handleError(w, r, err)
		return
	}

	item, err := s.ItemService.Get(r.Context(), id, learner.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

func (s *Server) handleDueToday(w http.ResponseWriter, r *http.Request) {
	s.respondDueSet(w, r, 0)
}

func (s *Server) handleDueSoon(w http.ResponseWriter, r *http.Request) {
	s.respondDueSet(w, r, s.DueSoonDays)
}

func (s *Server) respondDueSet(w http.ResponseWriter, r *http.Request, horizonDays int) {
	learner := learnerFromContext(r.Context())

	var minGap time.Duration
	if raw := r.URL.Query().Get("min_gap_minutes"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			handleError(w, r, apperr.BadRequest("invalid min_gap_minutes"))
			return
		}
		minGap = time.Duration(n) * time.Minute
	}

	items, err := s.ReviewService.DueSet(r.Context(), learner.ID, time.Now(), horizonDays, minGap)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

func (s *Server) handleDeactivateItem(w http.ResponseWriter, r *http.Request) {
	learner := learnerFromContext(r.Context())
	id, err := parseIDParam(r, "itemID")
	if err != nil {
		handleError(w, r, err)
		return
	}

	if err := s.ItemService.Deactivate(r.Context(), id, learner.ID); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleItemStats(w http.ResponseWriter, r *http.Request) {
	learner := learnerFromContext(r.Context())
	id, err := parseIDParam(r, "itemID")
	if err != nil {
		handleError(w, r, err)
		return
	}

	stats, err := s.ItemService.Stats(r.Context(), id, learner.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
