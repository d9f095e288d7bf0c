package api

import (
	"net/http"
	"time"

	"github.com/lucasreis/reviewdeck/internal/models"
)

type createNoteRequest struct {
	Filename string   `json:"filename" validate:"required"`
	Content  string   `json:"content" validate:"required"`
	FileType string   `json:"file_type" validate:"omitempty,oneof=pdf txt md text"`
	Tags     []string `json:"tags"`
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	learner := learnerFromContext(r.Context())

	var req createNoteRequest
	if err := decodeAndValidate(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	note := models.Note{
		LearnerID:  learner.ID,
		Filename:   req.Filename,
		Content:    req.Content,
		FileType:   req.FileType,
		FileSize:   int64(len(req.Content)),
		Tags:       req.Tags,
		UploadedAt: time.Now(),
	}

	created, err := s.NoteService.Create(r.Context(), note)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	learner := learnerFromContext(r.Context())

	notes, err := s.NoteService.List(r.Context(), learner.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"notes": notes, "count": len(notes)})
}

func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	learner := learnerFromContext(r.Context())
	id, err := parseIDParam(r, "noteID")
	if err != nil {
		handleError(w, r, err)
		return
	}

	note, err := s.NoteService.Get(r.Context(), id, learner.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, note)
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	learner := learnerFromContext(r.Context())
	id, err := parseIDParam(r, "noteID")
	if err != nil {
		handleError(w, r, err)
		return
	}

	if err := s.NoteService.Delete(r.Context(), id, learner.ID); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
