package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/lucasreis/reviewdeck/internal/apperr"
	"github.com/lucasreis/reviewdeck/internal/services"
)

// Server wires HTTP handlers to the service layer.
type Server struct {
	ReviewService  services.ReviewService
	ItemService    services.ItemService
	NoteService    services.NoteService
	LearnerService services.LearnerService
	DueSoonDays    int
}

var validate = validator.New()

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeAndValidate parses a JSON body into req and runs struct validation.
func decodeAndValidate(r *http.Request, req any) error {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return apperr.BadRequest("invalid JSON body")
	}
	if err := validate.Struct(req); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return apperr.Validation(errs[0].Field(), "failed rule "+errs[0].Tag())
		}
		return apperr.BadRequest("invalid request body")
	}
	return nil
}
