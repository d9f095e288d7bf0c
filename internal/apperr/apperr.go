package apperr

import "fmt"

// Error codes
const (
	CodeNotFound    = "NOT_FOUND"
	CodeValidation  = "VALIDATION_ERROR"
	CodeConflict    = "CONFLICT"
	CodePersistence = "PERSISTENCE_ERROR"
	CodeBadRequest  = "BAD_REQUEST"
	CodeInternal    = "INTERNAL_ERROR"
)

// Error is an application error carrying a machine code and HTTP status.
type Error struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound reports an unresolvable resource id.
func NotFound(resource string, id any) *Error {
	return &Error{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  404,
	}
}

// Validation reports rejected input; no state has been mutated.
func Validation(field, reason string) *Error {
	return &Error{
		Code:    CodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  400,
	}
}

// Conflict reports a version-check failure during a session commit. The
// caller may reload the item and retry.
func Conflict(resource string, id any) *Error {
	return &Error{
		Code:    CodeConflict,
		Message: fmt.Sprintf("concurrent update on %s %v", resource, id),
		Status:  409,
	}
}

// Persistence reports a store failure for a single item; other items in the
// same batch are unaffected.
func Persistence(err error) *Error {
	return &Error{
		Code:    CodePersistence,
		Message: "storage unavailable",
		Status:  502,
		Err:     err,
	}
}

// BadRequest reports a malformed request.
func BadRequest(message string) *Error {
	return &Error{
		Code:    CodeBadRequest,
		Message: message,
		Status:  400,
	}
}

// Internal wraps an unexpected error.
func Internal(err error) *Error {
	return &Error{
		Code:    CodeInternal,
		Message: "internal server error",
		Status:  500,
		Err:     err,
	}
}
