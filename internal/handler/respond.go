package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/meowrun/platform/internal/auth"
	"github.com/meowrun/platform/internal/domain"
)

// RespondJSON writes a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// RespondError writes a JSON error response, detecting domain.AppError for
// status codes. Anything else is masked as a 500.
func RespondError(w http.ResponseWriter, err error) {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		RespondJSON(w, appErr.Status, map[string]string{
			"code":    appErr.Code,
			"message": appErr.Message,
		})
		return
	}
	RespondJSON(w, http.StatusInternalServerError, map[string]string{
		"code":    "INTERNAL_ERROR",
		"message": "internal server error",
	})
}

// DecodeJSON reads and decodes a JSON request body into dst. Bodies over
// 1 MiB are rejected.
func DecodeJSON(r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20)
	return json.NewDecoder(r.Body).Decode(dst)
}

// RespondBadBody writes the uniform malformed-body error.
func RespondBadBody(w http.ResponseWriter) {
	RespondJSON(w, http.StatusBadRequest, map[string]string{
		"code":    "VALIDATION_ERROR",
		"message": "invalid request body",
	})
}

// accountIDFromContext extracts the authenticated account ID from the auth
// context.
func accountIDFromContext(r *http.Request) (uuid.UUID, error) {
	id := auth.SubjectFromContext(r.Context())
	if id == uuid.Nil {
		return uuid.Nil, domain.ErrUnauthorized("no subject in context")
	}
	return id, nil
}
