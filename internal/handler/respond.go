package handler

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/mirrorhours/mirror-api/internal/apperrors"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy onto HTTP statuses and the
// {message, error} response shape. Causes go into the error field;
// stack traces and credentials never leave the process.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		h.log.Errorf("Unclassified error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
		return
	}

	body := map[string]string{"message": appErr.Message}
	if cause := appErr.Unwrap(); cause != nil {
		body["error"] = cause.Error()
	}
	writeJSON(w, statusFor(appErr.Kind), body)
}

func statusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindValidation, apperrors.KindConflict:
		return http.StatusBadRequest
	case apperrors.KindAuth:
		return http.StatusUnauthorized
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindUpstream:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON parses a request body declared as JSON. Any other media
// type is rejected, whatever the body happens to contain.
func decodeJSON(r *http.Request, dst interface{}) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return errors.New("content type must be application/json")
	}
	return json.NewDecoder(r.Body).Decode(dst)
}
