package handler

import (
	"net/http"

	"github.com/mirrorhours/mirror-api/internal/apperrors"
)

type analyzeRequest struct {
	Time     string `json:"time"`
	Message  string `json:"message"`
	Language string `json:"language"`
}

// Analyze forwards a time/message pair to the completion provider and
// returns the interpretation text.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, apperrors.Validation("Request body must be JSON"))
		return
	}

	analysis, err := h.interpreter.Analyze(r.Context(), req.Time, req.Message, req.Language)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"analysis": analysis})
}
