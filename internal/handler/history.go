package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mirrorhours/mirror-api/internal/apperrors"
)

type createHistoryRequest struct {
	UserID   int             `json:"userId"`
	Time     string          `json:"time"`
	Type     string          `json:"type"`
	Thoughts *string         `json:"thoughts"`
	Details  json.RawMessage `json:"details"`
}

// CreateHistoryItem handles history item creation
func (h *Handler) CreateHistoryItem(w http.ResponseWriter, r *http.Request) {
	var req createHistoryRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, apperrors.Validation("Request body must be JSON"))
		return
	}

	item, err := h.svc.CreateHistoryItem(r.Context(), req.UserID, req.Time, req.Type, req.Thoughts, req.Details)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "History item created successfully",
		"item":    item,
	})
}

// ListHistory returns a user's items, newest first
func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(mux.Vars(r)["userId"])
	if err != nil {
		h.writeError(w, apperrors.Validation("Invalid user ID"))
		return
	}

	items, err := h.svc.ListHistory(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// DeleteHistoryItem deletes an item by id
func (h *Handler) DeleteHistoryItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.Atoi(mux.Vars(r)["itemId"])
	if err != nil {
		h.writeError(w, apperrors.Validation("Invalid item ID"))
		return
	}

	if err := h.svc.DeleteHistoryItem(r.Context(), itemID); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
