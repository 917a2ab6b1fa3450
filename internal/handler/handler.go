package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/mirrorhours/mirror-api/internal/llm"
	"github.com/mirrorhours/mirror-api/internal/service"
)

type Handler struct {
	svc         *service.Service
	interpreter *llm.Interpreter
	log         *logrus.Logger
}

func NewHandler(svc *service.Service, interpreter *llm.Interpreter, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, interpreter: interpreter, log: log}
}

// Router wires the full API surface.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/api/users/register", h.Register).Methods("POST")
	r.HandleFunc("/api/users/login", h.Login).Methods("POST")
	r.HandleFunc("/api/history/", h.CreateHistoryItem).Methods("POST")
	r.HandleFunc("/api/history/{userId:[0-9]+}", h.ListHistory).Methods("GET")
	r.HandleFunc("/api/history/{itemId:[0-9]+}", h.DeleteHistoryItem).Methods("DELETE")
	// Both forms, with and without the trailing slash
	r.HandleFunc("/api/analyze", h.Analyze).Methods("POST")
	r.HandleFunc("/api/analyze/", h.Analyze).Methods("POST")
	return r
}

// Health reports process liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
