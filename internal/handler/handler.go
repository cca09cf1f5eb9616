package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dan9191/daily-learning/internal/feed"
	"github.com/Dan9191/daily-learning/internal/middleware"
	"github.com/Dan9191/daily-learning/internal/service"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	svc  *service.Service
	feed *feed.Builder
	log  *logrus.Logger
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, feed: feed.NewBuilder(), log: log}
}

// errorResponse is the body of every failed request
type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrNoTopics):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// writeError converts err to the error envelope. Unexpected errors are logged
// and reported with the fallback message and the error detail.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.WithField("request_id", middleware.RequestIDFromContext(r.Context())).
			Errorf("%s: %v", fallback, err)
		writeJSON(w, status, errorResponse{Message: fallback, Error: err.Error()})
		return
	}
	writeJSON(w, status, errorResponse{Message: service.Message(err, fallback)})
}

func (h *Handler) badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Message: message})
}

// callerID returns the authenticated user id, writing 401 when there is none
func (h *Handler) callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "User not authenticated"})
		return "", false
	}
	return userID, true
}

// requireSelf lets the request through only when the caller acts on their own account
func (h *Handler) requireSelf(w http.ResponseWriter, r *http.Request, userID string) bool {
	callerID, ok := h.callerID(w, r)
	if !ok {
		return false
	}
	if callerID != userID {
		writeJSON(w, http.StatusForbidden, errorResponse{Message: "You can only modify your own account"})
		return false
	}
	return true
}

// Health reports that the process is serving
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
