package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Dan9191/daily-learning/internal/feed"
	"github.com/Dan9191/daily-learning/internal/models"
	"github.com/Dan9191/daily-learning/internal/service"
	"github.com/gorilla/mux"
)

const maxTopicLimit = 100

type topicRequest struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	CategoryID string `json:"categoryId"`
	// Category is accepted as an alias of CategoryID in bulk payloads
	Category string `json:"category"`
}

func (req topicRequest) input() service.TopicInput {
	categoryID := req.CategoryID
	if categoryID == "" {
		categoryID = req.Category
	}
	return service.TopicInput{Title: req.Title, Content: req.Content, CategoryID: categoryID}
}

// decodeArray reads a JSON array body, keeping every element raw so a
// malformed element only fails itself.
func decodeArray(r *http.Request) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		return nil, err
	}
	if items == nil {
		return nil, fmt.Errorf("body is not an array")
	}
	return items, nil
}

// GetDailyTopic returns the most recent topic
func (h *Handler) GetDailyTopic(w http.ResponseWriter, r *http.Request) {
	topic, err := h.svc.GetDailyTopic(r.Context())
	if err != nil {
		h.writeError(w, r, err, "Error fetching daily topic")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"topic": topic})
}

// CreateTopic creates a topic owned by the caller
func (h *Handler) CreateTopic(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}
	var req topicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "Invalid request body")
		return
	}

	topic, err := h.svc.CreateTopic(r.Context(), req.input(), userID)
	if err != nil {
		h.writeError(w, r, err, "Error creating topic")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Topic created successfully",
		"topic":   topic,
	})
}

type bulkTopicsResponse struct {
	Message       string         `json:"message"`
	CreatedTopics []models.Topic `json:"createdTopics"`
	Errors        []string       `json:"errors,omitempty"`
}

// CreateTopicsBulk creates many topics owned by the caller
func (h *Handler) CreateTopicsBulk(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}
	raw, err := decodeArray(r)
	if err != nil {
		h.badRequest(w, "Input should be an array of topics")
		return
	}

	var (
		inputs     []service.TopicInput
		itemErrors []string
	)
	for i, item := range raw {
		var req topicRequest
		if err := json.Unmarshal(item, &req); err != nil {
			itemErrors = append(itemErrors, fmt.Sprintf("Topic %d: invalid topic object", i+1))
			continue
		}
		inputs = append(inputs, req.input())
	}

	result := h.svc.CreateTopicsBulk(r.Context(), inputs, userID)
	writeJSON(w, http.StatusCreated, bulkTopicsResponse{
		Message:       "Topics created successfully",
		CreatedTopics: result.Created,
		Errors:        append(itemErrors, result.Errors...),
	})
}

// MarkTopicRead credits the caller with reading a topic
func (h *Handler) MarkTopicRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}
	if err := h.svc.MarkRead(r.Context(), userID, mux.Vars(r)["topicId"]); err != nil {
		h.writeError(w, r, err, "Error marking topic as read")
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Topic marked as read successfully"})
}

// GetUserTopics returns the topics created by the caller
func (h *Handler) GetUserTopics(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}
	topics, err := h.svc.TopicsByCreator(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err, "Error fetching user topics")
		return
	}
	writeJSON(w, http.StatusOK, topics)
}

// topicLimit reads ?limit=, writing 400 when it is out of range
func (h *Handler) topicLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return service.DefaultTopicLimit, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > maxTopicLimit {
		h.badRequest(w, fmt.Sprintf("limit must be between 1 and %d", maxTopicLimit))
		return 0, false
	}
	return n, true
}

// ListTopics returns the latest topics, 10 unless ?limit= says otherwise
func (h *Handler) ListTopics(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.topicLimit(w, r)
	if !ok {
		return
	}
	topics, err := h.svc.ListTopics(r.Context(), limit)
	if err != nil {
		h.writeError(w, r, err, "Error fetching topics")
		return
	}
	writeJSON(w, http.StatusOK, topics)
}

// TopicFeed serves the latest topics as RSS
func (h *Handler) TopicFeed(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.topicLimit(w, r)
	if !ok {
		return
	}
	topics, err := h.svc.ListTopics(r.Context(), limit)
	if err != nil {
		h.writeError(w, r, err, "Error fetching topics")
		return
	}
	body, err := h.feed.Build(topics)
	if err != nil {
		h.writeError(w, r, err, "Error building feed")
		return
	}
	w.Header().Set("Content-Type", feed.ContentType)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
