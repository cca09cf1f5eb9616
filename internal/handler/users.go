package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Dan9191/daily-learning/internal/service"
	"github.com/gorilla/mux"
)

type createUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type favoriteRequest struct {
	TopicID string `json:"topicId"`
}

type favoritesResponse struct {
	Message        string   `json:"message"`
	FavoriteTopics []string `json:"favoriteTopics"`
}

// ListUsers returns all users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		h.writeError(w, r, err, "Error fetching users")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// GetUser returns a user's profile
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	profile, err := h.svc.GetUser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err, "Error fetching user")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// CreateUser handles user registration
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "Invalid request body")
		return
	}
	session, err := h.svc.CreateUser(r.Context(), service.UserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(w, r, err, "Error creating user")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"user": session.User, "token": session.Token})
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "Invalid request body")
		return
	}
	session, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": session.Token, "userId": session.User.ID})
}

// UpdateUser changes the caller's own name, email or password
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !h.requireSelf(w, r, id) {
		return
	}
	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "Invalid request body")
		return
	}
	user, err := h.svc.UpdateUser(r.Context(), id, service.UserPatch{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(w, r, err, "Error updating user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// DeleteUser removes the caller's own account
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !h.requireSelf(w, r, id) {
		return
	}
	if err := h.svc.DeleteUser(r.Context(), id); err != nil {
		h.writeError(w, r, err, "Error deleting user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addFavorite(w http.ResponseWriter, r *http.Request, userID, topicID string) {
	if !h.requireSelf(w, r, userID) {
		return
	}
	favorites, err := h.svc.AddFavorite(r.Context(), userID, topicID)
	if err != nil {
		h.writeError(w, r, err, "Error adding favorite topic")
		return
	}
	writeJSON(w, http.StatusOK, favoritesResponse{
		Message:        "Favorite topic added successfully",
		FavoriteTopics: favorites,
	})
}

// AddFavorite favorites the topic named in the body
func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	var req favoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "Invalid request body")
		return
	}
	h.addFavorite(w, r, mux.Vars(r)["id"], req.TopicID)
}

// AddFavoriteByPath favorites the topic named in the path
func (h *Handler) AddFavoriteByPath(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	h.addFavorite(w, r, vars["id"], vars["topicId"])
}

// RemoveFavorite unfavorites a topic
func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if !h.requireSelf(w, r, vars["id"]) {
		return
	}
	favorites, err := h.svc.RemoveFavorite(r.Context(), vars["id"], vars["topicId"])
	if err != nil {
		h.writeError(w, r, err, "Error removing favorite topic")
		return
	}
	writeJSON(w, http.StatusOK, favoritesResponse{
		Message:        "Favorite topic removed successfully",
		FavoriteTopics: favorites,
	})
}

// ListFavorites returns the full favorite topics of a user
func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	topics, err := h.svc.ListFavorites(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err, "Error fetching favorite topics")
		return
	}
	writeJSON(w, http.StatusOK, topics)
}

// DailyDraw hands the caller their random topic of the day
func (h *Handler) DailyDraw(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !h.requireSelf(w, r, id) {
		return
	}
	result, err := h.svc.DailyDraw(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err, "Error processing request")
		return
	}
	if result.LimitReached {
		writeJSON(w, http.StatusOK, map[string]any{
			"message":      "You have reached your daily limit. Come back tomorrow for more!",
			"limitReached": true,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Daily topic retrieved successfully",
		"topic":   result.Topic,
	})
}
