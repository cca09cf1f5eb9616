package handler

import (
	"net/http"

	"github.com/Dan9191/daily-learning/internal/config"
	"github.com/Dan9191/daily-learning/internal/middleware"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// NewRouter wires every route of the API behind CORS handling.
// Preflight requests are answered before route matching.
func NewRouter(h *Handler, cfg *config.Config, logger *logrus.Logger) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger(logger))

	authMW := middleware.AuthMiddleware(cfg)
	protected := func(f http.HandlerFunc) http.Handler {
		return authMW(f)
	}

	r.HandleFunc("/health", h.Health).Methods("GET")

	// Topics
	r.HandleFunc("/api/topics/feed", h.TopicFeed).Methods("GET")
	r.Handle("/api/topics/daily", protected(h.GetDailyTopic)).Methods("GET")
	r.Handle("/api/topics/bulk", protected(h.CreateTopicsBulk)).Methods("POST")
	r.Handle("/api/topics/user", protected(h.GetUserTopics)).Methods("GET")
	r.Handle("/api/topics/{topicId}/read", protected(h.MarkTopicRead)).Methods("POST")
	r.Handle("/api/topics", protected(h.CreateTopic)).Methods("POST")
	r.Handle("/api/topics", protected(h.ListTopics)).Methods("GET")

	// Users
	r.HandleFunc("/api/users", h.ListUsers).Methods("GET")
	r.HandleFunc("/api/users", h.CreateUser).Methods("POST")
	r.HandleFunc("/api/users/login", h.Login).Methods("POST")
	r.HandleFunc("/api/users/{id}", h.GetUser).Methods("GET")
	r.Handle("/api/users/{id}", protected(h.UpdateUser)).Methods("PUT")
	r.Handle("/api/users/{id}", protected(h.DeleteUser)).Methods("DELETE")
	r.Handle("/api/users/{id}/favorites/{topicId}", protected(h.AddFavoriteByPath)).Methods("POST")
	r.Handle("/api/users/{id}/favorites/{topicId}", protected(h.RemoveFavorite)).Methods("DELETE")
	r.Handle("/api/users/{id}/read-topic", protected(h.DailyDraw)).Methods("POST")
	r.Handle("/api/users/{id}/favorites", protected(h.AddFavorite)).Methods("POST")
	r.Handle("/api/users/{id}/favorites", protected(h.ListFavorites)).Methods("GET")

	// Categories
	r.HandleFunc("/api/categories", h.ListCategories).Methods("GET")
	r.Handle("/api/categories", protected(h.CreateCategory)).Methods("POST")
	r.Handle("/api/categories/bulk", protected(h.CreateCategoriesBulk)).Methods("POST")

	cors := handlers.CORS(
		handlers.AllowedOrigins(cfg.CORSOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)
	return cors(r)
}
