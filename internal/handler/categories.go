package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Dan9191/daily-learning/internal/models"
	"github.com/Dan9191/daily-learning/internal/service"
)

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type bulkCategoriesResponse struct {
	Message           string            `json:"message"`
	CreatedCategories []models.Category `json:"createdCategories"`
	Errors            []string          `json:"errors,omitempty"`
}

// ListCategories returns all categories sorted by name
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.ListCategories(r.Context())
	if err != nil {
		h.writeError(w, r, err, "Error fetching categories")
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// CreateCategory creates a category with a unique name
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "Invalid request body")
		return
	}
	category, err := h.svc.CreateCategory(r.Context(), service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.writeError(w, r, err, "Error creating category")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":  "Category created successfully",
		"category": category,
	})
}

// CreateCategoriesBulk creates many categories, reporting duplicates per item
func (h *Handler) CreateCategoriesBulk(w http.ResponseWriter, r *http.Request) {
	raw, err := decodeArray(r)
	if err != nil {
		h.badRequest(w, "Invalid input. Expected an array of categories.")
		return
	}

	var (
		inputs     []service.CategoryInput
		itemErrors []string
	)
	for i, item := range raw {
		var req categoryRequest
		if err := json.Unmarshal(item, &req); err != nil {
			itemErrors = append(itemErrors, fmt.Sprintf("Category %d: invalid category object", i+1))
			continue
		}
		inputs = append(inputs, service.CategoryInput{Name: req.Name, Description: req.Description})
	}

	result := h.svc.CreateCategoriesBulk(r.Context(), inputs)
	writeJSON(w, http.StatusCreated, bulkCategoriesResponse{
		Message:           "Categories created successfully",
		CreatedCategories: result.Created,
		Errors:            append(itemErrors, result.Errors...),
	})
}
