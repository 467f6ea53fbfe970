package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/canteenhub/api/internal/money"
	"github.com/canteenhub/api/internal/store"
	"github.com/go-chi/chi/v5"
)

// MenuStore defines the database methods needed by menu handlers.
type MenuStore interface {
	ListMenuItems(ctx context.Context, filter store.MenuItemFilter) ([]store.MenuItem, error)
	CreateMenuItem(ctx context.Context, arg store.CreateMenuItemParams) (store.MenuItem, error)
	UpdateMenuItem(ctx context.Context, arg store.UpdateMenuItemParams) (int64, error)
	DeleteMenuItem(ctx context.Context, id int64) (int64, error)
}

// MenuHandler handles menu item endpoints.
type MenuHandler struct {
	store MenuStore
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(store MenuStore) *MenuHandler {
	return &MenuHandler{store: store}
}

// RegisterRoutes registers the mutation endpoints on the given Chi
// router. GET /menus is public and registered separately.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

type menuItemRequest struct {
	Name      string `json:"name"`
	Price     string `json:"price"`
	Photo     string `json:"photo"`
	IsActive  *bool  `json:"is_active"`
	CanteenID *int64 `json:"canteen_id"`
}

// List returns menu items, filtered by ?canteen_id= or ?branch_id=.
// A canteen filter wins when both are supplied.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter store.MenuItemFilter
	if raw := r.URL.Query().Get("canteen_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid canteen_id"})
			return
		}
		filter.CanteenID = &id
	}
	if raw := r.URL.Query().Get("branch_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid branch_id"})
			return
		}
		filter.BranchID = &id
	}

	items, err := h.store.ListMenuItems(r.Context(), filter)
	if err != nil {
		log.Printf("ERROR: list menu items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Create adds a menu item. The price keeps its currency symbol and is
// normalized to two decimal places.
func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}
	if req.Name == "" || req.Price == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "name and price are required"})
		return
	}
	if req.CanteenID == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "canteen_id is required"})
		return
	}

	price, err := money.Normalize(req.Price)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid price"})
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	item, err := h.store.CreateMenuItem(r.Context(), store.CreateMenuItemParams{
		Name:      req.Name,
		Price:     price,
		Photo:     req.Photo,
		IsActive:  isActive,
		CanteenID: *req.CanteenID,
	})
	if err != nil {
		log.Printf("ERROR: create menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// Update replaces a menu item's fields.
func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid menu item ID"})
		return
	}

	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}
	if req.Name == "" || req.Price == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "name and price are required"})
		return
	}

	price, err := money.Normalize(req.Price)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid price"})
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	affected, err := h.store.UpdateMenuItem(r.Context(), store.UpdateMenuItemParams{
		ID:       id,
		Name:     req.Name,
		Price:    price,
		Photo:    req.Photo,
		IsActive: isActive,
	})
	if err != nil {
		log.Printf("ERROR: update menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
		return
	}
	if affected == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Menu item not found"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":        id,
		"name":      req.Name,
		"price":     price,
		"photo":     req.Photo,
		"is_active": isActive,
	})
}

// Delete removes a menu item.
func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid menu item ID"})
		return
	}

	affected, err := h.store.DeleteMenuItem(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: delete menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
		return
	}
	if affected == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Menu item not found"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
