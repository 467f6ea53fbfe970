package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/canteenhub/api/internal/service"
	"github.com/canteenhub/api/internal/store"
	"github.com/go-chi/chi/v5"
)

// CanteenStore defines the database methods needed by canteen handlers.
type CanteenStore interface {
	ListCanteens(ctx context.Context, branchID *int64) ([]store.Canteen, error)
	GetBranch(ctx context.Context, id int64) (store.Branch, error)
	CreateCanteen(ctx context.Context, name string, branchID *int64) (store.Canteen, error)
}

// CanteenCascader removes a canteen and everything under it.
type CanteenCascader interface {
	DeleteCanteen(ctx context.Context, id int64) error
}

// CanteenHandler handles canteen CRUD endpoints.
type CanteenHandler struct {
	store   CanteenStore
	cascade CanteenCascader
}

// NewCanteenHandler creates a new CanteenHandler.
func NewCanteenHandler(store CanteenStore, cascade CanteenCascader) *CanteenHandler {
	return &CanteenHandler{store: store, cascade: cascade}
}

// RegisterRoutes registers canteen CRUD endpoints on the given Chi router.
func (h *CanteenHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Delete("/{id}", h.Delete)
}

type createCanteenRequest struct {
	Name     string `json:"name"`
	BranchID *int64 `json:"branch_id"`
}

// List returns canteens, optionally filtered by ?branch_id=.
func (h *CanteenHandler) List(w http.ResponseWriter, r *http.Request) {
	var branchID *int64
	if raw := r.URL.Query().Get("branch_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid branch_id"})
			return
		}
		branchID = &id
	}

	canteens, err := h.store.ListCanteens(r.Context(), branchID)
	if err != nil {
		log.Printf("ERROR: list canteens: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, canteens)
}

// Create adds a canteen, optionally attached to a branch. A supplied
// branch_id must name an existing branch.
func (h *CanteenHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCanteenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "name is required"})
		return
	}

	if req.BranchID != nil {
		if _, err := h.store.GetBranch(r.Context(), *req.BranchID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Branch not found"})
				return
			}
			log.Printf("ERROR: lookup branch %d: %v", *req.BranchID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
			return
		}
	}

	canteen, err := h.store.CreateCanteen(r.Context(), req.Name, req.BranchID)
	if err != nil {
		log.Printf("ERROR: create canteen: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, canteen)
}

// Delete removes a canteen along with its menu items and any admin
// assignments pointing at it.
func (h *CanteenHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid canteen ID"})
		return
	}

	if err := h.cascade.DeleteCanteen(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrCanteenNotFound) || errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Canteen not found"})
			return
		}
		log.Printf("ERROR: delete canteen %d: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
