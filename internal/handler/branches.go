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

// BranchStore defines the database methods needed by branch handlers.
type BranchStore interface {
	ListBranches(ctx context.Context) ([]store.Branch, error)
	GetBranch(ctx context.Context, id int64) (store.Branch, error)
	CreateBranch(ctx context.Context, name string) (store.Branch, error)
}

// BranchCascader removes a branch and everything under it.
type BranchCascader interface {
	DeleteBranch(ctx context.Context, id int64) error
}

// BranchHandler handles branch CRUD endpoints.
type BranchHandler struct {
	store   BranchStore
	cascade BranchCascader
}

// NewBranchHandler creates a new BranchHandler.
func NewBranchHandler(store BranchStore, cascade BranchCascader) *BranchHandler {
	return &BranchHandler{store: store, cascade: cascade}
}

// RegisterRoutes registers branch CRUD endpoints on the given Chi router.
func (h *BranchHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Delete("/{id}", h.Delete)
}

type createBranchRequest struct {
	Name string `json:"name"`
}

// List returns all branches.
func (h *BranchHandler) List(w http.ResponseWriter, r *http.Request) {
	branches, err := h.store.ListBranches(r.Context())
	if err != nil {
		log.Printf("ERROR: list branches: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, branches)
}

// Create adds a branch.
func (h *BranchHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBranchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "name is required"})
		return
	}

	branch, err := h.store.CreateBranch(r.Context(), req.Name)
	if err != nil {
		log.Printf("ERROR: create branch: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, branch)
}

// Delete removes a branch along with its canteens, their menu items,
// and any admin assignments pointing at them.
func (h *BranchHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid branch ID"})
		return
	}

	if err := h.cascade.DeleteBranch(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrBranchNotFound) || errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Branch not found"})
			return
		}
		log.Printf("ERROR: delete branch %d: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
