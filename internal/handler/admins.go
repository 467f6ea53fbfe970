package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/canteenhub/api/internal/enum"
	"github.com/canteenhub/api/internal/store"
	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
)

// AdminStore defines the database methods needed by admin handlers.
// Satisfied by *store.Queries; narrow interface for testability.
type AdminStore interface {
	ListAdmins(ctx context.Context) ([]store.Admin, error)
	CreateAdmin(ctx context.Context, arg store.CreateAdminParams) (store.Admin, error)
	UpdateAdminRole(ctx context.Context, arg store.UpdateAdminRoleParams) (int64, error)
	DeleteAdmin(ctx context.Context, id int64) (int64, error)
}

// AdminHandler handles admin account CRUD endpoints.
type AdminHandler struct {
	store AdminStore
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(store AdminStore) *AdminHandler {
	return &AdminHandler{store: store}
}

// RegisterRoutes registers admin CRUD endpoints on the given Chi router.
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request types ---

type createAdminRequest struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	BranchID  *int64 `json:"branch_id"`
	CanteenID *int64 `json:"canteen_id"`
}

type updateAdminRequest struct {
	Role      string `json:"role"`
	BranchID  *int64 `json:"branch_id"`
	CanteenID *int64 `json:"canteen_id"`
}

// --- Handlers ---

// List returns every admin account, never including password material.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	admins, err := h.store.ListAdmins(r.Context())
	if err != nil {
		log.Printf("ERROR: list admins: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
		return
	}

	resp := make([]adminResponse, len(admins))
	for i, a := range admins {
		resp[i] = toAdminResponse(a)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create adds an admin account. The role decides which scope column may
// be set; the other is always stored NULL.
func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}

	if req.UserID == "" || req.Username == "" || req.Password == "" || req.Role == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "user_id, username, password, and role are required"})
		return
	}
	if !validRole(req.Role) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid role"})
		return
	}
	if req.Role == enum.RoleBranchAdmin && req.BranchID == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "branch_id is required for branch_admin"})
		return
	}
	if req.Role == enum.RoleCanteenAdmin && req.CanteenID == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "canteen_id is required for canteen_admin"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("ERROR: hash password: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
		return
	}

	var branchID, canteenID *int64
	if req.Role == enum.RoleBranchAdmin {
		branchID = req.BranchID
	}
	if req.Role == enum.RoleCanteenAdmin {
		canteenID = req.CanteenID
	}

	admin, err := h.store.CreateAdmin(r.Context(), store.CreateAdminParams{
		UserID:       req.UserID,
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         req.Role,
		BranchID:     branchID,
		CanteenID:    canteenID,
	})
	if err != nil {
		log.Printf("ERROR: create admin: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toAdminResponse(admin))
}

// Update re-points an admin's role and scope. Whatever scope the new
// role does not use is nulled.
func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid admin ID"})
		return
	}

	var req updateAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}

	if !validRole(req.Role) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid role"})
		return
	}

	var branchID, canteenID *int64
	if req.Role == enum.RoleBranchAdmin {
		branchID = req.BranchID
	}
	if req.Role == enum.RoleCanteenAdmin {
		canteenID = req.CanteenID
	}

	affected, err := h.store.UpdateAdminRole(r.Context(), store.UpdateAdminRoleParams{
		ID:        id,
		Role:      req.Role,
		BranchID:  branchID,
		CanteenID: canteenID,
	})
	if err != nil {
		log.Printf("ERROR: update admin: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
		return
	}
	if affected == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Admin not found"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":         id,
		"role":       req.Role,
		"branch_id":  branchID,
		"canteen_id": canteenID,
	})
}

// Delete removes an admin account.
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid admin ID"})
		return
	}

	affected, err := h.store.DeleteAdmin(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: delete admin: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
		return
	}
	if affected == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Admin not found"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func validRole(role string) bool {
	for _, r := range enum.Roles {
		if role == r {
			return true
		}
	}
	return false
}
