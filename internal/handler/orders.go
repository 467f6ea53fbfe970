package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/canteenhub/api/internal/service"
	"github.com/canteenhub/api/internal/store"
	"github.com/go-chi/chi/v5"
)

// OrderLifecycle defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderLifecycle interface {
	Create(ctx context.Context, draft service.OrderDraft) (service.OrderView, error)
	Lookup(ctx context.Context, orderID string) (service.OrderView, error)
	UpdateStatus(ctx context.Context, orderID, status string) (service.OrderView, error)
	List(ctx context.Context, filter store.OrderFilter) ([]service.OrderView, error)
}

// OrderLookupStore resolves branch/canteen IDs into the names orders
// are filtered by.
type OrderLookupStore interface {
	GetBranch(ctx context.Context, id int64) (store.Branch, error)
	GetCanteen(ctx context.Context, id int64) (store.Canteen, error)
}

// OrderBroadcaster pushes order events to live listeners. A nil
// broadcaster disables the feed.
type OrderBroadcaster interface {
	BroadcastOrder(canteenName, eventType string, payload any)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc       OrderLifecycle
	store     OrderLookupStore
	broadcast OrderBroadcaster
	qr        service.QRGenerator
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderLifecycle, store OrderLookupStore, broadcast OrderBroadcaster, qr service.QRGenerator) *OrderHandler {
	return &OrderHandler{svc: svc, store: store, broadcast: broadcast, qr: qr}
}

// RegisterRoutes registers order endpoints on the given Chi router.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{orderId}", h.Get)
	r.Get("/{orderId}/qr.png", h.QRImage)
}

// --- Request types ---

// createOrderRequest accepts both the view vocabulary ("id", "items",
// "branch", ...) and the column names legacy clients post ("order_id",
// "item_names", "branch_name", ...).
type createOrderRequest struct {
	ID           string   `json:"id"`
	OrderID      string   `json:"order_id"`
	Items        []string `json:"items"`
	Item         string   `json:"item"`
	ItemNames    string   `json:"item_names"`
	Branch       string   `json:"branch"`
	BranchName   string   `json:"branch_name"`
	Canteen      string   `json:"canteen"`
	CanteenName  string   `json:"canteen_name"`
	Employee     string   `json:"employee"`
	EmployeeName string   `json:"employee_name"`
	Total        string   `json:"total"`
	TotalAmount  string   `json:"total_amount"`
	Status       string   `json:"status"`
	QRCode       string   `json:"qr_code"`
	QRCodeCamel  string   `json:"qrCode"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// --- Handlers ---

// Create places an order. The identifier and QR payload are generated
// server side when the client omits them.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}

	itemNames := firstNonEmpty(strings.Join(req.Items, ", "), req.Item, req.ItemNames)
	if itemNames == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "items are required"})
		return
	}

	view, err := h.svc.Create(r.Context(), service.OrderDraft{
		OrderID:      firstNonEmpty(req.ID, req.OrderID),
		ItemNames:    itemNames,
		BranchName:   firstNonEmpty(req.Branch, req.BranchName),
		CanteenName:  firstNonEmpty(req.Canteen, req.CanteenName),
		EmployeeName: firstNonEmpty(req.Employee, req.EmployeeName),
		TotalAmount:  firstNonEmpty(req.Total, req.TotalAmount),
		Status:       req.Status,
		QRCode:       firstNonEmpty(req.QRCode, req.QRCodeCamel),
		Origin:       r.Header.Get("Origin"),
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidStatus) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid status"})
			return
		}
		log.Printf("ERROR: create order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
		return
	}

	if h.broadcast != nil {
		h.broadcast.BroadcastOrder(view.Canteen, "order.created", view)
	}

	writeJSON(w, http.StatusCreated, view)
}

// List returns orders newest first, optionally scoped by ?branch_id=
// or ?canteen_id=. Unknown scope IDs yield an empty list.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter store.OrderFilter

	if raw := r.URL.Query().Get("branch_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid branch_id"})
			return
		}
		branch, err := h.store.GetBranch(r.Context(), id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				writeJSON(w, http.StatusOK, []service.OrderView{})
				return
			}
			log.Printf("ERROR: lookup branch %d: %v", id, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
			return
		}
		filter.BranchName = &branch.Name
	}

	if raw := r.URL.Query().Get("canteen_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid canteen_id"})
			return
		}
		canteen, err := h.store.GetCanteen(r.Context(), id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				writeJSON(w, http.StatusOK, []service.OrderView{})
				return
			}
			log.Printf("ERROR: lookup canteen %d: %v", id, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
			return
		}
		filter.CanteenName = &canteen.Name
	}

	views, err := h.svc.List(r.Context(), filter)
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
		return
	}
	if views == nil {
		views = []service.OrderView{}
	}
	writeJSON(w, http.StatusOK, views)
}

// Get looks up one order by its display identifier, trying the
// marker-toggled form when the exact one misses.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	view, err := h.svc.Lookup(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Order not found"})
			return
		}
		log.Printf("ERROR: lookup order %s: %v", orderID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// UpdateStatus moves an order to a new status and pushes the change to
// live listeners.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	var req updateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}

	view, err := h.svc.UpdateStatus(r.Context(), orderID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStatusRequired):
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Status is required"})
		case errors.Is(err, service.ErrInvalidStatus):
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid status"})
		case errors.Is(err, service.ErrOrderNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Order not found"})
		default:
			log.Printf("ERROR: update order %s status: %v", orderID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
		}
		return
	}

	if h.broadcast != nil {
		h.broadcast.BroadcastOrder(view.Canteen, "order.status_updated", view)
	}

	writeJSON(w, http.StatusOK, view)
}

// QRImage renders the order's QR payload as a PNG.
func (h *OrderHandler) QRImage(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	view, err := h.svc.Lookup(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Order not found"})
			return
		}
		log.Printf("ERROR: lookup order %s: %v", orderID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
		return
	}

	if view.QR == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Order has no QR payload"})
		return
	}

	png, err := h.qr.Generate(view.QR)
	if err != nil {
		log.Printf("ERROR: render QR for order %s: %v", orderID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		log.Printf("ERROR: write QR image: %v", err)
	}
}
