package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/canteenhub/api/internal/enum"
	"github.com/canteenhub/api/internal/money"
	"github.com/canteenhub/api/internal/store"
)

// Errors returned by the order service.
var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrStatusRequired = errors.New("status is required")
	ErrInvalidStatus  = errors.New("invalid status")
)

// OrderStore defines the DB methods needed by the order lifecycle.
// Satisfied by *store.Queries (pool- or tx-scoped).
type OrderStore interface {
	CreateOrder(ctx context.Context, arg store.CreateOrderParams) (int64, error)
	FinalizeOrder(ctx context.Context, id int64, orderID, qrCode string) error
	GetOrderByOrderID(ctx context.Context, orderID string) (store.Order, error)
	ListOrders(ctx context.Context, filter store.OrderFilter) ([]store.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID, status string) (int64, error)
	UpdateOrderQR(ctx context.Context, orderID, qrCode string) error
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx), so the
// service can build transaction-scoped store instances.
type NewOrderStore func(db store.DBTX) OrderStore

// OrderDraft is the input for creating an order. OrderID and QRCode are
// optional; when absent they are derived from the surrogate key the
// database assigns. Origin, when set, overrides the configured public
// base URL for deep-link QR payloads.
type OrderDraft struct {
	OrderID      string
	ItemNames    string
	BranchName   string
	CanteenName  string
	EmployeeName string
	TotalAmount  string
	Status       string
	QRCode       string
	Origin       string
}

// OrderView is the client-facing order shape. Field names follow the
// established API contract: the display identifier travels as "id", the
// surrogate key as "db_id".
type OrderView struct {
	ID       string    `json:"id"`
	DBID     int64     `json:"db_id"`
	Item     string    `json:"item"`
	Branch   string    `json:"branch"`
	Canteen  string    `json:"canteen"`
	Employee string    `json:"employee"`
	Total    string    `json:"total"`
	Status   string    `json:"status"`
	Date     time.Time `json:"date"`
	QR       string    `json:"qr"`
}

// OrderService owns display-identifier assignment, QR payload
// synthesis, and status transitions.
type OrderService struct {
	queries  OrderStore
	pool     store.Beginner
	newStore NewOrderStore
	baseURL  string
	qrMode   string
}

// NewOrderService creates a new OrderService. qrMode is enum.QRModeURL
// or enum.QRModeText.
func NewOrderService(queries OrderStore, pool store.Beginner, newStore NewOrderStore, baseURL, qrMode string) *OrderService {
	return &OrderService{
		queries:  queries,
		pool:     pool,
		newStore: newStore,
		baseURL:  baseURL,
		qrMode:   qrMode,
	}
}

// Create inserts an order and finalizes its display identifier and QR
// payload in a single transaction. A caller-supplied identifier or
// payload is used as-is; anything missing is derived from the surrogate
// key the insert produces, so the placeholder row is never observable.
func (s *OrderService) Create(ctx context.Context, draft OrderDraft) (OrderView, error) {
	status := draft.Status
	if status == "" {
		status = enum.OrderStatusPending
	}
	if !validStatus(status) {
		return OrderView{}, ErrInvalidStatus
	}

	// Normalize the total when it parses as money; pass through otherwise.
	total := draft.TotalAmount
	if normalized, err := money.Normalize(total); err == nil {
		total = normalized
	}

	createdAt := time.Now().UTC().Truncate(time.Second)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return OrderView{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	st := s.newStore(tx)

	insertID := draft.OrderID
	if insertID == "" {
		insertID = "0000" // provisional, rewritten below
	}
	var qrCode *string
	if draft.QRCode != "" {
		qrCode = &draft.QRCode
	}

	id, err := st.CreateOrder(ctx, store.CreateOrderParams{
		OrderID:      insertID,
		ItemNames:    draft.ItemNames,
		BranchName:   draft.BranchName,
		CanteenName:  draft.CanteenName,
		EmployeeName: draft.EmployeeName,
		TotalAmount:  total,
		Status:       status,
		CreatedAt:    createdAt,
		QRCode:       qrCode,
	})
	if err != nil {
		return OrderView{}, fmt.Errorf("create order: %w", err)
	}

	finalID := draft.OrderID
	if finalID == "" {
		finalID = fmt.Sprintf("%04d", id)
	}
	finalQR := draft.QRCode
	if finalQR == "" {
		finalQR = s.buildQRPayload(finalID, draft, total, status)
	}

	if draft.OrderID == "" || draft.QRCode == "" {
		if err := st.FinalizeOrder(ctx, id, finalID, finalQR); err != nil {
			return OrderView{}, fmt.Errorf("finalize order: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return OrderView{}, fmt.Errorf("commit tx: %w", err)
	}

	return OrderView{
		ID:       finalID,
		DBID:     id,
		Item:     draft.ItemNames,
		Branch:   draft.BranchName,
		Canteen:  draft.CanteenName,
		Employee: draft.EmployeeName,
		Total:    total,
		Status:   status,
		Date:     createdAt,
		QR:       finalQR,
	}, nil
}

// Lookup resolves a display identifier to its order. The identifier may
// or may not carry the leading "#" marker, so the lookup tries it as
// given and then with the marker toggled, short-circuiting on the first
// match. Matching is string equality only.
func (s *OrderService) Lookup(ctx context.Context, displayID string) (OrderView, error) {
	variants := []string{displayID, toggleMarker(displayID)}
	for i, v := range variants {
		if i > 0 && v == variants[0] {
			continue
		}
		order, err := s.queries.GetOrderByOrderID(ctx, v)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return OrderView{}, fmt.Errorf("get order: %w", err)
		}
		return ToOrderView(order), nil
	}
	return OrderView{}, ErrOrderNotFound
}

// UpdateStatus sets a new status on every row matching the display
// identifier. Terminal states are not enforced here; any valid status
// can replace any other, last write wins. In text QR mode the stored
// payload is regenerated from the updated row before returning.
func (s *OrderService) UpdateStatus(ctx context.Context, displayID, status string) (OrderView, error) {
	if status == "" {
		return OrderView{}, ErrStatusRequired
	}
	if !validStatus(status) {
		return OrderView{}, ErrInvalidStatus
	}

	affected, err := s.queries.UpdateOrderStatus(ctx, displayID, status)
	if err != nil {
		return OrderView{}, fmt.Errorf("update status: %w", err)
	}
	if affected == 0 {
		return OrderView{}, ErrOrderNotFound
	}

	order, err := s.queries.GetOrderByOrderID(ctx, displayID)
	if err != nil {
		return OrderView{}, fmt.Errorf("get updated order: %w", err)
	}

	if s.qrMode == enum.QRModeText {
		payload := textQRPayload(order)
		if err := s.queries.UpdateOrderQR(ctx, displayID, payload); err != nil {
			return OrderView{}, fmt.Errorf("update qr payload: %w", err)
		}
		order.QRCode = &payload
	}

	return ToOrderView(order), nil
}

// List returns orders newest first, optionally filtered by the
// denormalized branch or canteen snapshot name.
func (s *OrderService) List(ctx context.Context, filter store.OrderFilter) ([]OrderView, error) {
	orders, err := s.queries.ListOrders(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	views := make([]OrderView, len(orders))
	for i, o := range orders {
		views[i] = ToOrderView(o)
	}
	return views, nil
}

// ToOrderView maps a stored order row to its client-facing shape.
func ToOrderView(o store.Order) OrderView {
	view := OrderView{
		ID:       o.OrderID,
		DBID:     o.ID,
		Item:     o.ItemNames,
		Branch:   o.BranchName,
		Canteen:  o.CanteenName,
		Employee: o.EmployeeName,
		Total:    o.TotalAmount,
		Status:   o.Status,
		Date:     o.CreatedAt,
	}
	if o.QRCode != nil {
		view.QR = *o.QRCode
	}
	return view
}

// --- Helpers ---

func (s *OrderService) buildQRPayload(displayID string, draft OrderDraft, total, status string) string {
	if s.qrMode == enum.QRModeText {
		return textQRPayload(store.Order{
			OrderID:      displayID,
			ItemNames:    draft.ItemNames,
			BranchName:   draft.BranchName,
			CanteenName:  draft.CanteenName,
			EmployeeName: draft.EmployeeName,
			TotalAmount:  total,
			Status:       status,
		})
	}
	base := draft.Origin
	if base == "" {
		base = s.baseURL
	}
	return strings.TrimSuffix(base, "/") + "/orderdetails?id=" + url.QueryEscape(displayID)
}

// textQRPayload renders the human-readable payload variant: order
// details encoded directly into the scannable code.
func textQRPayload(o store.Order) string {
	return strings.Join([]string{
		"Order " + o.OrderID,
		"Employee: " + o.EmployeeName,
		"Items: " + o.ItemNames,
		"Branch: " + o.BranchName,
		"Canteen: " + o.CanteenName,
		"Total: " + o.TotalAmount,
		"Status: " + o.Status,
	}, "\n")
}

// toggleMarker adds the "#" marker when absent and strips it when
// present, producing the one alternate lookup form.
func toggleMarker(id string) string {
	if strings.HasPrefix(id, "#") {
		return strings.TrimPrefix(id, "#")
	}
	return "#" + id
}

func validStatus(s string) bool {
	for _, status := range enum.OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}
