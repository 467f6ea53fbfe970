package handler_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/canteenhub/api/internal/handler"
	"github.com/canteenhub/api/internal/service"
	"github.com/canteenhub/api/internal/store"
	"github.com/go-chi/chi/v5"
)

// --- Mocks ---

type mockOrderLifecycle struct {
	createFn       func(ctx context.Context, draft service.OrderDraft) (service.OrderView, error)
	lookupFn       func(ctx context.Context, orderID string) (service.OrderView, error)
	updateStatusFn func(ctx context.Context, orderID, status string) (service.OrderView, error)
	listFn         func(ctx context.Context, filter store.OrderFilter) ([]service.OrderView, error)
}

func (m *mockOrderLifecycle) Create(ctx context.Context, draft service.OrderDraft) (service.OrderView, error) {
	return m.createFn(ctx, draft)
}

func (m *mockOrderLifecycle) Lookup(ctx context.Context, orderID string) (service.OrderView, error) {
	return m.lookupFn(ctx, orderID)
}

func (m *mockOrderLifecycle) UpdateStatus(ctx context.Context, orderID, status string) (service.OrderView, error) {
	return m.updateStatusFn(ctx, orderID, status)
}

func (m *mockOrderLifecycle) List(ctx context.Context, filter store.OrderFilter) ([]service.OrderView, error) {
	return m.listFn(ctx, filter)
}

type mockOrderLookupStore struct {
	branches map[int64]store.Branch
	canteens map[int64]store.Canteen
}

func (m *mockOrderLookupStore) GetBranch(_ context.Context, id int64) (store.Branch, error) {
	b, ok := m.branches[id]
	if !ok {
		return store.Branch{}, sql.ErrNoRows
	}
	return b, nil
}

func (m *mockOrderLookupStore) GetCanteen(_ context.Context, id int64) (store.Canteen, error) {
	c, ok := m.canteens[id]
	if !ok {
		return store.Canteen{}, sql.ErrNoRows
	}
	return c, nil
}

type broadcastEvent struct {
	canteen   string
	eventType string
	payload   any
}

type mockBroadcaster struct {
	events []broadcastEvent
}

func (m *mockBroadcaster) BroadcastOrder(canteenName, eventType string, payload any) {
	m.events = append(m.events, broadcastEvent{canteenName, eventType, payload})
}

type mockQRGen struct{}

func (mockQRGen) Generate(payload string) ([]byte, error) {
	return []byte("\x89PNG" + payload), nil
}

func sampleView() service.OrderView {
	return service.OrderView{
		ID:       "0042",
		DBID:     42,
		Item:     "Dosa, Chai",
		Branch:   "North",
		Canteen:  "Main Cafeteria",
		Employee: "Ravi",
		Total:    "₹65.00",
		Status:   "Pending",
		Date:     time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		QR:       "http://localhost:3000/orderdetails?id=0042",
	}
}

func setupOrderRouter(svc *mockOrderLifecycle, st *mockOrderLookupStore, bc *mockBroadcaster) *chi.Mux {
	if st == nil {
		st = &mockOrderLookupStore{
			branches: make(map[int64]store.Branch),
			canteens: make(map[int64]store.Canteen),
		}
	}
	var b handler.OrderBroadcaster
	if bc != nil {
		b = bc
	}
	h := handler.NewOrderHandler(svc, st, b, mockQRGen{})
	r := chi.NewRouter()
	r.Route("/canteen_orders", func(r chi.Router) {
		h.RegisterRoutes(r)
		r.Put("/{orderId}", h.UpdateStatus)
	})
	return r
}


func doRequestWithOrigin(t *testing.T, router http.Handler, method, path string, body interface{}, origin string) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", origin)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

// --- Tests ---

func TestCreateOrder_BroadcastsCreatedEvent(t *testing.T) {
	var gotDraft service.OrderDraft
	svc := &mockOrderLifecycle{
		createFn: func(_ context.Context, draft service.OrderDraft) (service.OrderView, error) {
			gotDraft = draft
			return sampleView(), nil
		},
	}
	bc := &mockBroadcaster{}
	router := setupOrderRouter(svc, nil, bc)

	rr := doRequest(t, router, http.MethodPost, "/canteen_orders", map[string]interface{}{
		"items":    []string{"Dosa", "Chai"},
		"branch":   "North",
		"canteen":  "Main Cafeteria",
		"employee": "Ravi",
		"total":    "₹65",
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if gotDraft.ItemNames != "Dosa, Chai" {
		t.Errorf("expected joined item names, got %q", gotDraft.ItemNames)
	}
	if len(bc.events) != 1 {
		t.Fatalf("expected 1 broadcast event, got %d", len(bc.events))
	}
	if bc.events[0].eventType != "order.created" || bc.events[0].canteen != "Main Cafeteria" {
		t.Errorf("unexpected event: %+v", bc.events[0])
	}
}

func TestCreateOrder_SingleItemField(t *testing.T) {
	var gotDraft service.OrderDraft
	svc := &mockOrderLifecycle{
		createFn: func(_ context.Context, draft service.OrderDraft) (service.OrderView, error) {
			gotDraft = draft
			return sampleView(), nil
		},
	}
	router := setupOrderRouter(svc, nil, nil)

	rr := doRequest(t, router, http.MethodPost, "/canteen_orders", map[string]interface{}{
		"item":     "Dosa",
		"employee": "Ravi",
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if gotDraft.ItemNames != "Dosa" {
		t.Errorf("single item field should become the item list, got %q", gotDraft.ItemNames)
	}
}

func TestCreateOrder_LegacyColumnNames(t *testing.T) {
	var gotDraft service.OrderDraft
	svc := &mockOrderLifecycle{
		createFn: func(_ context.Context, draft service.OrderDraft) (service.OrderView, error) {
			gotDraft = draft
			return sampleView(), nil
		},
	}
	router := setupOrderRouter(svc, nil, nil)

	rr := doRequest(t, router, http.MethodPost, "/canteen_orders", map[string]interface{}{
		"order_id":      "#TK42",
		"item_names":    "Dosa, Chai",
		"branch_name":   "North",
		"canteen_name":  "Main Cafeteria",
		"employee_name": "Ravi",
		"total_amount":  "₹65",
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if gotDraft.OrderID != "#TK42" {
		t.Errorf("order_id not carried over, got %q", gotDraft.OrderID)
	}
	if gotDraft.ItemNames != "Dosa, Chai" {
		t.Errorf("item_names not carried over, got %q", gotDraft.ItemNames)
	}
	if gotDraft.BranchName != "North" || gotDraft.CanteenName != "Main Cafeteria" {
		t.Errorf("branch/canteen names not carried over: %q / %q", gotDraft.BranchName, gotDraft.CanteenName)
	}
	if gotDraft.EmployeeName != "Ravi" {
		t.Errorf("employee_name not carried over, got %q", gotDraft.EmployeeName)
	}
	if gotDraft.TotalAmount != "₹65" {
		t.Errorf("total_amount not carried over, got %q", gotDraft.TotalAmount)
	}
}

func TestCreateOrder_NoItems(t *testing.T) {
	svc := &mockOrderLifecycle{
		createFn: func(_ context.Context, _ service.OrderDraft) (service.OrderView, error) {
			t.Fatal("service should not be called")
			return service.OrderView{}, nil
		},
	}
	router := setupOrderRouter(svc, nil, nil)

	rr := doRequest(t, router, http.MethodPost, "/canteen_orders", map[string]interface{}{
		"employee": "Ravi",
	})

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestCreateOrder_ForwardsOrigin(t *testing.T) {
	var gotDraft service.OrderDraft
	svc := &mockOrderLifecycle{
		createFn: func(_ context.Context, draft service.OrderDraft) (service.OrderView, error) {
			gotDraft = draft
			return sampleView(), nil
		},
	}
	router := setupOrderRouter(svc, nil, nil)

	rr := doRequestWithOrigin(t, router, http.MethodPost, "/canteen_orders", map[string]interface{}{
		"items": []string{"Dosa"},
	}, "https://kiosk.example.com")

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	if gotDraft.Origin != "https://kiosk.example.com" {
		t.Errorf("expected origin forwarded, got %q", gotDraft.Origin)
	}
}

func TestCreateOrder_InvalidStatus(t *testing.T) {
	svc := &mockOrderLifecycle{
		createFn: func(_ context.Context, _ service.OrderDraft) (service.OrderView, error) {
			return service.OrderView{}, service.ErrInvalidStatus
		},
	}
	router := setupOrderRouter(svc, nil, nil)

	rr := doRequest(t, router, http.MethodPost, "/canteen_orders", map[string]interface{}{
		"items":  []string{"Dosa"},
		"status": "Teleported",
	})

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestListOrders_UnknownBranchYieldsEmptyList(t *testing.T) {
	svc := &mockOrderLifecycle{
		listFn: func(_ context.Context, _ store.OrderFilter) ([]service.OrderView, error) {
			t.Fatal("list should not be called for an unknown branch")
			return nil, nil
		},
	}
	router := setupOrderRouter(svc, nil, nil)

	rr := doRequest(t, router, http.MethodGet, "/canteen_orders?branch_id=42", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var out []service.OrderView
	decodeInto(t, rr, &out)
	if len(out) != 0 {
		t.Errorf("expected empty list, got %v", out)
	}
}

func TestListOrders_ResolvesCanteenName(t *testing.T) {
	var gotFilter store.OrderFilter
	svc := &mockOrderLifecycle{
		listFn: func(_ context.Context, filter store.OrderFilter) ([]service.OrderView, error) {
			gotFilter = filter
			return []service.OrderView{sampleView()}, nil
		},
	}
	st := &mockOrderLookupStore{
		branches: make(map[int64]store.Branch),
		canteens: map[int64]store.Canteen{7: {ID: 7, Name: "Main Cafeteria"}},
	}
	router := setupOrderRouter(svc, st, nil)

	rr := doRequest(t, router, http.MethodGet, "/canteen_orders?canteen_id=7", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if gotFilter.CanteenName == nil || *gotFilter.CanteenName != "Main Cafeteria" {
		t.Errorf("expected canteen name filter, got %v", gotFilter.CanteenName)
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	svc := &mockOrderLifecycle{
		lookupFn: func(_ context.Context, _ string) (service.OrderView, error) {
			return service.OrderView{}, service.ErrOrderNotFound
		},
	}
	router := setupOrderRouter(svc, nil, nil)

	rr := doRequest(t, router, http.MethodGet, "/canteen_orders/9999", nil)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["message"] != "Order not found" {
		t.Errorf("unexpected message: %v", body["message"])
	}
}

func TestGetOrder_Found(t *testing.T) {
	svc := &mockOrderLifecycle{
		lookupFn: func(_ context.Context, orderID string) (service.OrderView, error) {
			if orderID != "0042" {
				t.Errorf("expected lookup of 0042, got %s", orderID)
			}
			return sampleView(), nil
		},
	}
	router := setupOrderRouter(svc, nil, nil)

	rr := doRequest(t, router, http.MethodGet, "/canteen_orders/0042", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["id"] != "0042" {
		t.Errorf("expected id 0042, got %v", body["id"])
	}
	if body["db_id"] != float64(42) {
		t.Errorf("expected db_id 42, got %v", body["db_id"])
	}
}

func TestUpdateOrderStatus_BroadcastsUpdate(t *testing.T) {
	svc := &mockOrderLifecycle{
		updateStatusFn: func(_ context.Context, orderID, status string) (service.OrderView, error) {
			v := sampleView()
			v.Status = status
			return v, nil
		},
	}
	bc := &mockBroadcaster{}
	router := setupOrderRouter(svc, nil, bc)

	rr := doRequest(t, router, http.MethodPut, "/canteen_orders/0042", map[string]string{
		"status": "Completed",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if len(bc.events) != 1 || bc.events[0].eventType != "order.status_updated" {
		t.Fatalf("expected status_updated event, got %+v", bc.events)
	}
}

func TestUpdateOrderStatus_Errors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"missing status", service.ErrStatusRequired, http.StatusBadRequest},
		{"invalid status", service.ErrInvalidStatus, http.StatusBadRequest},
		{"unknown order", service.ErrOrderNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockOrderLifecycle{
				updateStatusFn: func(_ context.Context, _, _ string) (service.OrderView, error) {
					return service.OrderView{}, tt.err
				},
			}
			router := setupOrderRouter(svc, nil, nil)

			rr := doRequest(t, router, http.MethodPut, "/canteen_orders/0042", map[string]string{
				"status": "anything",
			})

			if rr.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rr.Code)
			}
		})
	}
}

func TestOrderQRImage(t *testing.T) {
	svc := &mockOrderLifecycle{
		lookupFn: func(_ context.Context, _ string) (service.OrderView, error) {
			return sampleView(), nil
		},
	}
	router := setupOrderRouter(svc, nil, nil)

	rr := doRequest(t, router, http.MethodGet, "/canteen_orders/0042/qr.png", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected image/png, got %s", ct)
	}
	if rr.Body.Len() == 0 {
		t.Error("expected PNG bytes in body")
	}
}

func TestOrderQRImage_NoPayload(t *testing.T) {
	svc := &mockOrderLifecycle{
		lookupFn: func(_ context.Context, _ string) (service.OrderView, error) {
			v := sampleView()
			v.QR = ""
			return v, nil
		},
	}
	router := setupOrderRouter(svc, nil, nil)

	rr := doRequest(t, router, http.MethodGet, "/canteen_orders/0042/qr.png", nil)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}
