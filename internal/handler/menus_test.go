package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/canteenhub/api/internal/handler"
	"github.com/canteenhub/api/internal/store"
	"github.com/go-chi/chi/v5"
)

// --- Mock store ---

type mockMenuStore struct {
	items      map[int64]store.MenuItem
	branchOf   map[int64]int64 // canteen ID -> branch ID
	nextID     int64
	lastFilter store.MenuItemFilter
}

func newMockMenuStore() *mockMenuStore {
	return &mockMenuStore{
		items:    make(map[int64]store.MenuItem),
		branchOf: make(map[int64]int64),
		nextID:   1,
	}
}

func (m *mockMenuStore) ListMenuItems(_ context.Context, filter store.MenuItemFilter) ([]store.MenuItem, error) {
	m.lastFilter = filter
	var out []store.MenuItem
	for _, it := range m.items {
		if filter.CanteenID != nil && it.CanteenID != *filter.CanteenID {
			continue
		}
		if filter.CanteenID == nil && filter.BranchID != nil && m.branchOf[it.CanteenID] != *filter.BranchID {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func (m *mockMenuStore) CreateMenuItem(_ context.Context, arg store.CreateMenuItemParams) (store.MenuItem, error) {
	it := store.MenuItem{
		ID:        m.nextID,
		Name:      arg.Name,
		Price:     arg.Price,
		Photo:     arg.Photo,
		IsActive:  arg.IsActive,
		CanteenID: arg.CanteenID,
	}
	m.items[it.ID] = it
	m.nextID++
	return it, nil
}

func (m *mockMenuStore) UpdateMenuItem(_ context.Context, arg store.UpdateMenuItemParams) (int64, error) {
	it, ok := m.items[arg.ID]
	if !ok {
		return 0, nil
	}
	it.Name = arg.Name
	it.Price = arg.Price
	it.Photo = arg.Photo
	it.IsActive = arg.IsActive
	m.items[it.ID] = it
	return 1, nil
}

func (m *mockMenuStore) DeleteMenuItem(_ context.Context, id int64) (int64, error) {
	if _, ok := m.items[id]; !ok {
		return 0, nil
	}
	delete(m.items, id)
	return 1, nil
}

func setupMenuRouter(st *mockMenuStore) *chi.Mux {
	h := handler.NewMenuHandler(st)
	r := chi.NewRouter()
	r.Route("/menus", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
	return r
}

// --- Tests ---

func TestCreateMenuItem_NormalizesPrice(t *testing.T) {
	st := newMockMenuStore()
	router := setupMenuRouter(st)

	rr := doRequest(t, router, http.MethodPost, "/menus", map[string]interface{}{
		"name":       "Masala Dosa",
		"price":      "₹45.5",
		"canteen_id": 1,
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	if body["price"] != "₹45.50" {
		t.Errorf("expected normalized price ₹45.50, got %v", body["price"])
	}
	if body["is_active"] != true {
		t.Errorf("expected is_active to default true, got %v", body["is_active"])
	}
}

func TestCreateMenuItem_InvalidPrice(t *testing.T) {
	router := setupMenuRouter(newMockMenuStore())

	rr := doRequest(t, router, http.MethodPost, "/menus", map[string]interface{}{
		"name":       "Mystery Dish",
		"price":      "free",
		"canteen_id": 1,
	})

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["message"] != "invalid price" {
		t.Errorf("unexpected message: %v", body["message"])
	}
}

func TestCreateMenuItem_MissingCanteen(t *testing.T) {
	router := setupMenuRouter(newMockMenuStore())

	rr := doRequest(t, router, http.MethodPost, "/menus", map[string]interface{}{
		"name":  "Idli",
		"price": "₹20",
	})

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestListMenuItems_CanteenFilterWins(t *testing.T) {
	st := newMockMenuStore()
	router := setupMenuRouter(st)

	rr := doRequest(t, router, http.MethodGet, "/menus?canteen_id=2&branch_id=7", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if st.lastFilter.CanteenID == nil || *st.lastFilter.CanteenID != 2 {
		t.Errorf("expected canteen filter 2, got %v", st.lastFilter.CanteenID)
	}
}

func TestUpdateMenuItem(t *testing.T) {
	st := newMockMenuStore()
	st.items[5] = store.MenuItem{ID: 5, Name: "Old", Price: "₹10.00", IsActive: true, CanteenID: 1}
	router := setupMenuRouter(st)

	rr := doRequest(t, router, http.MethodPut, "/menus/5", map[string]interface{}{
		"name":      "New",
		"price":     "₹12",
		"is_active": false,
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	updated := st.items[5]
	if updated.Name != "New" || updated.Price != "₹12.00" || updated.IsActive {
		t.Errorf("update not applied: %+v", updated)
	}
}

func TestUpdateMenuItem_NotFound(t *testing.T) {
	router := setupMenuRouter(newMockMenuStore())

	rr := doRequest(t, router, http.MethodPut, "/menus/99", map[string]interface{}{
		"name":  "Ghost",
		"price": "₹1",
	})

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestDeleteMenuItem(t *testing.T) {
	st := newMockMenuStore()
	st.items[5] = store.MenuItem{ID: 5, Name: "Doomed", Price: "₹10.00", CanteenID: 1}
	router := setupMenuRouter(st)

	rr := doRequest(t, router, http.MethodDelete, "/menus/5", nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}

	rr = doRequest(t, router, http.MethodDelete, "/menus/5", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", rr.Code)
	}
}
