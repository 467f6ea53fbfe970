package router

import (
	"net/http"

	"github.com/canteenhub/api/internal/config"
	"github.com/canteenhub/api/internal/enum"
	"github.com/canteenhub/api/internal/handler"
	mw "github.com/canteenhub/api/internal/middleware"
	"github.com/canteenhub/api/internal/service"
	"github.com/canteenhub/api/internal/store"
	"github.com/canteenhub/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// New creates a Chi router with all application routes wired up.
// Ordering and menu reads are public so kiosks work without a login;
// everything administrative sits behind JWT role middleware.
func New(cfg *config.Config, db *store.DB, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300, // 5 minutes
	}))

	queries := db.Queries()

	newOrderStore := func(dbtx store.DBTX) service.OrderStore {
		return store.New(dbtx, db.Dialect())
	}
	orderService := service.NewOrderService(queries, db, newOrderStore, cfg.PublicBaseURL, cfg.QRMode)

	newCascadeStore := func(dbtx store.DBTX) service.CascadeStore {
		return store.New(dbtx, db.Dialect())
	}
	cascadeService := service.NewCascadeService(db, newCascadeStore)

	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	adminHandler := handler.NewAdminHandler(queries)
	branchHandler := handler.NewBranchHandler(queries, cascadeService)
	canteenHandler := handler.NewCanteenHandler(queries, cascadeService)
	menuHandler := handler.NewMenuHandler(queries)
	orderHandler := handler.NewOrderHandler(orderService, queries, hub, service.PNGQRGenerator{})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// Auth routes (public)
	authHandler.RegisterRoutes(r)

	// WebSocket feed (handles auth internally via query param)
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Kiosk-facing routes stay public
	r.Get("/menus", menuHandler.List)
	r.Get("/branches", branchHandler.List)
	r.Get("/canteens", canteenHandler.List)
	r.Post("/canteen_orders", orderHandler.Create)
	r.Get("/canteen_orders", orderHandler.List)
	r.Get("/canteen_orders/{orderId}", orderHandler.Get)
	r.Get("/canteen_orders/{orderId}/qr.png", orderHandler.QRImage)

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		// Main admin only
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.RoleMainAdmin))
			r.Route("/admins", adminHandler.RegisterRoutes)
			r.Post("/branches", branchHandler.Create)
			r.Delete("/branches/{id}", branchHandler.Delete)
		})

		// Branch structure management
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.RoleMainAdmin, enum.RoleBranchAdmin))
			r.Post("/canteens", canteenHandler.Create)
			r.Delete("/canteens/{id}", canteenHandler.Delete)
		})

		// Any admin
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.Roles...))
			r.Post("/menus", menuHandler.Create)
			r.Put("/menus/{id}", menuHandler.Update)
			r.Delete("/menus/{id}", menuHandler.Delete)
			r.Put("/canteen_orders/{orderId}", orderHandler.UpdateStatus)
		})
	})

	return r
}
