package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"restaurant-floor/internal/common/httpx"
	"restaurant-floor/internal/common/logger"
	"restaurant-floor/internal/domain"
	"restaurant-floor/internal/microservices/floor/service"
)

const (
	staff   = domain.RoleStaff
	kitchen = domain.RoleKitchen
)

func Router(h *Handler, svc service.FloorServiceInterface, log *logger.Logger) http.Handler {
	r := mux.NewRouter()
	f, c := h.FloorHandler, h.CustomerHandler

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "lastUpdated": svc.Snapshot().LastUpdated})
	}).Methods(http.MethodGet)

	r.HandleFunc("/api/v1/login", f.Login).Methods(http.MethodPost)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(withUser(svc, h.Sessions, false))
	api.HandleFunc("/snapshot", f.Snapshot).Methods(http.MethodGet)
	api.HandleFunc("/notifications", f.Notifications).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{id}/dismiss", f.DismissNotification).Methods(http.MethodPost)
	api.HandleFunc("/notifications/{id}/read", f.ReadNotification).Methods(http.MethodPost)
	api.HandleFunc("/users/{id}/heartbeat", f.Heartbeat).Methods(http.MethodPost)

	tables := api.PathPrefix("/tables/{table:[0-9]+}").Subrouter()
	tables.HandleFunc("/orders", allow(f.PlaceOrder, staff)).Methods(http.MethodPost)
	tables.HandleFunc("/confirm", allow(f.ConfirmOrders, staff)).Methods(http.MethodPost)
	tables.HandleFunc("/items/{item}/cancel", allow(f.CancelItem, staff)).Methods(http.MethodPost)
	tables.HandleFunc("/items/{item}/status", allow(f.ItemStatus, kitchen)).Methods(http.MethodPost)
	tables.HandleFunc("/items/{item}/serve", allow(f.ServeItem, staff)).Methods(http.MethodPost)
	tables.HandleFunc("/qr-request", allow(f.RequestQr, staff)).Methods(http.MethodPost)
	tables.HandleFunc("/payment-request", allow(f.RequestPayment, staff)).Methods(http.MethodPost)
	tables.HandleFunc("/billing", allow(f.StartBilling, staff)).Methods(http.MethodPost)
	tables.HandleFunc("/payment-confirm", allow(f.ConfirmPayment, staff)).Methods(http.MethodPost)
	tables.HandleFunc("/move-request", allow(f.RequestMove, staff)).Methods(http.MethodPost)

	admin := api.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/tables/{table:[0-9]+}/force-close", allow(f.ForceClose)).Methods(http.MethodPost)
	admin.HandleFunc("/qr-requests/{notif}/approve", allow(f.ApproveQr)).Methods(http.MethodPost)
	admin.HandleFunc("/qr-requests/{notif}/reject", allow(f.RejectQr)).Methods(http.MethodPost)
	admin.HandleFunc("/move-requests/{notif}/approve", allow(f.ApproveMove)).Methods(http.MethodPost)
	admin.HandleFunc("/move-requests/{notif}/reject", allow(f.RejectMove)).Methods(http.MethodPost)
	admin.HandleFunc("/reports/kitchen", allow(f.KitchenReport)).Methods(http.MethodGet)
	admin.HandleFunc("/reports/revenue", allow(f.RevenueReport)).Methods(http.MethodGet)

	ws := r.PathPrefix("/ws").Subrouter()
	ws.Use(withUser(svc, h.Sessions, true))
	ws.HandleFunc("", h.Hub.HandleWebSocket).Methods(http.MethodGet)

	cust := r.PathPrefix("/t/{table:[0-9]+}/{token}").Subrouter()
	cust.HandleFunc("", c.View).Methods(http.MethodGet)
	cust.HandleFunc("/orders", c.Order).Methods(http.MethodPost)
	cust.HandleFunc("/payment-request", c.RequestPayment).Methods(http.MethodPost)
	cust.HandleFunc("/call", c.Call).Methods(http.MethodPost)
	cust.HandleFunc("/review", c.Review).Methods(http.MethodPost)

	return httpx.LogMiddleware(log)(r)
}
