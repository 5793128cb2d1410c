package handlers

import (
	"context"
	"net/http"
	"time"

	"restaurant-floor/internal/common/auth"
	"restaurant-floor/internal/domain"
	"restaurant-floor/internal/microservices/floor/service"
)

type FloorHandler struct {
	service  service.FloorServiceInterface
	sessions *auth.Sessions
}

func NewFloorHandler(svc service.FloorServiceInterface, sessions *auth.Sessions) *FloorHandler {
	return &FloorHandler{service: svc, sessions: sessions}
}

func (h *FloorHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	u, err := h.service.Login(req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	token, exp, err := h.sessions.Issue(u.ID, string(u.Role))
	if err != nil {
		writeError(w, err)
		return
	}
	u.PasswordHash = ""
	writeJSON(w, http.StatusOK, LoginResponse{Token: token, ExpiresAt: exp, User: u})
}

func (h *FloorHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, redact(h.service.Snapshot()))
}

func (h *FloorHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	ns, err := h.service.Notifications(currentUser(r).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": ns})
}

func (h *FloorHandler) DismissNotification(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DismissNotification(r.Context(), param(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FloorHandler) ReadNotification(w http.ResponseWriter, r *http.Request) {
	if err := h.service.MarkNotificationRead(r.Context(), param(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FloorHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	id := param(r, "id")
	if u := currentUser(r); u.ID != id && u.Role != domain.RoleAdmin {
		writeProblem(w, http.StatusForbidden, "forbidden", "heartbeat for another user")
		return
	}
	if err := h.service.Heartbeat(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FloorHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	tableID, err := paramInt(r, "table")
	if err != nil {
		writeError(w, err)
		return
	}
	var req PlaceOrderRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	status := domain.ItemConfirmed
	if req.Pending {
		status = domain.ItemPending
	}
	orderType := req.OrderType
	if orderType == "" {
		orderType = domain.DineIn
		if tableID == domain.WalkInTableID {
			orderType = domain.Takeaway
		}
	}
	t, err := h.service.PlaceOrder(r.Context(), tableID, req.lines(status), orderType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *FloorHandler) ConfirmOrders(w http.ResponseWriter, r *http.Request) {
	tableID, err := paramInt(r, "table")
	if err != nil {
		writeError(w, err)
		return
	}
	var req ConfirmOrdersRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	t, err := h.service.ConfirmOrders(r.Context(), tableID, req.NotificationID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *FloorHandler) CancelItem(w http.ResponseWriter, r *http.Request) {
	tableID, err := paramInt(r, "table")
	if err != nil {
		writeError(w, err)
		return
	}
	t, err := h.service.CancelItem(r.Context(), tableID, param(r, "item"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *FloorHandler) ItemStatus(w http.ResponseWriter, r *http.Request) {
	tableID, err := paramInt(r, "table")
	if err != nil {
		writeError(w, err)
		return
	}
	var req ItemStatusRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	t, err := h.service.UpdateItemStatus(r.Context(), tableID, param(r, "item"), req.Status, currentUser(r).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *FloorHandler) ServeItem(w http.ResponseWriter, r *http.Request) {
	tableID, err := paramInt(r, "table")
	if err != nil {
		writeError(w, err)
		return
	}
	var req ServeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	t, err := h.service.ServeItem(r.Context(), tableID, param(r, "item"), req.NotificationID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *FloorHandler) RequestQr(w http.ResponseWriter, r *http.Request) {
	tableID, err := paramInt(r, "table")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.service.RequestQr(r.Context(), tableID, currentUser(r).ID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *FloorHandler) RequestPayment(w http.ResponseWriter, r *http.Request) {
	h.tableStep(w, r, h.service.RequestPayment)
}

func (h *FloorHandler) StartBilling(w http.ResponseWriter, r *http.Request) {
	h.tableStep(w, r, h.service.StartBilling)
}

func (h *FloorHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	tableID, err := paramInt(r, "table")
	if err != nil {
		writeError(w, err)
		return
	}
	bill, err := h.service.ConfirmPayment(r.Context(), tableID, currentUser(r).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, bill)
}

func (h *FloorHandler) RequestMove(w http.ResponseWriter, r *http.Request) {
	tableID, err := paramInt(r, "table")
	if err != nil {
		writeError(w, err)
		return
	}
	var req MoveRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.service.RequestMove(r.Context(), tableID, req.ToTableID, currentUser(r).ID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *FloorHandler) ForceClose(w http.ResponseWriter, r *http.Request) {
	tableID, err := paramInt(r, "table")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.service.ForceClose(r.Context(), tableID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FloorHandler) ApproveQr(w http.ResponseWriter, r *http.Request) {
	h.approval(w, r, h.service.ApproveQr)
}

func (h *FloorHandler) RejectQr(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RejectQr(r.Context(), param(r, "notif")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FloorHandler) ApproveMove(w http.ResponseWriter, r *http.Request) {
	h.approval(w, r, h.service.ApproveMove)
}

func (h *FloorHandler) RejectMove(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RejectMove(r.Context(), param(r, "notif")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FloorHandler) KitchenReport(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"cooks": h.service.KitchenStats()})
}

// RevenueReport covers the last ?days=N days (default 1) ending now.
func (h *FloorHandler) RevenueReport(w http.ResponseWriter, r *http.Request) {
	days := atoiDefault(r.URL.Query().Get("days"), 1)
	if days < 1 {
		days = 1
	}
	to := time.Now()
	writeJSON(w, http.StatusOK, h.service.Revenue(to.AddDate(0, 0, -days), to))
}

func (h *FloorHandler) tableStep(w http.ResponseWriter, r *http.Request, step func(ctx context.Context, tableID int) (domain.Table, error)) {
	tableID, err := paramInt(r, "table")
	if err != nil {
		writeError(w, err)
		return
	}
	t, err := step(r.Context(), tableID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *FloorHandler) approval(w http.ResponseWriter, r *http.Request, approve func(ctx context.Context, notifID string) (bool, error)) {
	applied, err := approve(r.Context(), param(r, "notif"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AppliedResponse{Applied: applied})
}
