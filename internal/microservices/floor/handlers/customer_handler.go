package handlers

import (
	"net/http"

	"restaurant-floor/internal/domain"
	"restaurant-floor/internal/microservices/floor/service"
)

// CustomerHandler serves the QR session pages. The table id and session token
// in the path are the only credential.
type CustomerHandler struct {
	service service.FloorServiceInterface
}

func NewCustomerHandler(svc service.FloorServiceInterface) *CustomerHandler {
	return &CustomerHandler{service: svc}
}

func session(r *http.Request) (int, string, error) {
	tableID, err := paramInt(r, "table")
	return tableID, param(r, "token"), err
}

func (h *CustomerHandler) View(w http.ResponseWriter, r *http.Request) {
	tableID, token, err := session(r)
	if err != nil {
		writeError(w, err)
		return
	}
	v, err := h.service.CustomerView(tableID, token)
	if err != nil {
		writeError(w, err)
		return
	}
	v.Table.SessionToken = ""
	writeJSON(w, http.StatusOK, v)
}

func (h *CustomerHandler) Order(w http.ResponseWriter, r *http.Request) {
	tableID, token, err := session(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req CustomerOrderRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	t, err := h.service.CustomerOrder(r.Context(), tableID, token, toLines(req.Items, domain.ItemPending))
	if err != nil {
		writeError(w, err)
		return
	}
	t.SessionToken = ""
	writeJSON(w, http.StatusCreated, t)
}

func (h *CustomerHandler) RequestPayment(w http.ResponseWriter, r *http.Request) {
	tableID, token, err := session(r)
	if err != nil {
		writeError(w, err)
		return
	}
	t, err := h.service.CustomerRequestPayment(r.Context(), tableID, token)
	if err != nil {
		writeError(w, err)
		return
	}
	t.SessionToken = ""
	writeJSON(w, http.StatusOK, t)
}

func (h *CustomerHandler) Call(w http.ResponseWriter, r *http.Request) {
	tableID, token, err := session(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.service.CallStaff(r.Context(), tableID, token); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *CustomerHandler) Review(w http.ResponseWriter, r *http.Request) {
	tableID, token, err := session(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req ReviewRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.service.SubmitReview(r.Context(), tableID, token, req.Rating, req.Comment); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}
