package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/igaue-takahiko/food-delivery-app/internal/auth"
)

type orderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())

	orders, err := h.orders.Checkout(r.Context(), id.AccountID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())

	orders, err := h.orders.ListOrders(r.Context(), id.AccountID, id.Role)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req orderStatusRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), chi.URLParam(r, "orderId"), req.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"updatedOrder": order})
}
