package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/igaue-takahiko/food-delivery-app/internal/auth"
)

type cartItemRequest struct {
	ItemID string `json:"itemId" validate:"required"`
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())

	view, err := h.carts.View(r.Context(), id.AccountID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())

	var req cartItemRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.carts.AddItem(r.Context(), id.AccountID, req.ItemID); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Item successfully added to cart."})
}

func (h *Handler) ReduceCartItem(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())

	if err := h.carts.ReduceItem(r.Context(), id.AccountID, chi.URLParam(r, "itemId")); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Item successfully removed from cart."})
}

func (h *Handler) DeleteCartItem(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())

	var req cartItemRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.carts.RemoveItem(r.Context(), id.AccountID, req.ItemID); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Item successfully deleted from cart."})
}
