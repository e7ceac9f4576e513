package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/igaue-takahiko/food-delivery-app/internal/apperr"
)

func (h *Handler) ListRestaurants(w http.ResponseWriter, r *http.Request) {
	sellers, err := h.restaurants.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"restaurants": sellers, "totalItems": len(sellers)})
}

func (h *Handler) GetRestaurant(w http.ResponseWriter, r *http.Request) {
	seller, err := h.restaurants.Get(r.Context(), chi.URLParam(r, "restId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": seller})
}

func (h *Handler) NearbyRestaurants(w http.ResponseWriter, r *http.Request) {
	lat, latErr := strconv.ParseFloat(chi.URLParam(r, "lat"), 64)
	lng, lngErr := strconv.ParseFloat(chi.URLParam(r, "lng"), 64)
	if latErr != nil || lngErr != nil {
		var details []apperr.FieldError
		if latErr != nil {
			details = append(details, apperr.FieldError{Field: "lat", Message: "must be a number"})
		}
		if lngErr != nil {
			details = append(details, apperr.FieldError{Field: "lng", Message: "must be a number"})
		}
		h.writeError(w, r, apperr.Validation("Invalid coordinates.", details...))
		return
	}

	sellers, err := h.restaurants.Nearby(r.Context(), lat, lng)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"restaurants": sellers})
}
