package handler

import (
	"net/http"

	"github.com/igaue-takahiko/food-delivery-app/internal/auth"
	"github.com/igaue-takahiko/food-delivery-app/internal/model"
)

type addressRequest struct {
	PhoneNo          string  `json:"phoneNo" validate:"required,numeric,len=10"`
	Street           string  `json:"street" validate:"required"`
	Locality         string  `json:"locality" validate:"required"`
	Zip              string  `json:"zip" validate:"required"`
	AptName          string  `json:"aptName"`
	Lat              float64 `json:"lat" validate:"omitempty,latitude"`
	Lng              float64 `json:"lng" validate:"omitempty,longitude"`
	FormattedAddress string  `json:"formattedAddress"`
}

func (h *Handler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())

	var req addressRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	addr := model.Address{
		Street:   req.Street,
		AptName:  req.AptName,
		Locality: req.Locality,
		Zip:      req.Zip,
		PhoneNo:  req.PhoneNo,
		Lat:      req.Lat,
		Lng:      req.Lng,
	}
	user, err := h.profiles.UpdateAddress(r.Context(), id.AccountID, addr, req.FormattedAddress)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"item": user})
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())

	profile, err := h.profiles.Me(r.Context(), id.AccountID, id.Role)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": profile})
}
