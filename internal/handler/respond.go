package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/igaue-takahiko/food-delivery-app/internal/apperr"
)

type errorResponse struct {
	Message string              `json:"message"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps err to its status. Internal details are logged, never returned.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	resp := errorResponse{Message: "Internal server error."}

	var appErr *apperr.Error
	if errors.As(err, &appErr) && kind != apperr.KindInternal {
		resp.Message = appErr.Message
		resp.Errors = appErr.Details
	}
	if kind == apperr.KindInternal {
		h.log.Error("request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}

	writeJSON(w, apperr.HTTPStatus(kind), resp)
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode reads a JSON body into dst and validates it.
func (h *Handler) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Validation("Invalid request body.")
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return apperr.Internal("failed to validate request", err)
		}
		details := make([]apperr.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, apperr.FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
		}
		return apperr.Validation("Validation failed.", details...)
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "len":
		return fmt.Sprintf("must be %s characters long", fe.Param())
	case "numeric":
		return "must contain digits only"
	case "latitude", "longitude":
		return "is not a valid coordinate"
	default:
		return fmt.Sprintf("failed on %s", fe.Tag())
	}
}
