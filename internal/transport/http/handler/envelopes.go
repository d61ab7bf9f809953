package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/campus-marketplace/internal/domain"
	"github.com/campus-marketplace/internal/transport/http/middleware"
)

const maxJSONBody = 1 << 20

// DataEnvelope wraps successful responses.
type DataEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// ErrorEnvelope wraps failures. Detail is meant to be shown to the user.
type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Detail  string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, DataEnvelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorEnvelope{Detail: msg})
}

// writeServiceError maps a service error onto a status code and user-facing detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := classify(err)
	if status >= http.StatusInternalServerError {
		middleware.SetError(r.Context(), err)
	}
	writeError(w, status, detail)
}

func classify(err error) (int, string) {
	var upstream *domain.UpstreamError
	if errors.As(err, &upstream) {
		status := upstream.Status
		switch {
		case status < http.StatusBadRequest:
			status = http.StatusUnprocessableEntity
		case status >= http.StatusInternalServerError:
			status = http.StatusBadGateway
		}
		return status, upstream.Error()
	}

	switch {
	case errors.Is(err, domain.ErrNoValidCode):
		return http.StatusGone, domain.ErrNoValidCode.Error()
	case errors.Is(err, domain.ErrIncorrectCode):
		return http.StatusUnprocessableEntity, domain.ErrIncorrectCode.Error()
	case errors.Is(err, domain.ErrRegistrationMissing):
		return http.StatusConflict, domain.ErrRegistrationMissing.Error()
	case errors.Is(err, domain.ErrDeliveryFailed):
		return http.StatusBadGateway, domain.ErrDeliveryFailed.Error()
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusBadGateway, "service temporarily unavailable, please try again"
	case errors.Is(err, domain.ErrBadRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, err.Error()
	}
	return http.StatusInternalServerError, "internal server error"
}

// decodeBody reads a JSON body into v, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func principal(w http.ResponseWriter, r *http.Request) (*middleware.Principal, bool) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
	}
	return p, ok
}
