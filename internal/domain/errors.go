package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	// ErrUpstreamUnavailable marks network or decoding failures talking to the marketplace backend.
	ErrUpstreamUnavailable = errors.New("marketplace backend unavailable")
)

// Verification handshake failures. Each one has its own recovery path on the client.
var (
	ErrNoValidCode         = errors.New("no valid verification code, request a new one")
	ErrIncorrectCode       = errors.New("incorrect verification code")
	ErrRegistrationMissing = errors.New("registration data missing, restart registration")
	ErrDeliveryFailed      = errors.New("could not deliver verification code")
)

// UpstreamError is a failure reported by the marketplace backend through a
// {"success": false, "detail": "..."} envelope. Detail is shown to users verbatim.
type UpstreamError struct {
	Status int
	Detail string
}

func (e *UpstreamError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend request failed with status %d", e.Status)
	}
	return e.Detail
}

// Is lets callers test upstream failures against the sentinel that matches their status.
func (e *UpstreamError) Is(target error) bool {
	switch e.Status {
	case http.StatusNotFound:
		return target == ErrNotFound
	case http.StatusUnauthorized:
		return target == ErrUnauthorized
	case http.StatusForbidden:
		return target == ErrForbidden
	case http.StatusConflict:
		return target == ErrConflict
	}
	return false
}
