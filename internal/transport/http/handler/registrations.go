package handler

import (
	"net/http"

	"github.com/campus-marketplace/internal/application/verification"
	"github.com/campus-marketplace/internal/domain"
)

// RegistrationHandler drives the email verification handshake.
type RegistrationHandler struct {
	svc verification.Service
}

func NewRegistrationHandler(svc verification.Service) *RegistrationHandler {
	return &RegistrationHandler{svc: svc}
}

type emailRequest struct {
	Email string `json:"email"`
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// Register accepts the sign-up form and emails a verification code.
func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.Registration
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.svc.IssueCode(r.Context(), req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusAccepted, map[string]string{"email": req.Email, "status": "code_sent"})
}

func (h *RegistrationHandler) Resend(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}
	if err := h.svc.ResendCode(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusAccepted, map[string]string{"email": req.Email, "status": "code_sent"})
}

// Verify checks the code and, on success, creates the account.
func (h *RegistrationHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}
	if err := h.svc.SubmitCode(r.Context(), req.Email, req.Code); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, map[string]any{"email": req.Email, "verified": true})
}

// Cancel abandons a pending registration.
func (h *RegistrationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}
	if err := h.svc.Cancel(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"email": req.Email, "status": "cancelled"})
}
