package handler

import (
	"net/http"

	"github.com/campus-marketplace/internal/application/purchase"
	"github.com/go-chi/chi/v5"
)

// PurchaseHandler handles purchase codes.
type PurchaseHandler struct {
	svc purchase.Service
}

func NewPurchaseHandler(svc purchase.Service) *PurchaseHandler { return &PurchaseHandler{svc: svc} }

func (h *PurchaseHandler) GenerateCode(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	code, err := h.svc.GenerateCode(r.Context(), p.BackendToken, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, code)
}

func (h *PurchaseHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req struct {
		Code string `json:"code"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	out, err := h.svc.Confirm(r.Context(), p.BackendToken, req.Code)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, out)
}
