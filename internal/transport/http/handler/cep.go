package handler

import (
	"net/http"

	"github.com/campus-marketplace/internal/application/address"
	"github.com/go-chi/chi/v5"
)

type AddressHandler struct {
	svc address.Service
}

func NewAddressHandler(svc address.Service) *AddressHandler { return &AddressHandler{svc: svc} }

func (h *AddressHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	addr, err := h.svc.Lookup(r.Context(), chi.URLParam(r, "cep"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, addr)
}
