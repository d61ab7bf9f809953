package handler

import (
	"net/http"

	"github.com/campus-marketplace/internal/application/catalog"
	"github.com/campus-marketplace/internal/application/purchase"
	"github.com/campus-marketplace/internal/application/session"
)

// MeHandler serves the signed-in student's profile and collections.
type MeHandler struct {
	sessions  session.Service
	catalog   catalog.Service
	purchases purchase.Service
}

func NewMeHandler(sessions session.Service, cat catalog.Service, purchases purchase.Service) *MeHandler {
	return &MeHandler{sessions: sessions, catalog: cat, purchases: purchases}
}

func (h *MeHandler) Profile(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	u, err := h.sessions.Current(r.Context(), p.BackendToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, u)
}

func (h *MeHandler) Products(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	list, err := h.catalog.MyProducts(r.Context(), p.BackendToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, nonNil(list))
}

func (h *MeHandler) Favorites(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	list, err := h.catalog.Favorites(r.Context(), p.BackendToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, nonNil(list))
}

func (h *MeHandler) Purchases(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	list, err := h.purchases.Purchases(r.Context(), p.BackendToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, nonNil(list))
}

func (h *MeHandler) Sales(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	list, err := h.purchases.Sales(r.Context(), p.BackendToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, nonNil(list))
}

// nonNil makes empty collections encode as [] rather than null.
func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
