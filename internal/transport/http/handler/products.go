package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/campus-marketplace/internal/application/catalog"
	"github.com/campus-marketplace/internal/domain"
	"github.com/campus-marketplace/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

// ProductHandler handles listing, editing and contacting about products.
type ProductHandler struct {
	svc catalog.Service
}

func NewProductHandler(svc catalog.Service) *ProductHandler { return &ProductHandler{svc: svc} }

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.ProductFilter{
		Search:    q.Get("search"),
		Category:  q.Get("category"),
		Condition: q.Get("condition"),
	}
	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			writeError(w, http.StatusBadRequest, "page must be a positive integer")
			return
		}
		filter.Page = page
	}
	list, err := h.svc.List(r.Context(), middleware.BackendToken(r.Context()), filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, nonNil(list))
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), middleware.BackendToken(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	pr, ok := principal(w, r)
	if !ok {
		return
	}
	var in domain.ProductInput
	if !decodeBody(w, r, &in) {
		return
	}
	p, err := h.svc.Create(r.Context(), pr.BackendToken, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, p)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	pr, ok := principal(w, r)
	if !ok {
		return
	}
	var in domain.ProductInput
	if !decodeBody(w, r, &in) {
		return
	}
	p, err := h.svc.Update(r.Context(), pr.BackendToken, chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	pr, ok := principal(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), pr.BackendToken, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

// UploadImage accepts a multipart form with the picture in the "image" field.
func (h *ProductHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	pr, ok := principal(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, catalog.MaxImageSize+(1<<20))
	if err := r.ParseMultipartForm(catalog.MaxImageSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "image too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "image field is required")
		return
	}
	defer file.Close()

	img, err := h.svc.UploadImage(r.Context(), pr.BackendToken, chi.URLParam(r, "id"), catalog.UploadInput{
		Reader:      file,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, img)
}

func (h *ProductHandler) Favorite(w http.ResponseWriter, r *http.Request) {
	pr, ok := principal(w, r)
	if !ok {
		return
	}
	if err := h.svc.Favorite(r.Context(), pr.BackendToken, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]bool{"favorited": true})
}

func (h *ProductHandler) Unfavorite(w http.ResponseWriter, r *http.Request) {
	pr, ok := principal(w, r)
	if !ok {
		return
	}
	if err := h.svc.Unfavorite(r.Context(), pr.BackendToken, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]bool{"favorited": false})
}

func (h *ProductHandler) Contact(w http.ResponseWriter, r *http.Request) {
	pr, ok := principal(w, r)
	if !ok {
		return
	}
	link, err := h.svc.ContactLink(r.Context(), pr.BackendToken, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"url": link})
}
