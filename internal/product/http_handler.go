package product

import (
	"errors"
	"net/http"
	"strconv"

	"showcase/internal/capture"
	"showcase/internal/httpx"
)

func init() {
	httpx.RegisterEnum("category", Categories...)
	httpx.RegisterEnum("pagetype", PageTypes...)
}

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// List handles GET /api/saas
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	params := Query{
		Category: query.Get("category"),
		Search:   query.Get("search"),
		PageType: query.Get("pageType"),
	}
	if v, err := strconv.ParseBool(query.Get("featured")); err == nil {
		params.Featured = &v
	}

	page, _ := strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(query.Get("page_size"))
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	params.Limit = pageSize
	params.Offset = (page - 1) * pageSize

	products, total, err := h.service.List(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.JSONSuccess(w, r, products, map[string]any{
		"page":        page,
		"page_size":   pageSize,
		"total":       total,
		"total_pages": (total + pageSize - 1) / pageSize,
	})
}

// Get handles GET /api/saas/{id}
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, p, nil)
}

// GetBySlug handles GET /api/saas/slug/{slug}
func (h *HTTPHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, p, nil)
}

// Categories handles GET /api/categories
func (h *HTTPHandler) Categories(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.Categories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, counts, nil)
}

// Create handles POST /api/saas
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := httpx.DecodeJSON(r, &in, false); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_JSON", "Invalid request body", nil)
		return
	}
	if details := httpx.ValidateStruct(in); details != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	res, err := h.service.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONCreated(w, r, res)
}

// Update handles PUT /api/saas/{id}
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in UpdateInput
	if err := httpx.DecodeJSON(r, &in, false); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_JSON", "Invalid request body", nil)
		return
	}
	if details := httpx.ValidateStruct(in); details != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}
	if in.ImageURL != nil && *in.ImageURL != "" {
		if err := capture.ValidateTarget(*in.ImageURL); err != nil {
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input",
				[]httpx.ErrorDetail{{Field: "imageUrl", Message: "imageUrl must be an absolute http(s) URL"}})
			return
		}
	}

	res, err := h.service.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, res, nil)
}

// Delete handles DELETE /api/saas/{id}
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONNoContent(w)
}

// Recapture handles POST /api/saas/{id}/screenshot
func (h *HTTPHandler) Recapture(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Recapture(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, p, nil)
}

type bulkRequest struct {
	PageType string `json:"pageType" validate:"omitempty,pagetype"`
}

// BulkRecapture handles POST /api/saas/bulk-screenshot
func (h *HTTPHandler) BulkRecapture(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := httpx.DecodeJSON(r, &req, true); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_JSON", "Invalid request body", nil)
		return
	}
	if details := httpx.ValidateStruct(req); details != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	res, err := h.service.BulkRecapture(r.Context(), req.PageType)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, res, nil)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	case errors.Is(err, ErrInvalidPageType):
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
	case errors.Is(err, ErrSlugTaken):
		httpx.JSONError(w, r, http.StatusConflict, "SLUG_TAKEN", "Could not allocate a unique slug", nil)
	default:
		capture.WriteError(w, r, err)
	}
}
