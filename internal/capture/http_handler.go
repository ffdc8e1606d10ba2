package capture

import (
	"errors"
	"net/http"
	"strconv"

	"showcase/internal/httpx"
)

const maxBatchTargets = 10

type HTTPHandler struct {
	pipeline *Pipeline
	batcher  *Batcher
}

func NewHTTPHandler(pipeline *Pipeline, batcher *Batcher) *HTTPHandler {
	return &HTTPHandler{pipeline: pipeline, batcher: batcher}
}

type previewRequest struct {
	URL            string `json:"url" validate:"required"`
	FullPage       *bool  `json:"fullPage"`
	ViewportWidth  int    `json:"viewportWidth" validate:"omitempty,min=320,max=3840"`
	ViewportHeight int    `json:"viewportHeight" validate:"omitempty,min=240,max=2160"`
}

type previewResponse struct {
	URL           string `json:"url"`
	ScreenshotURL string `json:"screenshotUrl"`
}

// Preview handles GET and POST /api/screenshot. It returns the signed render
// URL without downloading anything.
func (h *HTTPHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if r.Method == http.MethodGet {
		q := r.URL.Query()
		req.URL = q.Get("url")
		if v, err := strconv.ParseBool(q.Get("fullPage")); err == nil {
			req.FullPage = &v
		}
		req.ViewportWidth, _ = strconv.Atoi(q.Get("width"))
		req.ViewportHeight, _ = strconv.Atoi(q.Get("height"))
	} else if err := httpx.DecodeJSON(r, &req, false); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_JSON", "Invalid request body", nil)
		return
	}

	if details := httpx.ValidateStruct(req); details != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	signed, err := h.pipeline.PreviewURL(req.URL, Hints{
		FullPage:       req.FullPage,
		ViewportWidth:  req.ViewportWidth,
		ViewportHeight: req.ViewportHeight,
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, previewResponse{URL: req.URL, ScreenshotURL: signed}, nil)
}

type batchRequest struct {
	URLs []string `json:"urls" validate:"required,min=1,max=10"`
}

// Batch handles POST /api/screenshot/batch.
func (h *HTTPHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := httpx.DecodeJSON(r, &req, false); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_JSON", "Invalid request body", nil)
		return
	}
	if details := httpx.ValidateStruct(req); details != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Between 1 and 10 urls are required", details)
		return
	}
	if !h.pipeline.Configured() {
		WriteError(w, r, ErrProviderNotConfigured)
		return
	}

	targets := make([]Target, len(req.URLs))
	for i, u := range req.URLs {
		targets[i] = Target{URL: u}
	}
	res := h.batcher.Run(r.Context(), targets)
	httpx.JSONSuccess(w, r, res, nil)
}

// StatusOf maps a capture error onto an HTTP status and error code.
func StatusOf(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_URL"
	case errors.Is(err, ErrProviderNotConfigured):
		return http.StatusServiceUnavailable, "CAPTURE_NOT_CONFIGURED"
	case errors.Is(err, ErrCaptureFetch):
		return http.StatusBadGateway, "CAPTURE_FETCH_FAILED"
	case errors.Is(err, ErrAssetUpload):
		return http.StatusBadGateway, "ASSET_UPLOAD_FAILED"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// WriteError writes err as an error envelope using StatusOf.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := StatusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "Internal server error"
	}
	httpx.JSONError(w, r, status, code, msg, nil)
}
