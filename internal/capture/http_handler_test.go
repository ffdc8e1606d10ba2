package capture

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"showcase/internal/platform/cloudinary"
	"showcase/internal/platform/screenshotone"
)

func TestHTTPHandler_Preview(t *testing.T) {
	t.Run("get with query overrides", func(t *testing.T) {
		prov := new(mockProvider)
		prov.On("Configured").Return(true)
		prov.On("SignedURL", mock.MatchedBy(func(o screenshotone.Options) bool {
			return o.URL == "https://example.com" && !o.FullPage && o.ViewportWidth == 1280
		})).Return("https://render/take?signature=abc", nil)

		h := NewHTTPHandler(newPipeline(prov, new(mockAssets)), nil)
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/screenshot?url=https://example.com&fullPage=false&width=1280", nil)
		h.Preview(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Data previewResponse `json:"data"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "https://render/take?signature=abc", body.Data.ScreenshotURL)
	})

	t.Run("post", func(t *testing.T) {
		prov := new(mockProvider)
		prov.On("Configured").Return(true)
		prov.On("SignedURL", mock.Anything).Return("https://render/take?signature=abc", nil)

		h := NewHTTPHandler(newPipeline(prov, new(mockAssets)), nil)
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/screenshot", strings.NewReader(`{"url":"https://example.com"}`))
		h.Preview(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing url", func(t *testing.T) {
		h := NewHTTPHandler(newPipeline(new(mockProvider), new(mockAssets)), nil)
		w := httptest.NewRecorder()
		h.Preview(w, httptest.NewRequest(http.MethodGet, "/api/screenshot", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid url", func(t *testing.T) {
		h := NewHTTPHandler(newPipeline(new(mockProvider), new(mockAssets)), nil)
		w := httptest.NewRecorder()
		h.Preview(w, httptest.NewRequest(http.MethodGet, "/api/screenshot?url=notaurl", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_URL")
	})

	t.Run("not configured", func(t *testing.T) {
		prov := new(mockProvider)
		prov.On("Configured").Return(false)
		h := NewHTTPHandler(newPipeline(prov, new(mockAssets)), nil)
		w := httptest.NewRecorder()
		h.Preview(w, httptest.NewRequest(http.MethodGet, "/api/screenshot?url=https://a.com", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestHTTPHandler_Batch(t *testing.T) {
	t.Run("mixed outcomes", func(t *testing.T) {
		srv, _ := renderServer(t, http.StatusOK, "", "img")
		prov := new(mockProvider)
		prov.On("Configured").Return(true)
		prov.On("SignedURL", mock.Anything).Return(srv.URL, nil)
		assets := new(mockAssets)
		assets.On("Store", mock.Anything, []byte("img"), mock.Anything).Return(cloudinary.Asset{URL: "https://res.cloudinary.com/x.jpg"}, nil)

		p := newPipeline(prov, assets)
		h := NewHTTPHandler(p, NewBatcher(p, 0, nil, nil))

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/screenshot/batch", strings.NewReader(`{"urls":["https://a.com","bad","https://c.com"]}`))
		h.Batch(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Data BatchResult `json:"data"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, BatchSummary{Total: 3, Successful: 2, Failed: 1}, body.Data.Summary)
		assert.Equal(t, "bad", body.Data.Items[1].URL)
		assert.False(t, body.Data.Items[1].Success)
	})

	t.Run("too many urls", func(t *testing.T) {
		urls := make([]string, 11)
		for i := range urls {
			urls[i] = "https://a.com"
		}
		payload, _ := json.Marshal(map[string]any{"urls": urls})

		h := NewHTTPHandler(newPipeline(new(mockProvider), new(mockAssets)), nil)
		w := httptest.NewRecorder()
		h.Batch(w, httptest.NewRequest(http.MethodPost, "/api/screenshot/batch", strings.NewReader(string(payload))))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("empty", func(t *testing.T) {
		h := NewHTTPHandler(newPipeline(new(mockProvider), new(mockAssets)), nil)
		w := httptest.NewRecorder()
		h.Batch(w, httptest.NewRequest(http.MethodPost, "/api/screenshot/batch", strings.NewReader(`{"urls":[]}`)))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("not configured", func(t *testing.T) {
		prov := new(mockProvider)
		prov.On("Configured").Return(false)
		h := NewHTTPHandler(newPipeline(prov, new(mockAssets)), nil)
		w := httptest.NewRecorder()
		h.Batch(w, httptest.NewRequest(http.MethodPost, "/api/screenshot/batch", strings.NewReader(`{"urls":["https://a.com"]}`)))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ValidateTarget("nope"), http.StatusBadRequest},
		{ErrProviderNotConfigured, http.StatusServiceUnavailable},
		{&FetchError{StatusCode: 500}, http.StatusBadGateway},
		{&UploadError{PublicID: "x"}, http.StatusBadGateway},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		got, _ := StatusOf(tt.err)
		assert.Equal(t, tt.want, got, tt.err.Error())
	}
}
