package product

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"showcase/internal/capture"
)

func TestHTTPHandler_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(mockRepo, Deps{}))

	t.Run("success with filters", func(t *testing.T) {
		featured := true
		mockRepo.EXPECT().List(gomock.Any(), Query{
			Category: "CRM",
			Featured: &featured,
			Search:   "mail",
			Limit:    10,
			Offset:   10,
		}).Return([]Product{{ID: "1", Name: "Acme"}}, 11, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/saas?category=CRM&featured=true&search=mail&page=2&page_size=10", nil)
		handler.List(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Data []Product      `json:"data"`
			Meta map[string]any `json:"meta"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Len(t, body.Data, 1)
		assert.Equal(t, []string{}, body.Data[0].Tags)
		assert.Equal(t, 2.0, body.Meta["total_pages"])
	})

	t.Run("error", func(t *testing.T) {
		mockRepo.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, 0, errors.New("db error"))

		w := httptest.NewRecorder()
		handler.List(w, httptest.NewRequest(http.MethodGet, "/api/saas", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHTTPHandler_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(mockRepo, Deps{}))

	t.Run("success", func(t *testing.T) {
		mockRepo.EXPECT().Get(gomock.Any(), "p1").Return(Product{ID: "p1"}, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/saas/p1", nil)
		r.SetPathValue("id", "p1")
		handler.Get(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo.EXPECT().GetBySlug(gomock.Any(), "nope").Return(Product{}, ErrNotFound)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/saas/slug/nope", nil)
		r.SetPathValue("slug", "nope")
		handler.GetBySlug(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHTTPHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setup          func(repo *MockRepository)
		expectedStatus int
	}{
		{
			name: "created",
			body: `{"name":"Acme","description":"CRM for all","url":"https://acme.io","category":"CRM","tags":["crm"]}`,
			setup: func(repo *MockRepository) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing fields",
			body:           `{"name":"Acme"}`,
			setup:          func(repo *MockRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown category",
			body:           `{"name":"Acme","description":"d","url":"https://acme.io","category":"Games"}`,
			setup:          func(repo *MockRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "relative url",
			body:           `{"name":"Acme","description":"d","url":"acme.io","category":"CRM"}`,
			setup:          func(repo *MockRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad page type",
			body:           `{"name":"Acme","description":"d","url":"https://acme.io","category":"CRM","pageType":"home"}`,
			setup:          func(repo *MockRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid json",
			body:           `{`,
			setup:          func(repo *MockRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			mockRepo := NewMockRepository(ctrl)
			tt.setup(mockRepo)
			handler := NewHTTPHandler(NewService(mockRepo, Deps{}))

			w := httptest.NewRecorder()
			handler.Create(w, httptest.NewRequest(http.MethodPost, "/api/saas", strings.NewReader(tt.body)))

			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
		})
	}
}

func TestHTTPHandler_Update_InvalidImageURL(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	handler := NewHTTPHandler(NewService(NewMockRepository(ctrl), Deps{}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPut, "/api/saas/p1", strings.NewReader(`{"imageUrl":"nope"}`))
	r.SetPathValue("id", "p1")
	handler.Update(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHTTPHandler_Recapture_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"fetch failed", &capture.FetchError{StatusCode: 500}, http.StatusBadGateway},
		{"upload failed", &capture.UploadError{PublicID: "x", Err: errors.New("boom")}, http.StatusBadGateway},
		{"not configured", capture.ErrProviderNotConfigured, http.StatusServiceUnavailable},
		{"invalid url", capture.ValidateTarget("nope"), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			mockRepo := NewMockRepository(ctrl)
			capt := new(mockCapturer)

			mockRepo.EXPECT().Get(gomock.Any(), "p1").Return(Product{ID: "p1", URL: "https://a.com"}, nil)
			capt.On("Acquire", mock.Anything, mock.Anything, mock.Anything).Return(capture.Result{}, tt.err)

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/api/saas/p1/screenshot", nil)
			r.SetPathValue("id", "p1")
			NewHTTPHandler(NewService(mockRepo, Deps{Capturer: capt})).Recapture(w, r)

			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestHTTPHandler_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(mockRepo, Deps{}))

	mockRepo.EXPECT().Delete(gomock.Any(), "p1").Return(nil, nil)
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodDelete, "/api/saas/p1", nil)
	r.SetPathValue("id", "p1")
	handler.Delete(w, r)
	assert.Equal(t, http.StatusNoContent, w.Code)

	mockRepo.EXPECT().Delete(gomock.Any(), "p2").Return(nil, ErrNotFound)
	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodDelete, "/api/saas/p2", nil)
	r.SetPathValue("id", "p2")
	handler.Delete(w, r)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHTTPHandler_BulkRecapture(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	handler := NewHTTPHandler(NewService(NewMockRepository(ctrl), Deps{}))

	w := httptest.NewRecorder()
	handler.BulkRecapture(w, httptest.NewRequest(http.MethodPost, "/api/saas/bulk-screenshot", strings.NewReader(`{"pageType":"bogus"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	handler.BulkRecapture(w, httptest.NewRequest(http.MethodPost, "/api/saas/bulk-screenshot", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHTTPHandler_Categories(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	mockRepo.EXPECT().CategoryCounts(gomock.Any()).Return(map[string]int{}, nil)

	w := httptest.NewRecorder()
	NewHTTPHandler(NewService(mockRepo, Deps{})).Categories(w, httptest.NewRequest(http.MethodGet, "/api/categories", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
