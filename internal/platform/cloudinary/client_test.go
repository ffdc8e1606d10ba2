package cloudinary

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUploadAPI struct {
	mock.Mock
}

func (m *mockUploadAPI) Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	body, _ := io.ReadAll(file.(io.Reader))
	args := m.Called(string(body), params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*uploader.UploadResult), args.Error(1)
}

func (m *mockUploadAPI) Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error) {
	args := m.Called(params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*uploader.DestroyResult), args.Error(1)
}

func newTestClient(m *mockUploadAPI) *Client {
	return &Client{upload: m, folder: "saas-showcase", uploadTimeout: time.Second, configured: true}
}

func TestNewClient_Unconfigured(t *testing.T) {
	c, err := NewClient("", "key", "secret", "")
	require.NoError(t, err)
	assert.False(t, c.Configured())

	_, err = c.Store(context.Background(), []byte("img"), "id")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, c.Delete(context.Background(), "id"), ErrNotConfigured)
}

func TestNewClient_Configured(t *testing.T) {
	c, err := NewClient("demo", "key", "secret", "custom")
	require.NoError(t, err)
	assert.True(t, c.Configured())
	assert.Equal(t, "custom", c.folder)
}

func TestClient_Store(t *testing.T) {
	ctx := context.Background()

	t.Run("success overwrites same public id", func(t *testing.T) {
		m := new(mockUploadAPI)
		m.On("Upload", "jpeg-bytes", mock.MatchedBy(func(p uploader.UploadParams) bool {
			return p.PublicID == "stripe-pricing" &&
				p.Folder == "saas-showcase" &&
				p.Overwrite != nil && *p.Overwrite &&
				p.Transformation == incomingTransformation
		})).Return(&uploader.UploadResult{
			SecureURL: "https://res.cloudinary.com/demo/image/upload/v1/saas-showcase/stripe-pricing.jpg",
			PublicID:  "saas-showcase/stripe-pricing",
		}, nil)

		asset, err := newTestClient(m).Store(ctx, []byte("jpeg-bytes"), "stripe-pricing")
		require.NoError(t, err)
		assert.Equal(t, "saas-showcase/stripe-pricing", asset.PublicID)
		assert.Contains(t, asset.URL, "/upload/")
		m.AssertExpectations(t)
	})

	t.Run("empty buffer", func(t *testing.T) {
		m := new(mockUploadAPI)
		_, err := newTestClient(m).Store(ctx, nil, "id")
		assert.ErrorIs(t, err, ErrEmptyUpload)
		m.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
	})

	t.Run("transport error", func(t *testing.T) {
		m := new(mockUploadAPI)
		m.On("Upload", "x", mock.Anything).Return(nil, errors.New("connection reset"))

		_, err := newTestClient(m).Store(ctx, []byte("x"), "id")
		assert.ErrorContains(t, err, "connection reset")
	})

	t.Run("no result", func(t *testing.T) {
		m := new(mockUploadAPI)
		m.On("Upload", "x", mock.Anything).Return(&uploader.UploadResult{
			Error: api.ErrorResp{Message: "Invalid image file"},
		}, nil)

		_, err := newTestClient(m).Store(ctx, []byte("x"), "id")
		assert.ErrorIs(t, err, ErrNoResult)
		assert.ErrorContains(t, err, "Invalid image file")
	})
}

func TestClient_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		m := new(mockUploadAPI)
		m.On("Destroy", uploader.DestroyParams{PublicID: "saas-showcase/a"}).Return(&uploader.DestroyResult{Result: "ok"}, nil)
		assert.NoError(t, newTestClient(m).Delete(ctx, "saas-showcase/a"))
	})

	t.Run("host error", func(t *testing.T) {
		m := new(mockUploadAPI)
		m.On("Destroy", mock.Anything).Return(&uploader.DestroyResult{Error: api.ErrorResp{Message: "not allowed"}}, nil)
		assert.ErrorContains(t, newTestClient(m).Delete(ctx, "a"), "not allowed")
	})
}
