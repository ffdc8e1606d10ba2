// Package cloudinary re-hosts image buffers on Cloudinary and rewrites
// delivery URLs for on-the-fly transformations.
package cloudinary

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

var (
	// ErrNotConfigured is returned when cloud name, API key or secret is missing.
	ErrNotConfigured = errors.New("cloudinary: cloud name, api key and api secret are required")
	// ErrEmptyUpload is returned for an empty buffer.
	ErrEmptyUpload = errors.New("cloudinary: empty image buffer")
	// ErrNoResult is returned when the host answers without a delivery URL.
	ErrNoResult = errors.New("cloudinary: upload returned no result")
)

const (
	defaultFolder        = "saas-showcase"
	defaultUploadTimeout = 60 * time.Second
	// Applied on ingest so the stored derivative is already compressed.
	incomingTransformation = "q_auto:good,f_auto"
)

// Asset is a stored image.
type Asset struct {
	URL      string
	PublicID string
}

type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

type Client struct {
	upload        uploadAPI
	folder        string
	uploadTimeout time.Duration
	configured    bool
}

// NewClient builds a client from explicit credentials. Missing credentials do
// not fail construction; Store reports ErrNotConfigured instead so callers can
// run without an asset host.
func NewClient(cloudName, apiKey, apiSecret, folder string) (*Client, error) {
	if folder == "" {
		folder = defaultFolder
	}
	c := &Client{folder: folder, uploadTimeout: defaultUploadTimeout}
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return c, nil
	}

	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: init: %w", err)
	}
	cld.Config.URL.Secure = true
	c.upload = &cld.Upload
	c.configured = true
	return c, nil
}

// Configured reports whether credentials were supplied.
func (c *Client) Configured() bool {
	return c.configured
}

// Store uploads data under folder/publicID. Repeated uploads with the same
// publicID overwrite the previous asset.
func (c *Client) Store(ctx context.Context, data []byte, publicID string) (Asset, error) {
	if !c.configured {
		return Asset{}, ErrNotConfigured
	}
	if len(data) == 0 {
		return Asset{}, ErrEmptyUpload
	}

	ctx, cancel := context.WithTimeout(ctx, c.uploadTimeout)
	defer cancel()

	res, err := c.upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		PublicID:       publicID,
		Folder:         c.folder,
		Overwrite:      api.Bool(true),
		Invalidate:     api.Bool(true),
		ResourceType:   "image",
		Format:         "jpg",
		Transformation: incomingTransformation,
	})
	if err != nil {
		return Asset{}, fmt.Errorf("cloudinary: upload %s: %w", publicID, err)
	}
	if res == nil || res.SecureURL == "" {
		if res != nil && res.Error.Message != "" {
			return Asset{}, fmt.Errorf("%w: %s", ErrNoResult, res.Error.Message)
		}
		return Asset{}, ErrNoResult
	}

	return Asset{URL: res.SecureURL, PublicID: res.PublicID}, nil
}

// Delete removes an asset. Callers treat failures as non-fatal.
func (c *Client) Delete(ctx context.Context, publicID string) error {
	if !c.configured {
		return ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, c.uploadTimeout)
	defer cancel()

	res, err := c.upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("cloudinary: destroy %s: %w", publicID, err)
	}
	if res != nil && res.Error.Message != "" {
		return fmt.Errorf("cloudinary: destroy %s: %s", publicID, res.Error.Message)
	}
	return nil
}
