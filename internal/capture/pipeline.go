// Package capture renders a page through the screenshot provider, re-hosts
// the image on the asset host and returns the durable URL with metadata.
// It never writes records; callers persist the result.
package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"showcase/internal/platform/cloudinary"
	"showcase/internal/platform/logger"
	"showcase/internal/platform/screenshotone"
)

const (
	// Added to the render timeout to cover queueing and transfer.
	fetchSlack   = 15 * time.Second
	maxImageSize = 50 << 20
)

var errImageTooLarge = fmt.Errorf("rendered image exceeds %d bytes", maxImageSize)

type ScreenshotProvider interface {
	Configured() bool
	SignedURL(opts screenshotone.Options) (string, error)
}

type AssetRepository interface {
	Store(ctx context.Context, data []byte, publicID string) (cloudinary.Asset, error)
}

// Result is the outcome of one acquisition.
type Result struct {
	ScreenshotPath string    `json:"screenshotPath"`
	Metadata       *Metadata `json:"metadata,omitempty"`
}

type Pipeline struct {
	provider   ScreenshotProvider
	assets     AssetRepository
	httpClient *http.Client
	metrics    *Metrics
	log        logger.Logger
	stamps     *stamper
	maxImage   int64
}

func NewPipeline(provider ScreenshotProvider, assets AssetRepository, httpClient *http.Client, metrics *Metrics, log logger.Logger) *Pipeline {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Pipeline{
		provider:   provider,
		assets:     assets,
		httpClient: httpClient,
		metrics:    metrics,
		log:        log,
		stamps:     &stamper{now: time.Now},
		maxImage:   maxImageSize,
	}
}

// Configured reports whether the rendering provider has credentials.
func (p *Pipeline) Configured() bool {
	return p.provider.Configured()
}

// PreviewURL returns the signed render URL without downloading it.
func (p *Pipeline) PreviewURL(target string, h Hints) (string, error) {
	if err := ValidateTarget(target); err != nil {
		return "", err
	}
	if !p.provider.Configured() {
		return "", ErrProviderNotConfigured
	}
	return p.signedURL(BuildOptions(target, h))
}

// Acquire renders target, re-hosts the image and returns its durable URL.
// Steps run strictly in order; nothing is retried here.
func (p *Pipeline) Acquire(ctx context.Context, target string, h Hints) (res Result, err error) {
	start := time.Now()
	defer func() {
		p.metrics.observeCapture(outcomeOf(err), time.Since(start).Seconds())
	}()

	if err := ValidateTarget(target); err != nil {
		return Result{}, err
	}
	if !p.provider.Configured() {
		return Result{}, ErrProviderNotConfigured
	}

	opts := BuildOptions(target, h)
	signed, err := p.signedURL(opts)
	if err != nil {
		return Result{}, err
	}

	image, meta, err := p.fetch(ctx, signed, opts.Timeout+fetchSlack)
	if err != nil {
		return Result{}, err
	}

	publicID := p.identifier(target, h)
	asset, err := p.assets.Store(ctx, image, publicID)
	if err != nil {
		return Result{}, &UploadError{PublicID: publicID, Err: err}
	}

	p.log.Info("screenshot stored",
		logger.String("target", target),
		logger.String("public_id", publicID),
		logger.String("url", asset.URL),
		logger.Bool("fonts", meta != nil),
	)

	return Result{ScreenshotPath: asset.URL, Metadata: meta}, nil
}

func (p *Pipeline) signedURL(opts screenshotone.Options) (string, error) {
	signed, err := p.provider.SignedURL(opts)
	if errors.Is(err, screenshotone.ErrNotConfigured) {
		return "", ErrProviderNotConfigured
	}
	if err != nil {
		return "", fmt.Errorf("capture: sign render url: %w", err)
	}
	return signed, nil
}

func (p *Pipeline) fetch(ctx context.Context, signed string, timeout time.Duration) ([]byte, *Metadata, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, signed, nil)
	if err != nil {
		return nil, nil, &FetchError{Err: err}
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, nil, &FetchError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, nil, &FetchError{StatusCode: resp.StatusCode}
	}

	if resp.ContentLength > p.maxImage {
		return nil, nil, &FetchError{Err: errImageTooLarge}
	}

	meta := parseFonts(resp.Header.Get(screenshotone.FontsHeader))

	// one byte past the limit tells a full image from a truncated one
	image, err := io.ReadAll(io.LimitReader(resp.Body, p.maxImage+1))
	if err != nil {
		return nil, nil, &FetchError{Err: err}
	}
	if int64(len(image)) > p.maxImage {
		return nil, nil, &FetchError{Err: errImageTooLarge}
	}
	return image, meta, nil
}

// ValidateTarget accepts absolute http(s) URLs with a host.
func ValidateTarget(target string) error {
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidInput, target)
	}
	return nil
}
