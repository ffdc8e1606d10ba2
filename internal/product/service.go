package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"showcase/internal/capture"
	"showcase/internal/platform/cloudinary"
	"showcase/internal/platform/logger"
)

const slugAttempts = 3

// Deps are the optional collaborators of Service. Nil members disable the
// corresponding behaviour.
type Deps struct {
	Capturer Capturer
	Batch    BatchRunner
	Assets   AssetRemover
	Pages    LandingPages
	Log      logger.Logger
}

// Service provides product business logic.
type Service struct {
	repo     Repository
	capturer Capturer
	batch    BatchRunner
	assets   AssetRemover
	pages    LandingPages
	log      logger.Logger
}

// NewService creates a new product service.
func NewService(repo Repository, deps Deps) *Service {
	s := &Service{
		repo:     repo,
		capturer: deps.Capturer,
		batch:    deps.Batch,
		assets:   deps.Assets,
		pages:    deps.Pages,
		log:      deps.Log,
	}
	if s.log == nil {
		s.log = logger.NewNop()
	}
	if s.batch == nil {
		s.batch = capture.NewBatcher(nil, 0, nil, s.log)
	}
	return s
}

// SetLandingPages wires the page service after construction; the two
// services reference each other.
func (s *Service) SetLandingPages(pages LandingPages) {
	s.pages = pages
}

func (s *Service) List(ctx context.Context, q Query) ([]Product, int, error) {
	items, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	for i := range items {
		items[i].decorate()
	}
	return items, total, nil
}

func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	p.decorate()
	return p, nil
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (Product, error) {
	p, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return Product{}, err
	}
	p.decorate()
	return p, nil
}

// Create stores a product. Without an explicit image a screenshot is
// captured; capture failures are logged and the product is stored without
// an image. A landing page is created alongside.
func (s *Service) Create(ctx context.Context, in CreateInput) (SaveResult, error) {
	p := Product{
		Name:        in.Name,
		Description: in.Description,
		URL:         in.URL,
		Category:    in.Category,
		PageType:    in.PageType,
		Tags:        in.Tags,
		Featured:    in.Featured,
		Metadata:    in.Metadata,
	}
	if p.PageType == "" {
		p.PageType = DefaultPageType
	}

	captured := false
	if in.ImageURL != nil && *in.ImageURL != "" {
		p.ImageURL = in.ImageURL
	} else {
		captured = s.tryCapture(ctx, &p)
	}

	if err := s.insert(ctx, &p); err != nil {
		return SaveResult{}, err
	}

	if s.pages != nil {
		if err := s.pages.CreateLanding(ctx, p); err != nil {
			s.log.Warn("landing page creation failed",
				logger.String("product_id", p.ID),
				logger.Err(err),
			)
		}
	}

	p.decorate()
	return SaveResult{Product: p, ScreenshotCaptured: captured}, nil
}

// Update applies a partial update. RecaptureScreenshot triggers a soft-fail
// capture using the updated name, page type and url.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (SaveResult, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return SaveResult{}, err
	}

	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.URL != nil {
		p.URL = *in.URL
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.PageType != nil {
		p.PageType = *in.PageType
	}
	if in.Tags != nil {
		p.Tags = *in.Tags
	}
	if in.Featured != nil {
		p.Featured = *in.Featured
	}
	if in.Metadata != nil {
		p.Metadata = *in.Metadata
	}
	if in.ImageURL != nil {
		if *in.ImageURL == "" {
			p.ImageURL = nil
		} else {
			p.ImageURL = in.ImageURL
		}
	}

	captured := false
	if in.RecaptureScreenshot {
		captured = s.tryCapture(ctx, &p)
	}

	if err := s.repo.Update(ctx, &p); err != nil {
		return SaveResult{}, err
	}
	p.decorate()
	return SaveResult{Product: p, ScreenshotCaptured: captured}, nil
}

// Recapture replaces the product image. Unlike Create and Update, capture
// errors are returned to the caller.
func (s *Service) Recapture(ctx context.Context, id string) (Product, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if s.capturer == nil {
		return Product{}, capture.ErrProviderNotConfigured
	}

	res, err := s.capturer.Acquire(ctx, p.URL, capture.Hints{Name: p.Name, PageType: p.PageType})
	if err != nil {
		return Product{}, err
	}

	updated, err := s.repo.SetImage(ctx, p.ID, res.ScreenshotPath, res.Metadata.MergeInto(p.Metadata))
	if err != nil {
		return Product{}, err
	}
	updated.decorate()
	return updated, nil
}

// BulkRecapture captures every product of pageType that has no image, one at
// a time through the batch throttle.
func (s *Service) BulkRecapture(ctx context.Context, pageType string) (capture.BatchResult, error) {
	if pageType == "" {
		pageType = DefaultPageType
	}
	if !ValidPageType(pageType) {
		return capture.BatchResult{}, fmt.Errorf("%w: %q", ErrInvalidPageType, pageType)
	}
	if !s.captureConfigured() {
		return capture.BatchResult{}, capture.ErrProviderNotConfigured
	}

	products, err := s.repo.ListMissingImage(ctx, pageType)
	if err != nil {
		return capture.BatchResult{}, err
	}

	jobs := make([]capture.Job, len(products))
	for i, p := range products {
		p := p
		jobs[i] = capture.Job{
			ID:  p.ID,
			URL: p.URL,
			Run: func(ctx context.Context) (capture.Result, error) {
				res, err := s.capturer.Acquire(ctx, p.URL, capture.Hints{Name: p.Name, PageType: p.PageType})
				if err != nil {
					return capture.Result{}, err
				}
				if _, err := s.repo.SetImage(ctx, p.ID, res.ScreenshotPath, res.Metadata.MergeInto(p.Metadata)); err != nil {
					return capture.Result{}, fmt.Errorf("save image: %w", err)
				}
				return res, nil
			},
		}
	}

	result := s.batch.Do(ctx, jobs)
	s.log.Info("bulk recapture finished",
		logger.String("page_type", pageType),
		logger.Int("total", result.Summary.Total),
		logger.Int("failed", result.Summary.Failed),
	)
	return result, nil
}

// Delete removes the product and its pages, then deletes their hosted
// images. Asset deletion failures are logged only.
func (s *Service) Delete(ctx context.Context, id string) error {
	urls, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.removeAssets(ctx, urls)
	return nil
}

func (s *Service) Categories(ctx context.Context) ([]CategoryCount, error) {
	counts, err := s.repo.CategoryCounts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryCount, len(Categories))
	for i, c := range Categories {
		out[i] = CategoryCount{Category: c, Count: counts[c]}
	}
	return out, nil
}

func (s *Service) captureConfigured() bool {
	return s.capturer != nil && s.capturer.Configured()
}

// tryCapture sets the image and merges font metadata on success.
func (s *Service) tryCapture(ctx context.Context, p *Product) bool {
	if !s.captureConfigured() {
		s.log.Warn("screenshot capture skipped: provider not configured", logger.String("url", p.URL))
		return false
	}
	res, err := s.capturer.Acquire(ctx, p.URL, capture.Hints{Name: p.Name, PageType: p.PageType})
	if err != nil {
		s.log.Warn("screenshot capture failed",
			logger.String("url", p.URL),
			logger.Err(err),
		)
		return false
	}
	p.ImageURL = &res.ScreenshotPath
	p.Metadata = res.Metadata.MergeInto(p.Metadata)
	return true
}

func (s *Service) insert(ctx context.Context, p *Product) error {
	base := capture.Slugify(p.Name)
	if base == "" {
		base = "product"
	}

	var err error
	for attempt := 0; attempt < slugAttempts; attempt++ {
		p.Slug = base
		if attempt > 0 {
			p.Slug = base + "-" + uuid.NewString()[:8]
		}
		err = s.repo.Create(ctx, p)
		if !errors.Is(err, ErrSlugTaken) {
			return err
		}
	}
	return err
}

func (s *Service) removeAssets(ctx context.Context, urls []string) {
	if s.assets == nil {
		return
	}
	for _, u := range urls {
		publicID, ok := cloudinary.PublicIDFromURL(u)
		if !ok {
			continue
		}
		if err := s.assets.Delete(ctx, publicID); err != nil {
			s.log.Warn("asset cleanup failed",
				logger.String("public_id", publicID),
				logger.Err(err),
			)
		}
	}
}
