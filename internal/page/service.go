package page

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"showcase/internal/capture"
	"showcase/internal/platform/cloudinary"
	"showcase/internal/platform/logger"
	"showcase/internal/product"
)

const slugAttempts = 3

type Deps struct {
	Capturer product.Capturer
	Assets   product.AssetRemover
	Log      logger.Logger
}

// Service provides page business logic.
type Service struct {
	repo     Repository
	products Products
	capturer product.Capturer
	assets   product.AssetRemover
	log      logger.Logger
}

func NewService(repo Repository, products Products, deps Deps) *Service {
	s := &Service{
		repo:     repo,
		products: products,
		capturer: deps.Capturer,
		assets:   deps.Assets,
		log:      deps.Log,
	}
	if s.log == nil {
		s.log = logger.NewNop()
	}
	return s
}

func (s *Service) List(ctx context.Context, q Query) ([]Page, int, error) {
	items, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	for i := range items {
		items[i].decorate()
	}
	return items, total, nil
}

func (s *Service) Get(ctx context.Context, id string) (Page, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return Page{}, err
	}
	p.decorate()
	return p, nil
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (Page, error) {
	p, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return Page{}, err
	}
	p.decorate()
	return p, nil
}

// Create stores a page under an existing product. Without an explicit
// screenshot one is captured with the product name and page type as hints;
// capture failures are logged only.
func (s *Service) Create(ctx context.Context, in CreateInput) (SaveResult, error) {
	parent, err := s.parent(ctx, in.SaasID)
	if err != nil {
		return SaveResult{}, err
	}

	p := Page{
		SaasID:      parent.ID,
		Title:       in.Title,
		Description: in.Description,
		PageURL:     in.PageURL,
		PageType:    in.PageType,
		Tags:        in.Tags,
		Metadata:    in.Metadata,
	}

	captured := false
	if in.ScreenshotURL != nil && *in.ScreenshotURL != "" {
		p.ScreenshotURL = in.ScreenshotURL
	} else {
		captured = s.tryCapture(ctx, &p, parent.Name)
	}

	if err := s.insert(ctx, &p, parent.Slug); err != nil {
		return SaveResult{}, err
	}
	p.decorate()
	return SaveResult{Page: p, ScreenshotCaptured: captured}, nil
}

// CreateLanding stores the landing page of a freshly created product, reusing
// its image.
func (s *Service) CreateLanding(ctx context.Context, parent product.Product) error {
	p := Page{
		SaasID:        parent.ID,
		Title:         parent.Name,
		Description:   parent.Description,
		PageURL:       parent.URL,
		PageType:      product.DefaultPageType,
		ScreenshotURL: parent.ImageURL,
		Tags:          parent.Tags,
		Metadata:      parent.Metadata,
	}
	return s.insert(ctx, &p, parent.Slug)
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (SaveResult, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return SaveResult{}, err
	}

	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.PageURL != nil {
		p.PageURL = *in.PageURL
	}
	if in.PageType != nil {
		p.PageType = *in.PageType
	}
	if in.Tags != nil {
		p.Tags = *in.Tags
	}
	if in.Metadata != nil {
		p.Metadata = *in.Metadata
	}
	if in.ScreenshotURL != nil {
		if *in.ScreenshotURL == "" {
			p.ScreenshotURL = nil
		} else {
			p.ScreenshotURL = in.ScreenshotURL
		}
	}

	captured := false
	if in.RecaptureScreenshot {
		parent, err := s.parent(ctx, p.SaasID)
		if err != nil {
			return SaveResult{}, err
		}
		captured = s.tryCapture(ctx, &p, parent.Name)
	}

	if err := s.repo.Update(ctx, &p); err != nil {
		return SaveResult{}, err
	}
	p.decorate()
	return SaveResult{Page: p, ScreenshotCaptured: captured}, nil
}

// Recapture replaces the page screenshot and returns capture errors.
func (s *Service) Recapture(ctx context.Context, id string) (Page, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return Page{}, err
	}
	parent, err := s.parent(ctx, p.SaasID)
	if err != nil {
		return Page{}, err
	}
	if s.capturer == nil {
		return Page{}, capture.ErrProviderNotConfigured
	}

	res, err := s.capturer.Acquire(ctx, p.PageURL, capture.Hints{Name: parent.Name, PageType: p.PageType})
	if err != nil {
		return Page{}, err
	}

	updated, err := s.repo.SetScreenshot(ctx, p.ID, res.ScreenshotPath, res.Metadata.MergeInto(p.Metadata))
	if err != nil {
		return Page{}, err
	}
	updated.decorate()
	return updated, nil
}

// Delete removes the page and, best effort, its hosted screenshot. The asset
// is kept while the parent product's image still points at it.
func (s *Service) Delete(ctx context.Context, id string) error {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	screenshot, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if s.assets == nil || screenshot == nil {
		return nil
	}
	publicID, ok := cloudinary.PublicIDFromURL(*screenshot)
	if !ok {
		return nil
	}
	shared, err := s.sharedWithParent(ctx, p.SaasID, publicID)
	if err != nil {
		s.log.Warn("asset cleanup skipped: parent lookup failed",
			logger.String("public_id", publicID),
			logger.Err(err),
		)
		return nil
	}
	if shared {
		return nil
	}
	if err := s.assets.Delete(ctx, publicID); err != nil {
		s.log.Warn("asset cleanup failed",
			logger.String("public_id", publicID),
			logger.Err(err),
		)
	}
	return nil
}

// sharedWithParent reports whether the parent product's image is the asset
// publicID. A missing parent shares nothing.
func (s *Service) sharedWithParent(ctx context.Context, saasID, publicID string) (bool, error) {
	parent, err := s.parent(ctx, saasID)
	if errors.Is(err, ErrParentNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if parent.ImageURL == nil {
		return false, nil
	}
	parentID, ok := cloudinary.PublicIDFromURL(*parent.ImageURL)
	return ok && parentID == publicID, nil
}

func (s *Service) parent(ctx context.Context, saasID string) (product.Product, error) {
	parent, err := s.products.Get(ctx, saasID)
	if errors.Is(err, product.ErrNotFound) {
		return product.Product{}, ErrParentNotFound
	}
	return parent, err
}

func (s *Service) tryCapture(ctx context.Context, p *Page, productName string) bool {
	if s.capturer == nil || !s.capturer.Configured() {
		s.log.Warn("screenshot capture skipped: provider not configured", logger.String("url", p.PageURL))
		return false
	}
	res, err := s.capturer.Acquire(ctx, p.PageURL, capture.Hints{Name: productName, PageType: p.PageType})
	if err != nil {
		s.log.Warn("screenshot capture failed",
			logger.String("url", p.PageURL),
			logger.Err(err),
		)
		return false
	}
	p.ScreenshotURL = &res.ScreenshotPath
	p.Metadata = res.Metadata.MergeInto(p.Metadata)
	return true
}

func (s *Service) insert(ctx context.Context, p *Page, productSlug string) error {
	base := capture.Slugify(productSlug + "-" + p.PageType)

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
