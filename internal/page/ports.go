package page

//go:generate mockgen -destination=mock_repository.go -package=page showcase/internal/page Repository

import (
	"context"

	"showcase/internal/product"
)

// Repository defines the contract for page storage.
type Repository interface {
	List(ctx context.Context, q Query) ([]Page, int, error)
	Get(ctx context.Context, id string) (Page, error)
	GetBySlug(ctx context.Context, slug string) (Page, error)
	// Create assigns ID and timestamps. A duplicate slug yields ErrSlugTaken.
	Create(ctx context.Context, p *Page) error
	Update(ctx context.Context, p *Page) error
	SetScreenshot(ctx context.Context, id, screenshotURL string, metadata map[string]any) (Page, error)
	// Delete returns the stored screenshot URL, if any.
	Delete(ctx context.Context, id string) (*string, error)
}

// Products resolves the parent product of a page.
type Products interface {
	Get(ctx context.Context, id string) (product.Product, error)
}
