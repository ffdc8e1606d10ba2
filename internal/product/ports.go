package product

//go:generate mockgen -destination=mock_repository.go -package=product showcase/internal/product Repository

import (
	"context"

	"showcase/internal/capture"
)

// Repository defines the contract for product storage.
type Repository interface {
	List(ctx context.Context, q Query) ([]Product, int, error)
	Get(ctx context.Context, id string) (Product, error)
	GetBySlug(ctx context.Context, slug string) (Product, error)
	// Create assigns ID and timestamps. A duplicate slug yields ErrSlugTaken.
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	SetImage(ctx context.Context, id, imageURL string, metadata map[string]any) (Product, error)
	ListMissingImage(ctx context.Context, pageType string) ([]Product, error)
	// Delete removes the product with its pages and returns every stored
	// image URL that belonged to them.
	Delete(ctx context.Context, id string) ([]string, error)
	CategoryCounts(ctx context.Context) (map[string]int, error)
}

// Capturer acquires and re-hosts screenshots.
type Capturer interface {
	Configured() bool
	Acquire(ctx context.Context, target string, h capture.Hints) (capture.Result, error)
}

// BatchRunner executes capture jobs sequentially under a throttle.
type BatchRunner interface {
	Do(ctx context.Context, jobs []capture.Job) capture.BatchResult
}

// AssetRemover deletes hosted images by public id.
type AssetRemover interface {
	Delete(ctx context.Context, publicID string) error
}

// LandingPages creates the landing showcase page for a new product.
type LandingPages interface {
	CreateLanding(ctx context.Context, p Product) error
}
