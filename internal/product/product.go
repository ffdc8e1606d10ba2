package product

import (
	"errors"
	"slices"
	"time"

	"showcase/internal/platform/cloudinary"
)

var (
	// ErrNotFound is returned when a product does not exist.
	ErrNotFound = errors.New("product not found")
	// ErrSlugTaken is returned by the repository on a unique slug violation.
	ErrSlugTaken = errors.New("product slug already taken")
	// ErrInvalidPageType is returned for page types outside PageTypes.
	ErrInvalidPageType = errors.New("invalid page type")
)

// Categories is the closed set of product categories, in display order.
var Categories = []string{
	"AI/ML",
	"Analytics",
	"CRM",
	"Developer Tools",
	"E-commerce",
	"Marketing",
	"Productivity",
	"Design",
	"Communication",
	"Finance",
	"Other",
}

// PageTypes is the closed set of showcase page types.
var PageTypes = []string{
	"landing", "pricing", "features", "about", "blog", "testimonials", "faq",
	"contact", "comparison", "resource", "demo", "dashboard", "other",
}

const DefaultPageType = "landing"

func ValidPageType(t string) bool {
	return slices.Contains(PageTypes, t)
}

// thumbnail is the delivery transform used for list and detail thumbnails.
var thumbnail = cloudinary.Transform{Width: 1200}

// Product is a showcased SaaS product.
type Product struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	URL          string         `json:"url"`
	Category     string         `json:"category"`
	PageType     string         `json:"pageType"`
	Tags         []string       `json:"tags"`
	Featured     bool           `json:"featured"`
	ImageURL     *string        `json:"imageUrl"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	Slug         string         `json:"slug"`
	ThumbnailURL string         `json:"thumbnailUrl,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

func (p *Product) decorate() {
	p.ThumbnailURL = ""
	if p.ImageURL != nil && *p.ImageURL != "" {
		p.ThumbnailURL = cloudinary.DisplayURL(*p.ImageURL, thumbnail)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
}

// Query defines filters and pagination for listing products.
type Query struct {
	Category string
	Featured *bool
	Search   string
	PageType string
	Limit    int
	Offset   int
}

type CreateInput struct {
	Name        string         `json:"name" validate:"required,max=200"`
	Description string         `json:"description" validate:"required,max=2000"`
	URL         string         `json:"url" validate:"required,absurl"`
	Category    string         `json:"category" validate:"required,category"`
	PageType    string         `json:"pageType" validate:"omitempty,pagetype"`
	Tags        []string       `json:"tags" validate:"omitempty,max=20,dive,required,max=50"`
	Featured    bool           `json:"featured"`
	ImageURL    *string        `json:"imageUrl" validate:"omitempty,absurl"`
	Metadata    map[string]any `json:"metadata"`
}

// UpdateInput is a partial update; nil fields are left unchanged. An empty
// ImageURL clears the image.
type UpdateInput struct {
	Name                *string         `json:"name" validate:"omitempty,min=1,max=200"`
	Description         *string         `json:"description" validate:"omitempty,min=1,max=2000"`
	URL                 *string         `json:"url" validate:"omitempty,absurl"`
	Category            *string         `json:"category" validate:"omitempty,category"`
	PageType            *string         `json:"pageType" validate:"omitempty,pagetype"`
	Tags                *[]string       `json:"tags" validate:"omitempty,max=20,dive,required,max=50"`
	Featured            *bool           `json:"featured"`
	ImageURL            *string         `json:"imageUrl"`
	Metadata            *map[string]any `json:"metadata"`
	RecaptureScreenshot bool            `json:"recaptureScreenshot"`
}

// SaveResult is returned by Create and Update.
type SaveResult struct {
	Product
	ScreenshotCaptured bool `json:"screenshotCaptured"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}
