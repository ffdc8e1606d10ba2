package page

import (
	"errors"
	"time"

	"showcase/internal/platform/cloudinary"
)

var (
	// ErrNotFound is returned when a page does not exist.
	ErrNotFound = errors.New("page not found")
	// ErrSlugTaken is returned by the repository on a unique slug violation.
	ErrSlugTaken = errors.New("page slug already taken")
	// ErrParentNotFound is returned when the referenced product does not exist.
	ErrParentNotFound = errors.New("parent product not found")
)

var thumbnail = cloudinary.Transform{Width: 1200}

// Page is one showcased page of a product (pricing, features, ...).
type Page struct {
	ID            string         `json:"id"`
	SaasID        string         `json:"saasId"`
	Slug          string         `json:"slug"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	PageURL       string         `json:"pageUrl"`
	ScreenshotURL *string        `json:"screenshotUrl"`
	PageType      string         `json:"pageType"`
	Tags          []string       `json:"tags"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	ThumbnailURL  string         `json:"thumbnailUrl,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

func (p *Page) decorate() {
	p.ThumbnailURL = ""
	if p.ScreenshotURL != nil && *p.ScreenshotURL != "" {
		p.ThumbnailURL = cloudinary.DisplayURL(*p.ScreenshotURL, thumbnail)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
}

type Query struct {
	SaasID   string
	PageType string
	Search   string
	Limit    int
	Offset   int
}

type CreateInput struct {
	SaasID        string         `json:"saasId" validate:"required,uuid"`
	Title         string         `json:"title" validate:"required,max=200"`
	Description   string         `json:"description" validate:"max=2000"`
	PageURL       string         `json:"pageUrl" validate:"required,absurl"`
	PageType      string         `json:"pageType" validate:"required,pagetype"`
	ScreenshotURL *string        `json:"screenshotUrl" validate:"omitempty,absurl"`
	Tags          []string       `json:"tags" validate:"omitempty,max=20,dive,required,max=50"`
	Metadata      map[string]any `json:"metadata"`
}

// UpdateInput is a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Title               *string         `json:"title" validate:"omitempty,min=1,max=200"`
	Description         *string         `json:"description" validate:"omitempty,max=2000"`
	PageURL             *string         `json:"pageUrl" validate:"omitempty,absurl"`
	PageType            *string         `json:"pageType" validate:"omitempty,pagetype"`
	ScreenshotURL       *string         `json:"screenshotUrl"`
	Tags                *[]string       `json:"tags" validate:"omitempty,max=20,dive,required,max=50"`
	Metadata            *map[string]any `json:"metadata"`
	RecaptureScreenshot bool            `json:"recaptureScreenshot"`
}

type SaveResult struct {
	Page
	ScreenshotCaptured bool `json:"screenshotCaptured"`
}
