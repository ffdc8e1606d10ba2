package capture

import "showcase/internal/platform/screenshotone"

// Hints are the caller-supplied identity and viewport overrides for one capture.
type Hints struct {
	Name           string `json:"name,omitempty"`
	PageType       string `json:"pageType,omitempty"`
	FullPage       *bool  `json:"fullPage,omitempty"`
	ViewportWidth  int    `json:"viewportWidth,omitempty"`
	ViewportHeight int    `json:"viewportHeight,omitempty"`
}

// BuildOptions merges hints over the provider defaults. Every entry point
// (create, update, recapture, batch, preview) goes through here.
func BuildOptions(target string, h Hints) screenshotone.Options {
	opts := screenshotone.DefaultOptions(target)
	if h.FullPage != nil {
		opts.FullPage = *h.FullPage
	}
	if h.ViewportWidth > 0 {
		opts.ViewportWidth = h.ViewportWidth
	}
	if h.ViewportHeight > 0 {
		opts.ViewportHeight = h.ViewportHeight
	}
	return opts
}
