package capture

import (
	"encoding/json"
	"net/url"
)

// Metadata is what the rendering service reports about the captured page.
type Metadata struct {
	Fonts []any `json:"fonts,omitempty"`
}

// MergeInto copies the metadata onto a record's metadata bag, returning the bag.
func (m *Metadata) MergeInto(bag map[string]any) map[string]any {
	if m == nil {
		return bag
	}
	if bag == nil {
		bag = make(map[string]any)
	}
	if len(m.Fonts) > 0 {
		bag["fonts"] = m.Fonts
	}
	return bag
}

// parseFonts decodes the percent-encoded JSON array from the fonts header.
// Absent or malformed values yield nil.
func parseFonts(header string) *Metadata {
	if header == "" {
		return nil
	}
	decoded, err := url.PathUnescape(header)
	if err != nil {
		return nil
	}
	var fonts []any
	if err := json.Unmarshal([]byte(decoded), &fonts); err != nil || len(fonts) == 0 {
		return nil
	}
	return &Metadata{Fonts: fonts}
}
