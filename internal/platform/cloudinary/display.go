package cloudinary

import (
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
)

const (
	hostMarker   = "cloudinary.com"
	uploadMarker = "/upload/"
)

var (
	versionSegment = regexp.MustCompile(`^v\d+$`)
	transformKeys  = map[string]bool{"w": true, "h": true, "c": true, "q": true, "f": true, "dpr": true}
)

// Transform describes delivery-time adjustments. Zero values mean "not set".
type Transform struct {
	Width   int
	Height  int
	Crop    string
	Quality string
	Format  string
	DPR     string
}

func (t Transform) params() string {
	var p []string
	if t.Width > 0 {
		p = append(p, "w_"+strconv.Itoa(t.Width))
	}
	if t.Height > 0 {
		p = append(p, "h_"+strconv.Itoa(t.Height))
	}
	switch {
	case t.Crop != "":
		p = append(p, "c_"+t.Crop)
	case t.Width > 0 || t.Height > 0:
		// never upscale
		p = append(p, "c_limit")
	}
	p = append(p, "q_"+orDefault(t.Quality, "auto:good"))
	p = append(p, "f_"+orDefault(t.Format, "auto"))
	p = append(p, "dpr_"+orDefault(t.DPR, "auto"))
	return strings.Join(p, ",")
}

// DisplayURL rewrites a stored Cloudinary URL so the transformation is applied
// at fetch time. An existing transformation segment is replaced, so applying
// the same Transform twice yields the same URL. Other URLs are returned as is.
func DisplayURL(stored string, t Transform) string {
	prefix, rest, ok := splitUpload(stored)
	if !ok {
		return stored
	}
	if seg, tail, found := strings.Cut(rest, "/"); found && isTransformation(seg) {
		rest = tail
	}
	return prefix + t.params() + "/" + rest
}

// PublicIDFromURL extracts "folder/id" from a stored delivery URL.
func PublicIDFromURL(stored string) (string, bool) {
	_, rest, ok := splitUpload(stored)
	if !ok {
		return "", false
	}
	segments := strings.Split(rest, "/")
	for len(segments) > 1 && isTransformation(segments[0]) {
		segments = segments[1:]
	}
	if len(segments) > 1 && versionSegment.MatchString(segments[0]) {
		segments = segments[1:]
	}
	id := strings.Join(segments, "/")
	id = strings.TrimSuffix(id, path.Ext(id))
	if id == "" {
		return "", false
	}
	return id, true
}

func splitUpload(stored string) (prefix, rest string, ok bool) {
	u, err := url.Parse(stored)
	if err != nil || !isCloudinaryHost(u.Hostname()) || !strings.Contains(u.Path, uploadMarker) {
		return "", "", false
	}
	idx := strings.Index(stored, uploadMarker)
	if idx < 0 {
		return "", "", false
	}
	cut := idx + len(uploadMarker)
	return stored[:cut], stored[cut:], true
}

func isTransformation(segment string) bool {
	if segment == "" {
		return false
	}
	for _, part := range strings.Split(segment, ",") {
		key, value, found := strings.Cut(part, "_")
		if !found || value == "" || !transformKeys[key] {
			return false
		}
	}
	return true
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func isCloudinaryHost(host string) bool {
	host = strings.ToLower(host)
	return host == hostMarker || strings.HasSuffix(host, "."+hostMarker)
}
