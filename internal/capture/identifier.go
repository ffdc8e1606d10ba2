package capture

import (
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

const maxIdentifierLen = 100

var (
	schemePrefix = regexp.MustCompile(`^https?://`)
	nonAlnumRun  = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slugify lowercases s, collapses non-alphanumeric runs into single dashes,
// trims dashes and truncates to 100 characters.
func Slugify(s string) string {
	s = nonAlnumRun.ReplaceAllString(strings.ToLower(s), "-")
	s = strings.Trim(s, "-")
	if len(s) > maxIdentifierLen {
		s = strings.TrimRight(s[:maxIdentifierLen], "-")
	}
	return s
}

// stamper hands out strictly increasing millisecond stamps, so two URL-only
// captures in the same millisecond still get distinct identifiers.
type stamper struct {
	last atomic.Int64
	now  func() time.Time
}

func (s *stamper) next() int64 {
	for {
		prev := s.last.Load()
		n := s.now().UnixMilli()
		if n <= prev {
			n = prev + 1
		}
		if s.last.CompareAndSwap(prev, n) {
			return n
		}
	}
}

// identifier returns the storage key for a capture. Name and page type hints
// give a stable key so recaptures overwrite the same asset; without them the
// key is derived from the URL plus a unique stamp.
func (p *Pipeline) identifier(target string, h Hints) string {
	if h.Name != "" && h.PageType != "" {
		if id := Slugify(h.Name + "-" + h.PageType); id != "" {
			return id
		}
	}
	base := Slugify(schemePrefix.ReplaceAllString(strings.ToLower(target), ""))
	return base + "-" + strconv.FormatInt(p.stamps.next(), 10)
}
