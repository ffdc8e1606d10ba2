package capture

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Stripe-pricing":             "stripe-pricing",
		"  Notion  &  Co.--landing ": "notion-co-landing",
		"AI/ML Tool_features":        "ai-ml-tool-features",
		"---":                        "",
		"Ünïcode Näme-about":         "n-code-n-me-about",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "input %q", in)
	}

	long := Slugify(strings.Repeat("ab-", 60))
	assert.LessOrEqual(t, len(long), 100)
	assert.False(t, strings.HasSuffix(long, "-"))
}

func TestPipeline_Identifier(t *testing.T) {
	p := NewPipeline(nil, nil, nil, nil, nil)
	p.stamps.now = func() time.Time { return time.UnixMilli(42) }

	assert.Equal(t, "stripe-pricing", p.identifier("https://stripe.com", Hints{Name: "Stripe", PageType: "pricing"}))
	// name alone is not enough for a stable slot
	assert.Equal(t, "stripe-com-pricing-42", p.identifier("https://stripe.com/pricing", Hints{Name: "Stripe"}))
	assert.Equal(t, "example-com-a-b-43", p.identifier("HTTP://Example.com/a?b", Hints{}))
}

func TestStamper_Concurrent(t *testing.T) {
	s := &stamper{now: func() time.Time { return time.UnixMilli(1000) }}

	var mu sync.Mutex
	seen := make(map[int64]bool)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n := s.next()
			mu.Lock()
			seen[n] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 50)
}
