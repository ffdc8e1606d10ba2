package screenshotone

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions("https://example.com")

	assert.Equal(t, "https://example.com", opts.URL)
	assert.True(t, opts.FullPage)
	assert.Equal(t, 1920, opts.ViewportWidth)
	assert.Equal(t, 1080, opts.ViewportHeight)
	assert.Equal(t, "jpg", opts.Format)
	assert.True(t, opts.BlockAds)
	assert.True(t, opts.BlockCookieBanners)
	assert.True(t, opts.BlockTrackers)
	assert.False(t, opts.BlockBannersByHeuristics)
	assert.Equal(t, 60*time.Second, opts.Timeout)
}

func TestClient_Configured(t *testing.T) {
	assert.True(t, NewClient("a", "s", "").Configured())
	assert.False(t, NewClient("", "s", "").Configured())
	assert.False(t, NewClient("a", "", "").Configured())
}

func TestClient_SignedURL(t *testing.T) {
	c := NewClient("access", "secret", "https://render.test/")

	t.Run("not configured", func(t *testing.T) {
		_, err := NewClient("", "", "").SignedURL(DefaultOptions("https://example.com"))
		assert.ErrorIs(t, err, ErrNotConfigured)
	})

	t.Run("deterministic", func(t *testing.T) {
		opts := DefaultOptions("https://example.com/pricing?plan=pro")
		first, err := c.SignedURL(opts)
		require.NoError(t, err)
		second, err := c.SignedURL(opts)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("parameters and signature", func(t *testing.T) {
		opts := DefaultOptions("https://example.com")
		opts.FullPage = false
		opts.ViewportWidth = 375
		opts.Delay = 2 * time.Second

		signed, err := c.SignedURL(opts)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(signed, "https://render.test/take?"))

		u, err := url.Parse(signed)
		require.NoError(t, err)
		q := u.Query()
		assert.Equal(t, "access", q.Get("access_key"))
		assert.Equal(t, "https://example.com", q.Get("url"))
		assert.Equal(t, "false", q.Get("full_page"))
		assert.Equal(t, "375", q.Get("viewport_width"))
		assert.Equal(t, "2", q.Get("delay"))
		assert.Equal(t, "60", q.Get("timeout"))
		assert.Equal(t, "true", q.Get("metadata_fonts"))

		unsigned, sig, found := strings.Cut(u.RawQuery, "&signature=")
		require.True(t, found)
		mac := hmac.New(sha256.New, []byte("secret"))
		mac.Write([]byte(unsigned))
		assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), sig)
	})

	t.Run("different options sign differently", func(t *testing.T) {
		a, _ := c.SignedURL(DefaultOptions("https://a.example"))
		b, _ := c.SignedURL(DefaultOptions("https://b.example"))
		assert.NotEqual(t, a, b)
	})
}
