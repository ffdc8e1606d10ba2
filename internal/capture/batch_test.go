package capture

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAcquirer struct {
	mock.Mock
}

func (m *mockAcquirer) Acquire(ctx context.Context, target string, h Hints) (Result, error) {
	args := m.Called(ctx, target, h)
	return args.Get(0).(Result), args.Error(1)
}

func TestBatcher_Run_IsolatesFailures(t *testing.T) {
	acq := new(mockAcquirer)
	acq.On("Acquire", mock.Anything, "https://a.com", Hints{}).Return(Result{ScreenshotPath: "https://cdn/a.jpg"}, nil)
	acq.On("Acquire", mock.Anything, "https://b.com", Hints{}).Return(Result{}, &FetchError{StatusCode: 500})
	acq.On("Acquire", mock.Anything, "https://c.com", Hints{}).Return(Result{ScreenshotPath: "https://cdn/c.jpg"}, nil)

	metrics := NewMetrics(prometheus.NewRegistry())
	b := NewBatcher(acq, 0, metrics, nil)

	res := b.Run(context.Background(), []Target{{URL: "https://a.com"}, {URL: "https://b.com"}, {URL: "https://c.com"}})

	assert.Equal(t, BatchSummary{Total: 3, Successful: 2, Failed: 1}, res.Summary)
	require.Len(t, res.Items, 3)
	assert.True(t, res.Items[0].Success)
	assert.False(t, res.Items[1].Success)
	assert.Equal(t, "https://b.com", res.Items[1].URL)
	assert.Contains(t, res.Items[1].Error, "500")
	assert.True(t, res.Items[2].Success)
	assert.Equal(t, "https://cdn/c.jpg", res.Items[2].ScreenshotPath)
	acq.AssertNumberOfCalls(t, "Acquire", 3)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.BatchItems.WithLabelValues("succeeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.BatchItems.WithLabelValues("failed")))
}

func TestBatcher_Do_Throttles(t *testing.T) {
	var calls []time.Time
	job := func(ctx context.Context) (Result, error) {
		calls = append(calls, time.Now())
		return Result{ScreenshotPath: "u"}, nil
	}

	b := NewBatcher(nil, 50*time.Millisecond, nil, nil)
	res := b.Do(context.Background(), []Job{{ID: "1", Run: job}, {ID: "2", Run: job}, {ID: "3", Run: job}})

	assert.Equal(t, 3, res.Summary.Successful)
	require.Len(t, calls, 3)
	assert.GreaterOrEqual(t, calls[2].Sub(calls[0]), 90*time.Millisecond)
}

func TestBatcher_Do_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ran := 0
	jobs := []Job{
		{URL: "https://a.com", Run: func(context.Context) (Result, error) {
			ran++
			cancel()
			return Result{ScreenshotPath: "u"}, nil
		}},
		{URL: "https://b.com", Run: func(context.Context) (Result, error) {
			ran++
			return Result{}, nil
		}},
	}

	res := NewBatcher(nil, 0, nil, nil).Do(ctx, jobs)

	assert.Equal(t, 1, ran)
	assert.Equal(t, BatchSummary{Total: 2, Successful: 1, Failed: 1}, res.Summary)
	assert.Equal(t, "https://b.com", res.Items[1].URL)
	assert.NotEmpty(t, res.Items[1].Error)
}

func TestMetadata_MergeInto(t *testing.T) {
	var nilMeta *Metadata
	assert.Nil(t, nilMeta.MergeInto(nil))

	bag := map[string]any{"colors": []any{"#fff"}}
	got := (&Metadata{Fonts: []any{"Inter"}}).MergeInto(bag)
	assert.Equal(t, []any{"Inter"}, got["fonts"])
	assert.Equal(t, []any{"#fff"}, got["colors"])

	fresh := (&Metadata{Fonts: []any{"Roboto"}}).MergeInto(nil)
	assert.Equal(t, map[string]any{"fonts": []any{"Roboto"}}, fresh)
}

func TestOutcomeOf(t *testing.T) {
	assert.Equal(t, "succeeded", outcomeOf(nil))
	assert.Equal(t, "invalid_input", outcomeOf(ValidateTarget("x")))
	assert.Equal(t, "not_configured", outcomeOf(ErrProviderNotConfigured))
	assert.Equal(t, "fetch_failed", outcomeOf(&FetchError{StatusCode: 429}))
	assert.Equal(t, "upload_failed", outcomeOf(&UploadError{PublicID: "a"}))
}

func TestNewMetrics_Names(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.observeCapture("success", 1.5)
	m.observeBatchItem(true)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{
		"showcase_capture_total",
		"showcase_capture_duration_seconds",
		"showcase_batch_items_total",
	}, names)
}
