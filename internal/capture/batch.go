package capture

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"showcase/internal/platform/logger"
)

// Target is one entry of a batch capture request.
type Target struct {
	URL   string `json:"url"`
	Hints Hints  `json:"hints"`
}

// Job is one unit of batch work. Run performs the capture and whatever
// persistence the caller needs.
type Job struct {
	ID  string
	URL string
	Run func(ctx context.Context) (Result, error)
}

type BatchItem struct {
	ID             string    `json:"id,omitempty"`
	URL            string    `json:"url"`
	Success        bool      `json:"success"`
	ScreenshotPath string    `json:"screenshotPath,omitempty"`
	Metadata       *Metadata `json:"metadata,omitempty"`
	Error          string    `json:"error,omitempty"`
}

type BatchSummary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

type BatchResult struct {
	Items   []BatchItem  `json:"items"`
	Summary BatchSummary `json:"summary"`
}

type Acquirer interface {
	Acquire(ctx context.Context, target string, h Hints) (Result, error)
}

// Batcher runs captures one after another with a fixed minimum spacing so the
// rendering service is not rate limited. A failed item never stops the rest.
type Batcher struct {
	acquirer Acquirer
	interval time.Duration
	metrics  *Metrics
	log      logger.Logger
}

func NewBatcher(acquirer Acquirer, interval time.Duration, metrics *Metrics, log logger.Logger) *Batcher {
	if log == nil {
		log = logger.NewNop()
	}
	return &Batcher{acquirer: acquirer, interval: interval, metrics: metrics, log: log}
}

// Run acquires every target independently.
func (b *Batcher) Run(ctx context.Context, targets []Target) BatchResult {
	jobs := make([]Job, len(targets))
	for i, t := range targets {
		t := t
		jobs[i] = Job{
			URL: t.URL,
			Run: func(ctx context.Context) (Result, error) {
				return b.acquirer.Acquire(ctx, t.URL, t.Hints)
			},
		}
	}
	return b.Do(ctx, jobs)
}

// Do executes jobs sequentially. Once ctx is done the remaining jobs are
// reported as failed without being attempted.
func (b *Batcher) Do(ctx context.Context, jobs []Job) BatchResult {
	limiter := b.newLimiter()
	out := BatchResult{Items: make([]BatchItem, 0, len(jobs))}

	for _, job := range jobs {
		item := BatchItem{ID: job.ID, URL: job.URL}

		if err := limiter.Wait(ctx); err != nil {
			item.Error = err.Error()
		} else if res, err := job.Run(ctx); err != nil {
			item.Error = err.Error()
			b.log.Warn("batch capture item failed",
				logger.String("url", job.URL),
				logger.String("id", job.ID),
				logger.Err(err),
			)
		} else {
			item.Success = true
			item.ScreenshotPath = res.ScreenshotPath
			item.Metadata = res.Metadata
		}

		b.metrics.observeBatchItem(item.Success)
		out.Items = append(out.Items, item)
		if item.Success {
			out.Summary.Successful++
		} else {
			out.Summary.Failed++
		}
	}
	out.Summary.Total = len(jobs)
	return out
}

func (b *Batcher) newLimiter() *rate.Limiter {
	if b.interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(b.interval), 1)
}
