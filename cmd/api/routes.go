package main

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"showcase/internal/capture"
	"showcase/internal/config"
	"showcase/internal/httpx"
	"showcase/internal/page"
	"showcase/internal/platform/logger"
	"showcase/internal/product"
)

const maxBodyBytes = 1 << 20

type pinger interface {
	Ping(ctx context.Context) error
}

type routerDeps struct {
	cfg      config.Config
	log      logger.Logger
	db       pinger
	registry *prometheus.Registry
	products *product.HTTPHandler
	pages    *page.HTTPHandler
	capture  *capture.HTTPHandler
}

func newRouter(d routerDeps) http.Handler {
	router := http.NewServeMux()
	admin := httpx.Admin(d.cfg.JWTSecret)
	protect := func(h http.HandlerFunc) http.Handler { return admin(h) }

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := d.db.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	if d.registry != nil {
		router.Handle("GET /metrics", promhttp.HandlerFor(d.registry, promhttp.HandlerOpts{Registry: d.registry}))
	}

	router.HandleFunc("GET /api/saas", d.products.List)
	router.HandleFunc("GET /api/saas/{id}", d.products.Get)
	router.HandleFunc("GET /api/saas/slug/{slug}", d.products.GetBySlug)
	router.HandleFunc("GET /api/categories", d.products.Categories)
	router.Handle("POST /api/saas", protect(d.products.Create))
	router.Handle("PUT /api/saas/{id}", protect(d.products.Update))
	router.Handle("DELETE /api/saas/{id}", protect(d.products.Delete))
	router.Handle("POST /api/saas/{id}/screenshot", protect(d.products.Recapture))
	router.Handle("POST /api/saas/bulk-screenshot", protect(d.products.BulkRecapture))

	router.HandleFunc("GET /api/pages", d.pages.List)
	router.HandleFunc("GET /api/pages/{id}", d.pages.Get)
	router.HandleFunc("GET /api/pages/slug/{slug}", d.pages.GetBySlug)
	router.Handle("POST /api/pages", protect(d.pages.Create))
	router.Handle("PUT /api/pages/{id}", protect(d.pages.Update))
	router.Handle("DELETE /api/pages/{id}", protect(d.pages.Delete))
	router.Handle("POST /api/pages/{id}/screenshot", protect(d.pages.Recapture))

	router.Handle("GET /api/screenshot", protect(d.capture.Preview))
	router.Handle("POST /api/screenshot", protect(d.capture.Preview))
	router.Handle("POST /api/screenshot/batch", protect(d.capture.Batch))

	rateLimiter := httpx.NewRateLimitMiddleware(d.cfg.RateLimitRPS, d.cfg.RateLimitBurst)

	return httpx.Chain(router,
		httpx.RecoveryMiddleware(d.log),
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(d.log),
		httpx.SecurityHeadersMiddleware(d.cfg.EnableHSTS),
		httpx.CORSMiddleware(d.cfg.AllowedOrigins),
		rateLimiter.Middleware,
		httpx.RequestSizeLimitMiddleware(maxBodyBytes),
	)
}
