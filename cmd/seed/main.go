package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"showcase/internal/capture"
	"showcase/internal/config"
	"showcase/internal/page"
	"showcase/internal/platform/cloudinary"
	"showcase/internal/platform/logger"
	"showcase/internal/platform/screenshotone"
	"showcase/internal/product"
)

var samples = []product.CreateInput{
	{Name: "Stripe", Description: "Payments infrastructure for the internet.", URL: "https://stripe.com", Category: "Finance", Tags: []string{"payments", "api"}, Featured: true},
	{Name: "Linear", Description: "Issue tracking built for modern software teams.", URL: "https://linear.app", Category: "Productivity", Tags: []string{"issues", "planning"}, Featured: true},
	{Name: "Figma", Description: "Collaborative interface design tool.", URL: "https://www.figma.com", Category: "Design", Tags: []string{"design", "prototyping"}},
	{Name: "HubSpot", Description: "CRM platform for scaling companies.", URL: "https://www.hubspot.com", Category: "CRM", Tags: []string{"crm", "sales"}},
	{Name: "Vercel", Description: "Frontend cloud for deploying web apps.", URL: "https://vercel.com", Category: "Developer Tools", Tags: []string{"hosting", "deploy"}},
	{Name: "Mixpanel", Description: "Product analytics for every team.", URL: "https://mixpanel.com", Category: "Analytics", Tags: []string{"analytics", "events"}},
	{Name: "Slack", Description: "Messaging for teams.", URL: "https://slack.com", Category: "Communication", Tags: []string{"chat"}},
	{Name: "OpenAI", Description: "AI research and deployment.", URL: "https://openai.com", Category: "AI/ML", Tags: []string{"llm"}, PageType: "pricing"},
}

func main() {
	withCapture := flag.Bool("capture", false, "Capture screenshots for seeded products when the providers are configured")
	flag.Parse()

	config.LoadEnvFiles()
	cfg, err := config.Load()
	if err != nil && !errors.Is(err, config.ErrMissingJWTSecret) {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(context.Background(), cfg, *withCapture, log); err != nil {
		log.Error("seed failed", logger.Err(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, withCapture bool, log logger.Logger) error {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()

	deps := product.Deps{Log: log}
	if withCapture {
		assets, err := cloudinary.NewClient(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret, cfg.Cloudinary.Folder)
		if err != nil {
			return err
		}
		shots := screenshotone.NewClient(cfg.ScreenshotOne.AccessKey, cfg.ScreenshotOne.SecretKey, cfg.ScreenshotOne.BaseURL)
		deps.Capturer = capture.NewPipeline(shots, assets, nil, nil, log)
	}

	products := product.NewService(product.NewPostgresRepo(pool, cfg.DBTimeout), deps)
	pages := page.NewService(page.NewPostgresRepo(pool, cfg.DBTimeout), products, page.Deps{Log: log})
	products.SetLandingPages(pages)

	created := 0
	for _, in := range samples {
		if _, err := products.GetBySlug(ctx, capture.Slugify(in.Name)); err == nil {
			log.Info("product exists, skipping", logger.String("name", in.Name))
			continue
		} else if !errors.Is(err, product.ErrNotFound) {
			return err
		}

		res, err := products.Create(ctx, in)
		if err != nil {
			return fmt.Errorf("create %s: %w", in.Name, err)
		}
		created++
		log.Info("seeded product",
			logger.String("slug", res.Slug),
			logger.Bool("screenshot", res.ScreenshotCaptured),
		)
	}

	log.Info("seed finished", logger.Int("created", created), logger.Int("samples", len(samples)))
	return nil
}
