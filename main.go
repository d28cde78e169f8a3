package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"irishgrants/internal/catalog"
	"irishgrants/internal/config"
	"irishgrants/internal/counter"
	"irishgrants/internal/deadlines"
	"irishgrants/internal/guides"
	"irishgrants/internal/handlers"
	"irishgrants/internal/linkcheck"
	"irishgrants/internal/logger"
	"irishgrants/internal/metrics"
	"irishgrants/internal/middleware"
	sentryutil "irishgrants/internal/sentry"
	"irishgrants/internal/sourcecheck"
	"irishgrants/internal/telegram"
)

func main() {
	// Load configuration from .env and environment variables
	config.Load()
	cfg := config.Cfg

	// Initialize Sentry (non-blocking if SENTRY_DSN is empty)
	sentryutil.Init()
	defer sentryutil.Flush()

	if err := catalog.Load(); err != nil {
		sentryutil.CaptureError(err, map[string]string{"phase": "startup"})
		log.Fatalf("catalog: %v", err)
	}
	if err := guides.LoadAll(cfg.GuidesDir); err != nil {
		logger.Warn("guides: not loaded", map[string]interface{}{"dir": cfg.GuidesDir, "error": err.Error()})
	}

	// Estimate counter; the site works without it
	store, err := counter.Open(cfg)
	if err != nil {
		logger.Error("counter: disabled", map[string]interface{}{"error": err.Error()})
	} else {
		handlers.SetCounter(store)
		defer store.Close()
	}

	// Background jobs stop when ctx is cancelled on shutdown
	ctx, stopJobs := context.WithCancel(context.Background())
	defer stopJobs()

	if cfg.LinkCheckEnabled {
		go runLinkChecks(ctx, cfg)
	}
	if cfg.SourceCheckEnabled {
		go runSourceChecks(ctx, cfg)
	}
	if cfg.DeadlineCheckEnabled {
		bot := telegram.NewBot(cfg.TelegramBotToken, cfg.TelegramChatID)
		if bot.Enabled {
			deadlines.OnAlert(func(a deadlines.Alert) {
				if a.Urgency != "low" {
					bot.Notify(fmt.Sprintf("%s: %s -> %s (%s)", a.Grant, a.OldStatus, a.NewStatus, a.Reason))
				}
			})
		}
		go runDeadlineChecks(ctx)
	}

	limiter := handlers.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, time.Second)
	defer limiter.Stop()

	mux := http.NewServeMux()

	// Estimator APIs
	mux.HandleFunc("/api/estimate", handlers.EstimateHandler)
	mux.HandleFunc("/api/estimate/report", handlers.ReportHandler)
	mux.HandleFunc("/api/estimator/reduce", handlers.ReduceHandler)
	mux.HandleFunc("/api/estimator/tiers", handlers.TiersHandler)

	// Open data
	mux.HandleFunc("/api/grants", handlers.GrantsAPIHandler)
	mux.HandleFunc("/api/counties", handlers.CountiesAPIHandler)
	mux.HandleFunc("/api/deadlines", handlers.DeadlinesAPIHandler)
	mux.HandleFunc("/api/deadlines.ics", handlers.CalendarHandler)

	mux.HandleFunc("/api/contact", handlers.ContactHandler)
	mux.HandleFunc("/api/health", handlers.HealthHandler)
	mux.HandleFunc("/api/status", handlers.StatusHandler)
	mux.Handle("/metrics", metrics.Handler())

	// Admin routes (protected by ADMIN_API_KEY)
	mux.HandleFunc("/api/admin/links", linkcheck.AdminLinksHandler)
	mux.HandleFunc("/api/admin/sources", sourcecheck.AdminSourcesHandler)
	mux.HandleFunc("/api/admin/deadline-alerts", deadlines.AdminAlertsHandler)
	mux.HandleFunc("/api/", handlers.NotFoundHandler)

	// Pages
	mux.HandleFunc("/grants/", handlers.GrantsHandler)
	mux.HandleFunc("/ireland/", handlers.CountyHandler)
	mux.HandleFunc("/tools/ev-grant-calculator", handlers.CalculatorPageHandler)
	mux.HandleFunc("/guides", handlers.GuideListHandler)
	mux.HandleFunc("/guides/", handlers.GuidePageHandler)
	mux.HandleFunc("/about", handlers.AboutHandler)
	mux.HandleFunc("/about/grant-providers", handlers.ProvidersHandler)
	mux.HandleFunc("/contact", handlers.ContactPageHandler)
	mux.HandleFunc("/sitemap.xml", handlers.SitemapHandler)
	mux.HandleFunc("/robots.txt", handlers.RobotsTxtHandler)
	mux.HandleFunc("/", handlers.HomeHandler)

	// Recovery → SecurityHeaders → Gzip (if enabled) → Metrics → Rate Limiter
	var handler http.Handler = limiter.Middleware(mux)
	handler = middleware.Metrics(handler)
	if cfg.GzipEnabled {
		handler = middleware.Gzip(handler)
	}
	handler = middleware.SecurityHeaders(handler)
	handler = middleware.Recovery(handler)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", map[string]interface{}{"port": cfg.Port})
		fmt.Printf("%s running on http://localhost:%s\n", cfg.SiteName, cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		sentryutil.CaptureError(err, map[string]string{"phase": "listen"})
		logger.Error("server failed", map[string]interface{}{"error": err.Error()})
		return
	case sig := <-quit:
		logger.Info("shutting down", map[string]interface{}{"signal": sig.String()})
	}

	stopJobs()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown incomplete", map[string]interface{}{"error": err.Error()})
	}
	logger.Info("server stopped", nil)
}

// runLinkChecks checks official links after a short delay at boot, then on every interval.
func runLinkChecks(ctx context.Context, cfg config.Config) {
	targets := linkcheck.Targets(catalog.Grants(), catalog.Metadata())
	if !sleepCtx(ctx, cfg.LinkCheckDelay) {
		return
	}
	if broken := linkcheck.CheckAll(ctx, targets); broken > 0 {
		logger.Warn("link check: broken links found at boot", map[string]interface{}{"broken": broken})
	}

	ticker := time.NewTicker(cfg.LinkCheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			linkcheck.CheckAll(ctx, targets)
		}
	}
}

// runSourceChecks compares advertised grant amounts with the official pages.
func runSourceChecks(ctx context.Context, cfg config.Config) {
	if !sleepCtx(ctx, 10*time.Second) {
		return
	}
	sourcecheck.RunCheck(ctx, catalog.Grants())

	ticker := time.NewTicker(cfg.SourceCheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sourcecheck.RunCheck(ctx, catalog.Grants())
		}
	}
}

// runDeadlineChecks evaluates deadlines at boot and again after every Dublin midnight.
func runDeadlineChecks(ctx context.Context) {
	deadlines.RunCheck(catalog.Deadlines(), time.Now())
	for {
		now := time.Now()
		if !sleepCtx(ctx, deadlines.NextMidnight(now).Sub(now)) {
			return
		}
		deadlines.RunCheck(catalog.Deadlines(), time.Now())
	}
}

// sleepCtx waits for d and reports false if ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
