package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jusunglee/singlish/internal/converter"
	"github.com/jusunglee/singlish/internal/db"
	"github.com/jusunglee/singlish/internal/db/postgres"
	"github.com/jusunglee/singlish/internal/db/sqlite"
	"github.com/jusunglee/singlish/internal/health"
	"github.com/jusunglee/singlish/internal/logger"
	"github.com/jusunglee/singlish/internal/metrics"
	"github.com/jusunglee/singlish/internal/transliteration"
	"github.com/jusunglee/singlish/internal/web"
	"github.com/jusunglee/singlish/internal/web/middleware"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

//go:embed static
var staticFiles embed.FS

func main() {
	if err := mainE(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
	slog.Info("exiting without error")
}

func mainE() error {
	_ = godotenv.Load()

	fs_ := ff.NewFlagSet("singlish-web")

	var (
		port              = fs_.Int64Long("port", 3000, "HTTP server port")
		databaseURL       = fs_.StringLong("database-url", "sqlite://singlish.db", "sqlite:// path or postgres:// URL")
		rulesPath         = fs_.StringLong("rules", "", "YAML rule file (defaults to the built-in Sinhala rules)")
		apiKey            = fs_.StringLong("api-key", "", "API key for admin routes")
		allowedOrigins    = fs_.StringLong("allowed-origins", "", "Comma-separated list of allowed CORS origins")
		maxInputBytes     = fs_.IntLong("max-input-bytes", 16<<10, "Largest text accepted for conversion")
		feedbackRetention = fs_.DurationLong("feedback-retention", 90*24*time.Hour, "How long to keep conversion feedback")
	)

	if err := ff.Parse(fs_, os.Args[1:], ff.WithEnvVars()); err != nil {
		fmt.Printf("%s\n", ffhelp.Flags(fs_))
		return fmt.Errorf("parsing flags: %w", err)
	}

	log := logger.New()

	engine, err := loadEngine(*rulesPath)
	if err != nil {
		return err
	}
	log.Info("rules loaded", "rules", engine.Rules().Len(), "passthrough_words", engine.Registry().Len())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, poolStats, err := openRepository(ctx, *databaseURL)
	if err != nil {
		return err
	}
	defer repo.Close()

	conv := converter.New(engine)
	n, err := conv.LoadStored(ctx, repo)
	if err != nil {
		return err
	}
	log.Info("stored passthrough words loaded", "count", n)

	var origins []string
	for _, o := range strings.Split(*allowedOrigins, ",") {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}

	limiter := middleware.NewRateLimiter(30, time.Minute)
	router := web.NewRouter(repo, conv, log, web.Options{
		APIKey:        *apiKey,
		Origins:       origins,
		MaxInputBytes: *maxInputBytes,
		Limiter:       limiter,
	})
	if *apiKey == "" {
		log.Warn("api-key not set, admin routes are disabled")
	}

	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return fmt.Errorf("creating sub filesystem: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("GET /health", health.Handler(map[string]health.Checker{
		"database": func(ctx context.Context) error {
			_, err := repo.CountFeedback(ctx)
			return err
		},
	}))
	mux.Handle("/api/", router.Handler())
	mux.Handle("/", middleware.CacheControl("public, s-maxage=60, max-age=0")(http.FileServer(http.FS(staticFS))))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", *port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.InfoContext(gctx, "starting web server", "port", *port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return limiter.Run(gctx, 5*time.Minute)
	})

	g.Go(func() error {
		return runRetention(gctx, repo, *feedbackRetention, log)
	})

	if poolStats != nil {
		g.Go(func() error {
			return exportPoolStats(gctx, poolStats)
		})
	}

	return g.Wait()
}

func loadEngine(rulesPath string) (*transliteration.Engine, error) {
	cfg := transliteration.Config{Registry: transliteration.DefaultRegistry()}
	if rulesPath != "" {
		rules, err := transliteration.LoadRulesFile(rulesPath)
		if err != nil {
			return nil, fmt.Errorf("loading rules: %w", err)
		}
		cfg.Rules = rules
	}
	return transliteration.New(cfg)
}

// openRepository picks the backend from the URL scheme. Only Postgres has
// pool statistics to export.
func openRepository(ctx context.Context, url string) (db.Repository, *postgres.Repository, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		repo, err := postgres.New(ctx, url)
		if err != nil {
			return nil, nil, fmt.Errorf("creating PostgreSQL connection: %w", err)
		}
		slog.InfoContext(ctx, "connected to PostgreSQL database")
		return repo, repo, nil
	default:
		repo, err := sqlite.New(ctx, url)
		if err != nil {
			return nil, nil, fmt.Errorf("opening SQLite database: %w", err)
		}
		slog.InfoContext(ctx, "opened SQLite database", "path", strings.TrimPrefix(url, "sqlite://"))
		return repo, nil, nil
	}
}

func runRetention(ctx context.Context, repo db.Repository, retention time.Duration, log *slog.Logger) error {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		n, err := repo.DeleteOldFeedback(ctx, time.Now().Add(-retention))
		switch {
		case err != nil && ctx.Err() == nil:
			log.ErrorContext(ctx, "feedback retention failed", "error", err)
		case n > 0:
			metrics.FeedbackDeleted.Add(float64(n))
			log.InfoContext(ctx, "deleted old feedback", "count", n)
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil
		}
	}
}

func exportPoolStats(ctx context.Context, repo *postgres.Repository) error {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s := repo.PoolStats()
			metrics.DBPoolTotalConns.Set(float64(s.TotalConns()))
			metrics.DBPoolIdleConns.Set(float64(s.IdleConns()))
			metrics.DBPoolAcquiredConns.Set(float64(s.AcquiredConns()))
			metrics.DBPoolMaxConns.Set(float64(s.MaxConns()))
		case <-ctx.Done():
			return nil
		}
	}
}
