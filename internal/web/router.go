package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jusunglee/singlish/internal/converter"
	"github.com/jusunglee/singlish/internal/db"
	"github.com/jusunglee/singlish/internal/web/handlers"
	"github.com/jusunglee/singlish/internal/web/middleware"
)

type Options struct {
	// APIKey guards the admin routes. Empty disables them.
	APIKey string
	// Origins allowed by CORS. Empty allows any origin.
	Origins []string
	// MaxInputBytes caps conversion input.
	MaxInputBytes int
	// Limiter throttles writes per client IP.
	Limiter *middleware.IPRateLimiter
}

type Router struct {
	repo db.Repository
	conv *converter.Converter
	log  *slog.Logger
	opts Options
}

func NewRouter(repo db.Repository, conv *converter.Converter, log *slog.Logger, opts Options) *Router {
	if opts.Limiter == nil {
		opts.Limiter = middleware.NewRateLimiter(30, time.Minute)
	}
	if opts.MaxInputBytes <= 0 {
		opts.MaxInputBytes = 16 << 10
	}
	return &Router{repo: repo, conv: conv, log: log, opts: opts}
}

func (r *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	convertHandler := handlers.NewConvertHandler(r.conv, r.log, r.opts.MaxInputBytes)
	passthroughHandler := handlers.NewPassthroughHandler(r.repo, r.conv, r.log)
	feedbackHandler := handlers.NewFeedbackHandler(r.repo, r.conv, r.log)

	maxBody := middleware.MaxBody(int64(r.opts.MaxInputBytes) + 1024)
	admin := middleware.APIKeyAuth(r.opts.APIKey)

	route := func(pattern string, h http.HandlerFunc, extra ...middleware.Middleware) {
		chain := append([]middleware.Middleware{
			middleware.PrometheusMetrics(),
			middleware.RequestLogger(r.log),
		}, extra...)
		mux.Handle(pattern, middleware.Chain(h, chain...))
	}

	// Conversion is called on every keystroke by the UI, so it is not
	// rate limited.
	route("POST /api/v1/convert", convertHandler.Post, maxBody, middleware.CacheControl("no-store"))
	route("GET /api/v1/convert", convertHandler.Get, middleware.CacheControl("public, max-age=300"))

	route("GET /api/v1/passthrough", passthroughHandler.List, middleware.CacheControl("public, s-maxage=5, max-age=0"))
	route("POST /api/v1/passthrough", passthroughHandler.Create, admin, maxBody)

	route("POST /api/v1/feedback", feedbackHandler.Create, middleware.RateLimit(r.opts.Limiter), maxBody)
	route("GET /api/v1/feedback", feedbackHandler.List, admin, middleware.CacheControl("no-store"))
	route("GET /api/v1/feedback/{id}", feedbackHandler.Get, admin, middleware.CacheControl("no-store"))

	return middleware.CORS(r.opts.Origins)(mux)
}
