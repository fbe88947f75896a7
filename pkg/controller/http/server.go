package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/datamart/pkg/domain/interfaces"
)

// config holds internal HTTP server configuration
type config struct {
	addr          string
	webhookSecret string
	jwtSecret     []byte
	baseURL       string
	savedUC       interfaces.SavedUseCase
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithWebhookSecret sets the webhook secret
func WithWebhookSecret(secret string) Option {
	return func(c *config) {
		c.webhookSecret = secret
	}
}

// WithJWTSecret sets the HS256 key used to verify bearer tokens of saved routes.
// Saved routes are mounted only when both the key and a SavedUseCase are set.
func WithJWTSecret(secret string) Option {
	return func(c *config) {
		c.jwtSecret = []byte(secret)
	}
}

// WithBaseURL sets the public site URL used in the sitemap
func WithBaseURL(baseURL string) Option {
	return func(c *config) {
		c.baseURL = baseURL
	}
}

// WithSavedUseCase enables saved dataset routes
func WithSavedUseCase(uc interfaces.SavedUseCase) Option {
	return func(c *config) {
		c.savedUC = uc
	}
}

// Server represents the HTTP server
type Server struct {
	*http.Server
}

// NewServer creates a new HTTP server
func NewServer(
	ctx context.Context,
	catalogUC interfaces.CatalogUseCase,
	webhookUC interfaces.WebhookUseCase,
	opts ...Option,
) (*Server, error) {
	// Default configuration
	cfg := &config{
		addr:    "localhost:8080",
		baseURL: "http://localhost:8080",
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	if catalogUC == nil {
		return nil, goerr.New("catalog use case is required")
	}

	validate, err := newRequestValidator(ctx)
	if err != nil {
		return nil, err
	}

	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	// Health check
	router.Get("/health", handleHealth(catalogUC))
	router.Get("/sitemap.xml", handleSitemap(catalogUC, cfg.baseURL))

	datasets := &datasetHandler{catalog: catalogUC}
	router.Route("/api", func(r chi.Router) {
		r.Get("/openapi.yaml", handleOpenAPI)

		r.Group(func(r chi.Router) {
			r.Use(validate)
			r.Get("/datasets", datasets.List)
			r.Get("/datasets/facets", datasets.Facets)
			r.Get("/datasets/*", datasets.Get)
			r.Get("/related/*", datasets.Related)
		})

		if cfg.savedUC != nil && len(cfg.jwtSecret) > 0 {
			saved := &savedHandler{saved: cfg.savedUC}
			r.Group(func(r chi.Router) {
				r.Use(AuthMiddleware(cfg.jwtSecret))
				r.Use(validate)
				r.Get("/saved", saved.List)
				r.Put("/saved/*", saved.Put)
				r.Delete("/saved/*", saved.Delete)
			})
		}
	})

	// Webhook endpoint
	if webhookUC != nil {
		webhookHandler := NewWebhookHandler(cfg.webhookSecret, webhookUC)
		router.Post("/hooks/registry", webhookHandler.Handle)
	}

	server := &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
	}

	return server, nil
}
