package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"

	"botfleet/internal/http/handler"
	"botfleet/internal/http/middleware"
	"botfleet/internal/infra/config"
	"botfleet/pkg/logger"

	// Import generated docs
	_ "botfleet/docs"
)

// Router holds all route handlers and dependencies
type Router struct {
	registrationHandler *handler.RegistrationHandler
	botOpsHandler       *handler.BotOpsHandler
	tenantHandler       *handler.TenantHandler
	pairingHandler      *handler.PairingHandler
	healthHandler       *handler.HealthHandler
	config              *config.Config
	logger              logger.Logger
}

// NewRouter creates a new router with all handlers
func NewRouter(
	registrationHandler *handler.RegistrationHandler,
	botOpsHandler *handler.BotOpsHandler,
	tenantHandler *handler.TenantHandler,
	pairingHandler *handler.PairingHandler,
	healthHandler *handler.HealthHandler,
	config *config.Config,
	logger logger.Logger,
) *Router {
	return &Router{
		registrationHandler: registrationHandler,
		botOpsHandler:       botOpsHandler,
		tenantHandler:       tenantHandler,
		pairingHandler:      pairingHandler,
		healthHandler:       healthHandler,
		config:              config,
		logger:              logger,
	}
}

// SetupRoutes configures all routes and middleware
func (rt *Router) SetupRoutes() *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	rt.setupGlobalMiddleware(r)

	// Health routes (no auth required)
	rt.setupHealthRoutes(r)

	// Swagger documentation route (no auth required)
	rt.setupSwaggerRoute(r)

	// API routes with authentication
	rt.setupAPIRoutes(r)

	return r
}

// setupGlobalMiddleware configures global middleware
func (rt *Router) setupGlobalMiddleware(r *chi.Mux) {
	// Recovery middleware (should be first)
	r.Use(middleware.RecoveryMiddleware(rt.logger))

	// Request ID middleware
	r.Use(middleware.RequestIDMiddleware())

	// Security headers
	r.Use(middleware.SecurityHeadersMiddleware())

	// CORS middleware
	corsConfig := &middleware.CORSConfig{
		AllowedOrigins:   rt.config.Server.CORS.AllowedOrigins,
		AllowedMethods:   rt.config.Server.CORS.AllowedMethods,
		AllowedHeaders:   rt.config.Server.CORS.AllowedHeaders,
		AllowCredentials: rt.config.Server.CORS.AllowCredentials,
		MaxAge:           rt.config.Server.CORS.MaxAge,
	}
	r.Use(middleware.CORSMiddleware(corsConfig))

	// Logging middleware
	r.Use(middleware.LoggingMiddleware(rt.logger))

	// Rate limiting middleware
	rateLimitConfig := &middleware.RateLimitConfig{
		RequestsPerMinute: rt.config.Server.RateLimit.RequestsPerMinute,
		BurstSize:         rt.config.Server.RateLimit.BurstSize,
		KeyFunc: func(r *http.Request) string {
			return r.RemoteAddr
		},
	}
	r.Use(middleware.RateLimitMiddleware(rateLimitConfig, rt.logger))

	// Content validation middleware
	r.Use(middleware.ValidationMiddleware(rt.logger))
}

// setupHealthRoutes configures health routes
func (rt *Router) setupHealthRoutes(r *chi.Mux) {
	r.Get("/health", rt.healthHandler.Health)
}

// setupAPIRoutes configures API routes with authentication
func (rt *Router) setupAPIRoutes(mux *chi.Mux) {
	// Authentication middleware for API routes, registered on an inline
	// group so it does not follow the routes already on the mux
	r := mux.With()
	if rt.config.Auth.Enabled {
		switch rt.config.Auth.Type {
		case "api_key":
			authConfig := &middleware.AuthConfig{
				APIKeys:    rt.config.Auth.APIKeys,
				SkipPaths:  []string{"/health", "/pairing"},
				HeaderName: rt.config.Auth.HeaderName,
			}
			r.Use(middleware.AuthMiddleware(authConfig, rt.logger))
		case "basic":
			r.Use(middleware.BasicAuthMiddleware(
				rt.config.Auth.BasicAuth.Username,
				rt.config.Auth.BasicAuth.Password,
				rt.logger,
			))
		}
	}

	rt.setupBotRoutes(r)
	rt.setupTenantRoutes(r)
	rt.setupPairingRoutes(r)
}

// setupBotRoutes configures bot registration and lifecycle routes
func (rt *Router) setupBotRoutes(r chi.Router) {
	r.Route("/bots", func(r chi.Router) {
		r.Post("/register", rt.registrationHandler.Register)
		r.Post("/batch", rt.registrationHandler.Batch)
		r.Post("/validate-credentials", rt.registrationHandler.ValidateCredentials)
		r.Get("/check", rt.registrationHandler.CheckRegistration)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", rt.botOpsHandler.Get)
			r.Delete("/", rt.botOpsHandler.Destroy)

			r.Post("/approve", rt.registrationHandler.Approve)
			r.Post("/reject", rt.registrationHandler.Reject)
			r.Post("/revoke", rt.registrationHandler.Revoke)
			r.Put("/credentials", rt.registrationHandler.UpdateCredentials)
			r.Post("/migrate", rt.registrationHandler.Migrate)

			r.Post("/start", rt.botOpsHandler.Start)
			r.Post("/stop", rt.botOpsHandler.Stop)
			r.Post("/restart", rt.botOpsHandler.Restart)
			r.Post("/messages", rt.botOpsHandler.SendMessage)
		})
	})
}

// setupTenantRoutes configures tenant listing routes
func (rt *Router) setupTenantRoutes(r chi.Router) {
	r.Route("/tenants", func(r chi.Router) {
		r.Get("/", rt.tenantHandler.List)
		r.Get("/{name}/bots", rt.botOpsHandler.ListByTenant)
	})
}

// setupPairingRoutes configures guest pairing routes
func (rt *Router) setupPairingRoutes(r chi.Router) {
	r.Route("/pairing", func(r chi.Router) {
		r.Post("/", rt.pairingHandler.Generate)
		r.Get("/{requestID}", rt.pairingHandler.Get)
	})
}

// setupSwaggerRoute configures the Swagger documentation route
func (rt *Router) setupSwaggerRoute(r *chi.Mux) {
	// Swagger documentation route - accessible without authentication
	r.Get("/swagger/*", httpSwagger.WrapHandler)
}
