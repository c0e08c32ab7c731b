// Package api assembles the HTTP surface of the MCP server: the
// JSON-RPC endpoint, health and metrics, and the middleware stack.
package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog/log"

	"github.com/sentinelmcp/sentinelmcp/internal/alerts"
	"github.com/sentinelmcp/sentinelmcp/internal/config"
	"github.com/sentinelmcp/sentinelmcp/internal/graphql"
	"github.com/sentinelmcp/sentinelmcp/internal/inventory"
	"github.com/sentinelmcp/sentinelmcp/internal/mcp"
	"github.com/sentinelmcp/sentinelmcp/internal/mcp/resources"
	"github.com/sentinelmcp/sentinelmcp/internal/mcp/tools"
	"github.com/sentinelmcp/sentinelmcp/internal/middleware"
	"github.com/sentinelmcp/sentinelmcp/internal/misconfigurations"
	"github.com/sentinelmcp/sentinelmcp/internal/observability"
	"github.com/sentinelmcp/sentinelmcp/internal/vulnerabilities"
)

// Server is the top-level HTTP server.
type Server struct {
	app     *fiber.App
	config  *config.Config
	metrics *observability.Metrics
	tracer  *observability.Tracer
	mcp     *mcp.Handler
	started time.Time
}

// NewServer wires configuration into a ready-to-listen server.
func NewServer(cfg *config.Config) *Server {
	app := fiber.New(fiber.Config{
		ServerHeader:          "SentinelMCP",
		AppName:               "SentinelMCP",
		BodyLimit:             cfg.Server.BodyLimit,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		IdleTimeout:           cfg.Server.IdleTimeout,
		DisableStartupMessage: !cfg.Debug,
		ErrorHandler:          errorHandler,
	})

	tracer, err := observability.NewTracer(context.Background(), cfg.Tracing, mcp.ServerVersion)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize OpenTelemetry tracer, tracing will be disabled")
	}

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics()
	}

	s := &Server{
		app:     app,
		config:  cfg,
		metrics: metrics,
		tracer:  tracer,
		started: time.Now(),
	}

	s.setupMiddlewares()
	s.setupMCP()
	s.setupRoutes()

	return s
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// MCP exposes the MCP handler for additional registration.
func (s *Server) MCP() *mcp.Handler {
	return s.mcp
}

func (s *Server) setupMiddlewares() {
	s.app.Use(requestid.New())

	if s.config.Debug {
		s.app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path} ${error}\n",
		}))
	}

	s.app.Use(recover.New(recover.Config{
		EnableStackTrace: s.config.Debug,
	}))

	s.app.Use(cors.New())

	if s.metrics != nil {
		s.app.Use(s.metrics.MetricsMiddleware())
	}
}

// setupMCP builds the backend clients and registers every tool and
// resource on the MCP server.
func (s *Server) setupMCP() {
	backends := &s.config.Backends

	graphqlConfig := func(domain, endpoint string) graphql.Config {
		return graphql.Config{
			Endpoint:          backends.GraphQLURL(endpoint),
			Token:             backends.ServiceToken,
			Timeout:           backends.Timeout,
			Domain:            domain,
			RequestsPerSecond: backends.RequestsPerSecond,
			MaxAttempts:       backends.MaxAttempts,
			RetryWaitMin:      backends.RetryWaitMin,
			RetryWaitMax:      backends.RetryWaitMax,
			Metrics:           s.metrics,
		}
	}

	s.mcp = mcp.NewHandler(&s.config.MCP)

	tools.RegisterAll(s.mcp.Server().ToolRegistry(), tools.Deps{
		Alerts:            alerts.NewClient(graphqlConfig(alerts.Domain, backends.AlertsEndpoint)),
		Misconfigurations: misconfigurations.NewClient(graphqlConfig(misconfigurations.Domain, backends.MisconfigurationsEndpoint)),
		Vulnerabilities:   vulnerabilities.NewClient(graphqlConfig(vulnerabilities.Domain, backends.VulnerabilitiesEndpoint)),
		Inventory: inventory.NewClient(inventory.Config{
			BaseURL:      backends.ConsoleBaseURL,
			Endpoint:     backends.InventoryEndpoint,
			Token:        backends.ServiceToken,
			Timeout:      backends.Timeout,
			MaxAttempts:  backends.MaxAttempts,
			RetryWaitMin: backends.RetryWaitMin,
			RetryWaitMax: backends.RetryWaitMax,
			Metrics:      s.metrics,
		}),
		Metrics: s.metrics,
	})

	resources.RegisterAll(s.mcp.Server().ResourceRegistry())
}

func (s *Server) setupRoutes() {
	s.app.Get("/health", s.handleHealth)

	if s.metrics != nil {
		s.app.Get(s.config.Metrics.Path, s.metrics.Handler())
	}

	if s.config.MCP.Enabled {
		group := s.app.Group(s.config.MCP.BasePath)
		if s.config.MCP.RateLimitPerMin > 0 {
			group.Use(middleware.MCPLimiter(s.config.MCP.RateLimitPerMin))
		}
		group.Use(mcp.AuthMiddleware(s.config.Auth))
		s.mcp.RegisterRoutes(group)
	}
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	if s.metrics != nil {
		s.metrics.UpdateUptime(s.started)
	}
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "sentinelmcp",
		"version": mcp.ServerVersion,
		"uptime":  time.Since(s.started).String(),
	})
}

// Start blocks serving requests until Shutdown is called.
func (s *Server) Start() error {
	return s.app.Listen(s.config.Server.Address)
}

// Shutdown drains connections and releases observability resources.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.tracer != nil {
		if err := s.tracer.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to shut down tracer")
		}
	}
	return s.app.ShutdownWithContext(ctx)
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
