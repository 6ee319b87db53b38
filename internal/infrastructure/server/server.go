package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/docshelf/backend/internal/api/http"
	"github.com/GriffinCanCode/docshelf/backend/internal/api/middleware"
	"github.com/GriffinCanCode/docshelf/backend/internal/api/ws"
	"github.com/GriffinCanCode/docshelf/backend/internal/documents"
	"github.com/GriffinCanCode/docshelf/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/docshelf/backend/internal/infrastructure/errtrack"
	"github.com/GriffinCanCode/docshelf/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/docshelf/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/docshelf/backend/internal/infrastructure/tracing"
	docsprovider "github.com/GriffinCanCode/docshelf/backend/internal/providers/documents"
	"github.com/GriffinCanCode/docshelf/backend/internal/service"
	"github.com/GriffinCanCode/docshelf/backend/internal/shared/paths"
)

// Timeouts applied by the HTTP server
const (
	ReadHeaderTimeout = 10 * time.Second
	IdleTimeout       = 120 * time.Second
	FlushTimeout      = 2 * time.Second
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	http     *http.Server
	manager  *documents.Manager
	registry *service.Registry
	hub      *ws.Hub
	tracer   *tracing.Tracer
	metrics  *monitoring.Metrics
	reporter *errtrack.Reporter
	logger   *logging.Logger
	config   *config.Config
}

// NewServer creates a new server instance. It resolves the document layout
// and starts the document manager, so an error means the process cannot
// serve documents and should exit.
func NewServer(cfg *config.Config, logger *logging.Logger, reporter *errtrack.Reporter) (*Server, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	logger.Info("Initializing docshelf server",
		zap.String("host", cfg.Server.Host),
		zap.String("port", cfg.Server.Port),
		zap.String("app_id", cfg.Documents.AppID),
	)

	layout, err := paths.Resolve(cfg.Documents.AppID, cfg.Documents.DataDir, cfg.Documents.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve application directories: %w", err)
	}

	// Initialize metrics first (needed by other components)
	metrics := monitoring.NewMetrics()
	tracer := tracing.New("docshelf", logger.Component("tracing"))
	hub := ws.NewHub(logger.Logger, metrics)

	policy := documents.ContainDefaultOnly
	if cfg.Documents.StrictContainment {
		policy = documents.ContainAlways
	}

	manager := documents.NewManager(layout, documents.Options{
		Logger:   logger.Logger,
		Metrics:  metrics,
		Policy:   policy,
		OnChange: hub.PublishEvent,
	})
	dir, err := manager.Start()
	if err != nil {
		tracer.Close()
		return nil, fmt.Errorf("failed to prepare documents directory: %w", err)
	}
	logger.Info("Document manager started",
		zap.String("documents_dir", dir),
		zap.String("policy", policy.String()),
	)

	registry := service.NewRegistry()
	if err := registry.Register(docsprovider.NewProvider(manager, logger.Logger)); err != nil {
		tracer.Close()
		return nil, fmt.Errorf("failed to register documents provider: %w", err)
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.Recovery(logger.Component("http"), reporter))
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.RequestLogger(logger.Component("access")))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
			zap.Bool("global", cfg.RateLimit.Global),
		)
		limits := middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}
		if cfg.RateLimit.Global {
			router.Use(middleware.GlobalRateLimit(limits))
		} else {
			router.Use(middleware.RateLimit(limits))
		}
	}

	handlers := apihttp.NewHandlers(registry, manager, hub, metrics, reporter, logger.Logger)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	// Document commands
	router.POST("/commands/:command", handlers.Command)

	// Service management
	router.GET("/services", handlers.ListServices)
	router.POST("/services/execute", handlers.ExecuteService)

	// Location change events
	router.GET("/events", hub.Handle)

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	logger.Info("Server initialized successfully")

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
			Handler:           router,
			ReadHeaderTimeout: ReadHeaderTimeout,
			IdleTimeout:       IdleTimeout,
		},
		manager:  manager,
		registry: registry,
		hub:      hub,
		tracer:   tracer,
		metrics:  metrics,
		reporter: reporter,
		logger:   logger,
		config:   cfg,
	}, nil
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Manager returns the document manager owned by the server
func (s *Server) Manager() *documents.Manager {
	return s.manager
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.http.Addr
}

// Run serves HTTP until Shutdown is called
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones until ctx is
// done, then releases the hub, tracer and error reporter.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	err := s.http.Shutdown(ctx)
	if err != nil {
		s.logger.Error("HTTP shutdown incomplete", zap.Error(err))
	}

	s.hub.Close()
	s.tracer.Close()
	s.reporter.Flush(FlushTimeout)

	return err
}
