package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	handlers "github.com/wperron/h2-poll-traces/internal/api/http"
	"github.com/wperron/h2-poll-traces/internal/infrastructure/config"
	"github.com/wperron/h2-poll-traces/internal/infrastructure/logging"
	"github.com/wperron/h2-poll-traces/internal/infrastructure/monitoring"
	"github.com/wperron/h2-poll-traces/internal/infrastructure/tracing"
)

// Deps are the collaborators a Server is built from. Only Tracer is
// required; without it the global tracer provider is used.
type Deps struct {
	Tracer     trace.Tracer
	Propagator propagation.TextMapPropagator
	Metrics    *monitoring.Metrics
	Logger     *logging.Logger
}

// Server wraps the HTTP server and dependencies
type Server struct {
	router        *gin.Engine
	http          *http.Server
	metricsServer *http.Server
	logger        *logging.Logger
	config        *config.Config
}

// New creates a new server instance. Nothing is bound until Listen or Run.
func New(cfg *config.Config, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	tracer := deps.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracing.InstrumentationName)
	}

	// Debug mode prints routes to stdout; zap covers development logging.
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	if deps.Propagator != nil {
		router.Use(tracing.Propagation(deps.Propagator))
	}
	if deps.Metrics != nil {
		router.Use(monitoring.Middleware(deps.Metrics))
	}

	handlers.NewHandlers(tracer).Register(router)

	var handler http.Handler = router
	if cfg.Server.H2CEnabled {
		handler = h2c.NewHandler(router, &http2.Server{})
	}

	httpServer := &http.Server{
		Handler: handler,
		// OPTIONS * goes to the handler like any other request.
		DisableGeneralOptionsHandler: true,
	}

	s := &Server{
		router: router,
		http:   httpServer,
		logger: logger,
		config: cfg,
	}

	if cfg.Metrics.Enabled && deps.Metrics != nil {
		s.metricsServer = &http.Server{
			Addr:    cfg.Metrics.Addr,
			Handler: deps.Metrics.Handler(),
		}
	}

	logger.Info("server initialized",
		zap.String("addr", cfg.Server.Addr()),
		zap.Bool("h2c", cfg.Server.H2CEnabled),
		zap.Bool("metrics", s.metricsServer != nil),
	)

	return s
}

// Handler returns the full HTTP handler, h2c included.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Listen binds the configured address.
func (s *Server) Listen() (net.Listener, error) {
	addr := s.config.Server.Addr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind %s: %w", addr, err)
	}
	return ln, nil
}

// Run binds the configured address and serves until Shutdown.
func (s *Server) Run() error {
	ln, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown. It returns nil after a
// clean shutdown.
func (s *Server) Serve(ln net.Listener) error {
	if s.metricsServer != nil {
		go s.serveMetrics()
	}

	s.logger.Info("starting HTTP server", zap.String("addr", ln.Addr().String()))
	if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func (s *Server) serveMetrics() {
	s.logger.Info("starting metrics server", zap.String("addr", s.metricsServer.Addr))
	if err := s.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("metrics server failed", zap.Error(err))
	}
}

// Shutdown stops accepting connections and waits for in-flight requests
// within ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	var errs []error
	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shut down metrics server: %w", err))
		}
	}
	if err := s.http.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to shut down server: %w", err))
	}
	return errors.Join(errs...)
}
