package collector

import (
	"errors"
	"net"
	"time"

	collectortrace "go.opentelemetry.io/proto/otlp/collector/trace/v1"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"

	"github.com/wperron/h2-poll-traces/internal/infrastructure/logging"
	"github.com/wperron/h2-poll-traces/internal/infrastructure/monitoring"
)

// Server serves a Sink over gRPC.
type Server struct {
	grpc   *grpc.Server
	logger *logging.Logger
}

// NewServer registers sink as the TraceService. metrics may be nil.
func NewServer(sink *Sink, metrics *monitoring.Metrics, logger *logging.Logger) *Server {
	opts := []grpc.ServerOption{
		// Exporters ping every 60s while exporting; anything faster is abuse.
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             30 * time.Second,
			PermitWithoutStream: false,
		}),
		grpc.MaxRecvMsgSize(10 * 1024 * 1024),
	}
	if metrics != nil {
		opts = append(opts, grpc.ChainUnaryInterceptor(monitoring.UnaryServerInterceptor(metrics)))
	}

	s := grpc.NewServer(opts...)
	collectortrace.RegisterTraceServiceServer(s, sink)

	return &Server{grpc: s, logger: logger}
}

// Serve accepts connections on lis until Stop is called.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("collector listening", zap.String("addr", lis.Addr().String()))
	if err := s.grpc.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// Stop waits for in-flight exports and closes every listener.
func (s *Server) Stop() {
	s.grpc.GracefulStop()
}
