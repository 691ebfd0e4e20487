// Package grpcserver exposes the standard gRPC health service, reporting
// SERVING while the database answers pings.
package grpcserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"pathfinder/pkg/logger"
)

// ServiceName is the health-check name of the API as a whole.
const ServiceName = "pathfinder.API"

const (
	defaultInterval = 10 * time.Second
	pingTimeout     = 2 * time.Second
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	DB       Pinger
	Log      *logger.Logger
	Interval time.Duration

	grpc   *grpc.Server
	health *health.Server
}

func New(db Pinger, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}

	gs := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	reflection.Register(gs)

	return &Server{
		DB:       db,
		Log:      log,
		Interval: defaultInterval,
		grpc:     gs,
		health:   hs,
	}
}

// Refresh pings the database once and publishes the result for both the
// overall ("") and the named service.
func (s *Server) Refresh(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	st := healthpb.HealthCheckResponse_SERVING
	if err := s.DB.PingContext(ctx); err != nil {
		s.Log.Warn("health ping failed", "error", err)
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
	return st
}

// Serve listens on addr until ctx is done, then stops gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	return s.ServeListener(ctx, lis)
}

func (s *Server) ServeListener(ctx context.Context, lis net.Listener) error {
	s.Refresh(ctx)

	done := make(chan struct{})
	go s.watch(ctx, done)

	go func() {
		<-ctx.Done()
		s.health.Shutdown()
		s.grpc.GracefulStop()
	}()

	s.Log.Info("gRPC health server listening", "addr", lis.Addr().String())
	err := s.grpc.Serve(lis)
	close(done)
	if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("grpc serve: %w", err)
	}
	return nil
}

func (s *Server) watch(ctx context.Context, done <-chan struct{}) {
	interval := s.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-t.C:
			s.Refresh(ctx)
		}
	}
}
