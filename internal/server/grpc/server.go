// Package grpc runs the management endpoint: the standard gRPC health
// service, backed by a database ping, plus server reflection.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/stockroom/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health service name reported for the REST API.
const ServiceName = "stockroom.v1.Stockroom"

const defaultProbeInterval = 10 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type GRPCServer struct {
	address       string
	db            Pinger
	health        *health.Server
	probeInterval time.Duration
	logger        logging.Logger
}

// NewGRPCServer creates the server. db may be nil, in which case the
// service is reported as serving for as long as the server runs.
func NewGRPCServer(a string, db Pinger, l logging.Logger) *GRPCServer {
	return &GRPCServer{
		address:       a,
		db:            db,
		health:        health.NewServer(),
		probeInterval: defaultProbeInterval,
		logger:        l.With("module", "grpc_server"),
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer()

	healthpb.RegisterHealthServer(srv, s.health)
	reflection.Register(srv)

	s.probe(ctx)

	go func() {
		t := time.NewTicker(s.probeInterval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				s.logger.Info(ctx, "Stopping gRPC server...")
				s.health.Shutdown()
				srv.GracefulStop()
				return
			case <-t.C:
				s.probe(ctx)
			}
		}
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}

// probe maps a database ping onto the health status.
func (s *GRPCServer) probe(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if s.db != nil {
		pingCtx, cancel := context.WithTimeout(ctx, s.probeInterval/2)
		err := s.db.PingContext(pingCtx)
		cancel()
		if err != nil {
			s.logger.Warn(ctx, "database ping failed", "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}
