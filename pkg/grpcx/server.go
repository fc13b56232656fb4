// Package grpcx runs the marketplace's gRPC listener. It carries no
// domain RPCs yet; it exists for the orchestrator: the standard
// grpc.health.v1 service answers readiness probes from a live database
// ping, and reflection is on so grpcurl works without proto files.
package grpcx

import (
	"context"
	"fmt"
	"net"
	"runtime/debug"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/agriconnect-ug/agriconnect/pkg/database"
	"github.com/agriconnect-ug/agriconnect/pkg/logger"
	"github.com/agriconnect-ug/agriconnect/pkg/metrics"
)

const (
	// probeInterval is how often the health watcher re-pings the database.
	probeInterval = 10 * time.Second

	// probeTimeout bounds one database ping.
	probeTimeout = 2 * time.Second

	maxMessageBytes = 4 << 20
)

var (
	rpcHandled = promauto.With(metrics.DefaultRegistry).NewCounterVec(prometheus.CounterOpts{
		Namespace: "agriconnect",
		Subsystem: "grpc",
		Name:      "handled_total",
		Help:      "Completed RPCs by method and status code.",
	}, []string{"method", "code"})

	rpcLatency = promauto.With(metrics.DefaultRegistry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "agriconnect",
		Subsystem: "grpc",
		Name:      "handling_seconds",
		Help:      "RPC latency in seconds.",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"method"})
)

// Start listens on port and serves in the background until Stop. The
// returned server is already answering health checks; they report
// NOT_SERVING until the first successful database ping.
func Start(ctx context.Context, port string) (*grpc.Server, error) {
	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return nil, fmt.Errorf("grpcx: listen on :%s: %w", port, err)
	}

	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(recoverUnary, observeUnary),
		grpc.MaxRecvMsgSize(maxMessageBytes),
		grpc.MaxSendMsgSize(maxMessageBytes),
	)

	hs := health.NewServer()
	hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	grpc_health_v1.RegisterHealthServer(srv, hs)
	go watchHealth(ctx, hs)

	reflection.Register(srv)

	logger.Info("grpc server starting", "addr", lis.Addr().String())
	go func() {
		if err := srv.Serve(lis); err != nil {
			logger.Error("grpcx: serve", "error", err)
		}
	}()

	return srv, nil
}

// Stop drains in-flight RPCs and shuts the listener down.
func Stop(srv *grpc.Server) {
	if srv == nil {
		return
	}
	logger.Info("grpc server shutting down")
	srv.GracefulStop()
}

// watchHealth keeps the health service honest: a probe runs immediately
// and then every probeInterval, flipping the blanket status the
// orchestrator's readiness check reads.
func watchHealth(ctx context.Context, hs *health.Server) {
	ticker := time.NewTicker(probeInterval)
	defer ticker.Stop()

	for {
		hs.SetServingStatus("", probe())
		select {
		case <-ctx.Done():
			hs.Shutdown()
			return
		case <-ticker.C:
		}
	}
}

// probe pings the database. Redis is optional at runtime, so it never
// fails the probe; a database outage is the one condition that should
// pull the instance out of rotation.
func probe() grpc_health_v1.HealthCheckResponse_ServingStatus {
	if database.DB == nil {
		return grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	sqlDB, err := database.DB.DB()
	if err != nil {
		return grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		logger.Warn("grpcx: health probe", "error", err)
		return grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	return grpc_health_v1.HealthCheckResponse_SERVING
}

// recoverUnary turns a handler panic into codes.Internal instead of
// letting it kill the process.
func recoverUnary(
	ctx context.Context,
	req any,
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("grpcx: panic recovered",
				"method", info.FullMethod,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			err = status.Error(codes.Internal, "internal server error")
		}
	}()
	return handler(ctx, req)
}

// observeUnary logs and measures every unary RPC.
func observeUnary(
	ctx context.Context,
	req any,
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	code := status.Code(err)
	rpcHandled.WithLabelValues(info.FullMethod, code.String()).Inc()
	rpcLatency.WithLabelValues(info.FullMethod).Observe(time.Since(start).Seconds())

	logger.Info("grpc request",
		"method", info.FullMethod,
		"code", code.String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp, err
}
