package server

import (
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/nursechart/internal/metrics"
)

// NewGRPCServer registers the chart service and the health service on a
// new grpc.Server. Both report SERVING.
func NewGRPCServer(charts *ChartServer, logger *slog.Logger, recorder metrics.Recorder, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	opts = append(opts, grpc.ChainUnaryInterceptor(UnaryInterceptor(logger, recorder)))
	grpcServer := grpc.NewServer(opts...)
	RegisterChartServiceServer(grpcServer, charts)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	// empty string means overall server health
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	return grpcServer, healthServer
}
