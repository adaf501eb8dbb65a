package server

import (
	"context"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/nursechart/internal/common"
	"github.com/joseph-ayodele/nursechart/internal/metrics"
)

const requestIDHeader = "x-request-id"

// UnaryInterceptor tags each call with a request id, logs it and records
// its status code. An incoming x-request-id is reused.
func UnaryInterceptor(logger *slog.Logger, recorder metrics.Recorder) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.Nop()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		reqID := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if vals := md.Get(requestIDHeader); len(vals) > 0 {
				reqID = vals[0]
			}
		}
		if reqID == "" {
			reqID = uuid.NewString()
		}
		ctx = common.WithRequestID(ctx, reqID)
		_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDHeader, reqID))

		resp, err := handler(ctx, req)

		code := status.Code(err)
		method := path.Base(info.FullMethod)
		recorder.RPC(method, code.String())
		attrs := []any{
			"method", method,
			"code", code.String(),
			"request_id", reqID,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if err != nil {
			logger.Warn("rpc.done", append(attrs, "error", err)...)
		} else {
			logger.Info("rpc.done", attrs...)
		}
		return resp, err
	}
}
