package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name. Messages are
// protobuf well-known types, so the descriptor is written by hand.
const ServiceName = "nursechart.v1.ChartService"

const (
	methodParseText     = "/" + ServiceName + "/ParseText"
	methodValidateChart = "/" + ServiceName + "/ValidateChart"
	methodGetResult     = "/" + ServiceName + "/GetResult"
	methodExportResults = "/" + ServiceName + "/ExportResults"
)

// ChartServiceServer is the server API for ChartService.
type ChartServiceServer interface {
	// ParseText takes {text, source, persist} and returns {id, structured_data, validation_results}.
	ParseText(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// ValidateChart takes {chart} and returns {validation_results, dropped}.
	ValidateChart(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetResult(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	// ExportResults takes {from_date, to_date} as YYYY-MM-DD and returns XLSX bytes.
	ExportResults(context.Context, *structpb.Struct) (*wrapperspb.BytesValue, error)
}

func RegisterChartServiceServer(s grpc.ServiceRegistrar, srv ChartServiceServer) {
	s.RegisterService(&ChartServiceDesc, srv)
}

var ChartServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ChartServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ParseText", Handler: parseTextHandler},
		{MethodName: "ValidateChart", Handler: validateChartHandler},
		{MethodName: "GetResult", Handler: getResultHandler},
		{MethodName: "ExportResults", Handler: exportResultsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "nursechart/v1/chart.proto",
}

func parseTextHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChartServiceServer).ParseText(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodParseText}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ChartServiceServer).ParseText(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func validateChartHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChartServiceServer).ValidateChart(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodValidateChart}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ChartServiceServer).ValidateChart(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func getResultHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChartServiceServer).GetResult(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetResult}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ChartServiceServer).GetResult(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func exportResultsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChartServiceServer).ExportResults(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodExportResults}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ChartServiceServer).ExportResults(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// ChartServiceClient is the client API for ChartService.
type ChartServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewChartServiceClient(cc grpc.ClientConnInterface) *ChartServiceClient {
	return &ChartServiceClient{cc: cc}
}

func (c *ChartServiceClient) ParseText(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodParseText, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ChartServiceClient) ValidateChart(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodValidateChart, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ChartServiceClient) GetResult(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodGetResult, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ChartServiceClient) ExportResults(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, methodExportResults, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
