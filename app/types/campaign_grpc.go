package types

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// The service exchanges well-known Struct and Empty messages, so no
// generated message types are needed; only the service descriptor is
// declared here.

const (
	CampaignService_StartCampaign_FullMethodName     = "/campaign.v1.CampaignService/StartCampaign"
	CampaignService_StopCampaign_FullMethodName      = "/campaign.v1.CampaignService/StopCampaign"
	CampaignService_GetCampaignStatus_FullMethodName = "/campaign.v1.CampaignService/GetCampaignStatus"
)

// CampaignServiceClient is the client API for CampaignService.
type CampaignServiceClient interface {
	StartCampaign(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	StopCampaign(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetCampaignStatus(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type campaignServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewCampaignServiceClient wraps a connection.
func NewCampaignServiceClient(cc grpc.ClientConnInterface) CampaignServiceClient {
	return &campaignServiceClient{cc}
}

func (c *campaignServiceClient) StartCampaign(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, CampaignService_StartCampaign_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *campaignServiceClient) StopCampaign(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, CampaignService_StopCampaign_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *campaignServiceClient) GetCampaignStatus(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, CampaignService_GetCampaignStatus_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// CampaignServiceServer is the server API for CampaignService.
type CampaignServiceServer interface {
	StartCampaign(context.Context, *structpb.Struct) (*structpb.Struct, error)
	StopCampaign(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetCampaignStatus(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	mustEmbedUnimplementedCampaignServiceServer()
}

// UnimplementedCampaignServiceServer must be embedded by implementations.
type UnimplementedCampaignServiceServer struct{}

func (UnimplementedCampaignServiceServer) StartCampaign(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method StartCampaign not implemented")
}

func (UnimplementedCampaignServiceServer) StopCampaign(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method StopCampaign not implemented")
}

func (UnimplementedCampaignServiceServer) GetCampaignStatus(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetCampaignStatus not implemented")
}

func (UnimplementedCampaignServiceServer) mustEmbedUnimplementedCampaignServiceServer() {}

// RegisterCampaignServiceServer registers srv on s.
func RegisterCampaignServiceServer(s grpc.ServiceRegistrar, srv CampaignServiceServer) {
	s.RegisterService(&CampaignService_ServiceDesc, srv)
}

func _CampaignService_StartCampaign_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CampaignServiceServer).StartCampaign(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CampaignService_StartCampaign_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CampaignServiceServer).StartCampaign(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _CampaignService_StopCampaign_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CampaignServiceServer).StopCampaign(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CampaignService_StopCampaign_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CampaignServiceServer).StopCampaign(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _CampaignService_GetCampaignStatus_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CampaignServiceServer).GetCampaignStatus(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CampaignService_GetCampaignStatus_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CampaignServiceServer).GetCampaignStatus(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// CampaignService_ServiceDesc is the grpc.ServiceDesc for CampaignService.
var CampaignService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "campaign.v1.CampaignService",
	HandlerType: (*CampaignServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "StartCampaign", Handler: _CampaignService_StartCampaign_Handler},
		{MethodName: "StopCampaign", Handler: _CampaignService_StopCampaign_Handler},
		{MethodName: "GetCampaignStatus", Handler: _CampaignService_GetCampaignStatus_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "campaign/v1/campaign.proto",
}
