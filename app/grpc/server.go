package grpc

import (
	"context"
	"errors"

	"github.com/vibast-solutions/ms-go-campaigns/app/campaign"
	"github.com/vibast-solutions/ms-go-campaigns/app/dto"
	"github.com/vibast-solutions/ms-go-campaigns/app/service"
	types "github.com/vibast-solutions/ms-go-campaigns/app/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// CampaignRunner is the part of the campaign service the gRPC API drives.
type CampaignRunner interface {
	Start(ctx context.Context, in service.StartInput) (campaign.Snapshot, error)
	Stop(ctx context.Context) (campaign.Snapshot, error)
	Status() campaign.Snapshot
}

type Server struct {
	types.UnimplementedCampaignServiceServer
	campaigns CampaignRunner
}

// NewServer constructs a gRPC server handler.
func NewServer(campaigns CampaignRunner) *Server {
	return &Server{campaigns: campaigns}
}

// StartCampaign validates the request and launches a run.
func (s *Server) StartCampaign(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := dto.FromStruct(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid request: "+err.Error())
	}
	if err := req.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	snap, err := s.campaigns.Start(requestContext(ctx), service.StartInput{Settings: req.Settings(), SMTP: req.SMTPConfig()})
	if err != nil {
		return nil, toStatus(err)
	}
	return snapshotStruct(snap)
}

// StopCampaign requests a graceful stop of the running campaign.
func (s *Server) StopCampaign(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	snap, err := s.campaigns.Stop(requestContext(ctx))
	if err != nil {
		return nil, toStatus(err)
	}
	return snapshotStruct(snap)
}

// GetCampaignStatus returns the current snapshot.
func (s *Server) GetCampaignStatus(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return snapshotStruct(s.campaigns.Status())
}

func snapshotStruct(snap campaign.Snapshot) (*structpb.Struct, error) {
	out, err := dto.NewStatusResponse(snap).ToStruct()
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to encode status")
	}
	return out, nil
}

func toStatus(err error) error {
	switch {
	case campaign.IsInputError(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, campaign.ErrConflict):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, campaign.ErrNotRunning):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

// requestContext copies the x-request-id metadata value into ctx.
func requestContext(ctx context.Context) context.Context {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ctx
	}
	if ids := md.Get("x-request-id"); len(ids) > 0 {
		return service.WithRequestID(ctx, ids[0])
	}
	return ctx
}
