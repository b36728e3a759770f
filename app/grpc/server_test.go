package grpc

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/vibast-solutions/ms-go-campaigns/app/campaign"
	"github.com/vibast-solutions/ms-go-campaigns/app/service"
	types "github.com/vibast-solutions/ms-go-campaigns/app/types"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

type fakeRunner struct {
	startErr error
	stopErr  error
	started  []service.StartInput
	snap     campaign.Snapshot
}

func (r *fakeRunner) Start(_ context.Context, in service.StartInput) (campaign.Snapshot, error) {
	if r.startErr != nil {
		return campaign.Snapshot{}, r.startErr
	}
	r.started = append(r.started, in)
	return r.snap, nil
}

func (r *fakeRunner) Stop(context.Context) (campaign.Snapshot, error) {
	if r.stopErr != nil {
		return campaign.Snapshot{}, r.stopErr
	}
	return r.snap, nil
}

func (r *fakeRunner) Status() campaign.Snapshot { return r.snap }

func dial(t *testing.T, runner CampaignRunner) types.CampaignServiceClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	types.RegisterCampaignServiceServer(srv, NewServer(runner))
	go func() { _ = srv.Serve(lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() {
		conn.Close()
		srv.Stop()
	})
	return types.NewCampaignServiceClient(conn)
}

func startPayload(t *testing.T, extra map[string]interface{}) *structpb.Struct {
	t.Helper()
	fields := map[string]interface{}{
		"smtp_host":              "smtp.example.com",
		"port":                   587,
		"username":               "me@example.com",
		"password":               "pw",
		"subject":                "Hello [NAME]",
		"pause_between_messages": 2,
		"messages_per_block":     10,
		"max_connections":        2,
		"retries":                1,
	}
	for k, v := range extra {
		fields[k] = v
	}
	s, err := structpb.NewStruct(fields)
	if err != nil {
		t.Fatalf("NewStruct: %v", err)
	}
	return s
}

func TestStartCampaignSuccess(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{snap: campaign.Snapshot{RunID: "run-1", Status: campaign.StatusRunning, IsRunning: true, Total: 4, Remaining: 4}}
	client := dial(t, runner)

	out, err := client.StartCampaign(context.Background(), startPayload(t, nil))
	if err != nil {
		t.Fatalf("StartCampaign: %v", err)
	}
	if out.GetFields()["runId"].GetStringValue() != "run-1" || !out.GetFields()["isRunning"].GetBoolValue() {
		t.Fatalf("unexpected response %v", out)
	}
	if len(runner.started) != 1 || runner.started[0].SMTP.Port != 587 || runner.started[0].Settings.MaxConnections != 2 {
		t.Fatalf("unexpected start input %+v", runner.started)
	}
}

func TestStartCampaignErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload map[string]interface{}
		err     error
		code    codes.Code
	}{
		{name: "bad type", payload: map[string]interface{}{"port": "x"}, code: codes.InvalidArgument},
		{name: "negative pause", payload: map[string]interface{}{"pause_between_blocks": -1}, code: codes.InvalidArgument},
		{name: "validation", err: &campaign.ValidationError{Field: "subject", Reason: "subject is required"}, code: codes.InvalidArgument},
		{name: "conflict", err: campaign.ErrConflict, code: codes.AlreadyExists},
		{name: "internal", err: errors.New("db down"), code: codes.Internal},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			client := dial(t, &fakeRunner{startErr: tc.err})
			_, err := client.StartCampaign(context.Background(), startPayload(t, tc.payload))
			if status.Code(err) != tc.code {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
		})
	}
}

func TestStopAndStatus(t *testing.T) {
	t.Parallel()

	idle := dial(t, &fakeRunner{stopErr: campaign.ErrNotRunning, snap: campaign.Snapshot{Status: campaign.StatusIdle}})
	if _, err := idle.StopCampaign(context.Background(), &emptypb.Empty{}); status.Code(err) != codes.FailedPrecondition {
		t.Fatalf("expected FailedPrecondition, got %v", err)
	}

	out, err := idle.GetCampaignStatus(context.Background(), &emptypb.Empty{})
	if err != nil {
		t.Fatalf("GetCampaignStatus: %v", err)
	}
	if out.GetFields()["status"].GetStringValue() != "idle" || out.GetFields()["isRunning"].GetBoolValue() {
		t.Fatalf("unexpected status %v", out)
	}

	running := dial(t, &fakeRunner{snap: campaign.Snapshot{Status: campaign.StatusRunning, IsRunning: true, Remaining: 3}})
	out, err = running.StopCampaign(context.Background(), &emptypb.Empty{})
	if err != nil {
		t.Fatalf("StopCampaign: %v", err)
	}
	if out.GetFields()["remaining"].GetNumberValue() != 3 {
		t.Fatalf("unexpected stop response %v", out)
	}
}

type recordingRunner struct {
	fakeRunner
	requestID string
}

func (r *recordingRunner) Stop(ctx context.Context) (campaign.Snapshot, error) {
	r.requestID, _ = service.RequestIDFromContext(ctx)
	return r.snap, nil
}

func TestStopCampaignForwardsRequestID(t *testing.T) {
	t.Parallel()

	runner := &recordingRunner{fakeRunner: fakeRunner{snap: campaign.Snapshot{Status: campaign.StatusRunning, IsRunning: true}}}
	client := dial(t, runner)

	ctx := metadata.AppendToOutgoingContext(context.Background(), "x-request-id", "req-42")
	if _, err := client.StopCampaign(ctx, &emptypb.Empty{}); err != nil {
		t.Fatalf("StopCampaign: %v", err)
	}
	if runner.requestID != "req-42" {
		t.Fatalf("expected request id req-42, got %q", runner.requestID)
	}
}
