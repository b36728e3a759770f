package cmd

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-campaigns/app/controller"
	"github.com/vibast-solutions/ms-go-campaigns/app/lock"
	"github.com/vibast-solutions/ms-go-campaigns/app/preparer"
	"github.com/vibast-solutions/ms-go-campaigns/app/provider"
	"github.com/vibast-solutions/ms-go-campaigns/app/repository"
	"github.com/vibast-solutions/ms-go-campaigns/app/service"
	"github.com/vibast-solutions/ms-go-campaigns/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newCampaignsTestServer(t *testing.T) *http.Server {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	campaigns := service.NewCampaignService(
		repository.NewMemoryStore(),
		provider.NewNoopTransport(log),
		preparer.NewDefaultChain(),
		lock.NewNopLocker(),
		nil,
		log,
		service.Options{},
	)
	e := setupHTTPServer(controller.NewCampaignController(campaigns, log))
	return &http.Server{Handler: e}
}

func TestSetupHTTPServerHealthRoute(t *testing.T) {
	server := newCampaignsTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected health payload: %s", rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected request id header")
	}
}

func TestSetupHTTPServerCampaignStatusRoute(t *testing.T) {
	server := newCampaignsTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/campaign-status", nil)
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"isRunning":false`) {
		t.Fatalf("unexpected status payload: %s", rec.Body.String())
	}
}

func TestSetupHTTPServerRejectsWrongMethod(t *testing.T) {
	server := newCampaignsTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/send-emails", nil)
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rec.Code)
	}
}

func TestSetupHTTPServerStopWithoutRun(t *testing.T) {
	server := newCampaignsTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/stop-campaign", nil)
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}
}

func TestBuildLocker(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	locker, err := buildLocker(&config.Config{LockBackend: "redis"}, nil, rdb)
	if err != nil {
		t.Fatalf("redis locker: %v", err)
	}
	if _, ok := locker.(*lock.RedisLocker); !ok {
		t.Fatalf("expected redis locker, got %T", locker)
	}

	locker, err = buildLocker(&config.Config{LockBackend: "none"}, nil, nil)
	if err != nil {
		t.Fatalf("nop locker: %v", err)
	}
	if _, ok := locker.(*lock.NopLocker); !ok {
		t.Fatalf("expected nop locker, got %T", locker)
	}

	if _, err := buildLocker(&config.Config{LockBackend: "mysql"}, nil, nil); err == nil {
		t.Fatal("expected error for mysql locker without database")
	}
}

func TestBuildStoreAndPublisherWithoutBackends(t *testing.T) {
	if _, ok := buildStore(nil).(*repository.MemoryStore); !ok {
		t.Fatal("expected memory store without database")
	}
	if buildPublisher(nil) != nil {
		t.Fatal("expected nil publisher without redis")
	}
}

func TestBuildTransport(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	tests := []struct {
		provider string
		wantErr  bool
	}{
		{provider: "smtp"},
		{provider: "noop"},
		{provider: "carrier-pigeon", wantErr: true},
	}

	for _, tc := range tests {
		transport, err := buildTransport(context.Background(), &config.Config{EmailProvider: tc.provider}, log)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%s: expected error", tc.provider)
			}
			continue
		}
		if err != nil || transport == nil {
			t.Fatalf("%s: unexpected result %v, %v", tc.provider, transport, err)
		}
	}
}
