package cmd

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vibast-solutions/ms-go-campaigns/app/campaign"
	"github.com/vibast-solutions/ms-go-campaigns/app/controller"
	grpcserver "github.com/vibast-solutions/ms-go-campaigns/app/grpc"
	"github.com/vibast-solutions/ms-go-campaigns/app/logger"
	"github.com/vibast-solutions/ms-go-campaigns/app/preparer"
	"github.com/vibast-solutions/ms-go-campaigns/app/service"
	types "github.com/vibast-solutions/ms-go-campaigns/app/types"
	"github.com/vibast-solutions/ms-go-campaigns/config"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and gRPC servers",
	Long:  "Start both HTTP (Echo) and gRPC servers for the campaign service.",
	Run:   runServe,
}

// init registers the serve command.
func init() {
	rootCmd.AddCommand(serveCmd)
}

// runServe wires dependencies and starts HTTP and gRPC servers.
func runServe(_ *cobra.Command, _ []string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logr, err := logger.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}

	ctx := context.Background()

	db, err := openDatabase(cfg)
	if err != nil {
		logr.WithError(err).Fatal("Failed to connect to database")
	}
	if db != nil {
		defer db.Close()
	}

	rdb, err := openRedis(ctx, cfg)
	if err != nil {
		logr.WithError(err).Fatal("Failed to connect to Redis")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	locker, err := buildLocker(cfg, db, rdb)
	if err != nil {
		logr.WithError(err).Fatal("Failed to build run lock")
	}

	transport, err := buildTransport(ctx, cfg, logr)
	if err != nil {
		logr.WithError(err).Fatal("Failed to build email transport")
	}

	campaigns := service.NewCampaignService(
		buildStore(db),
		transport,
		preparer.NewDefaultChain(),
		locker,
		buildPublisher(rdb),
		logr,
		service.Options{
			LockTTL:            cfg.LockTTL,
			MaxAttachmentBytes: cfg.MaxAttachmentBytes,
			DedupeContacts:     cfg.DedupeContacts,
		},
	)
	campaignController := controller.NewCampaignController(campaigns, logr)
	grpcCampaignServer := grpcserver.NewServer(campaigns)

	e := setupHTTPServer(campaignController)
	grpcServer, lis := setupGRPCServer(cfg, grpcCampaignServer, logr)

	logr.WithFields(logrus.Fields{
		"store":    storeName(db),
		"lock":     cfg.LockBackend,
		"provider": cfg.EmailProvider,
		"events":   rdb != nil,
	}).Info("Campaign service configured")

	go func() {
		httpAddr := net.JoinHostPort(cfg.HTTPHost, cfg.HTTPPort)
		logr.Infof("Starting HTTP server on %s", httpAddr)
		if err := e.Start(httpAddr); err != nil && err != http.ErrServerClosed {
			logr.WithError(err).Fatal("HTTP server error")
		}
	}()

	go func() {
		logr.Infof("Starting gRPC server on %s", lis.Addr())
		if err := grpcServer.Serve(lis); err != nil {
			logr.WithError(err).Fatal("gRPC server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logr.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logr.WithError(err).Warn("HTTP shutdown error")
	}
	grpcServer.GracefulStop()

	stopCampaign(shutdownCtx, campaigns, logr)

	logr.Info("Server stopped")
}

// stopCampaign halts an active run and waits for its workers to drain.
func stopCampaign(ctx context.Context, campaigns *service.CampaignService, logr logrus.FieldLogger) {
	if _, err := campaigns.Stop(ctx); err != nil && !errors.Is(err, campaign.ErrNotRunning) {
		logr.WithError(err).Warn("Failed to stop campaign")
	}
	if err := campaigns.Wait(ctx); err != nil {
		logr.WithError(err).Warn("Campaign did not drain before shutdown")
	}
}

// setupHTTPServer configures the Echo HTTP server and routes.
func setupHTTPServer(campaignController *controller.CampaignController) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	e.POST("/upload-contacts", campaignController.UploadContacts)
	e.POST("/upload-attachment", campaignController.UploadAttachment)
	e.POST("/save-templates", campaignController.SaveTemplates)
	e.POST("/send-emails", campaignController.SendEmails)
	e.POST("/stop-campaign", campaignController.StopCampaign)
	e.GET("/campaign-status", campaignController.Status)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	return e
}

// setupGRPCServer builds the gRPC server and listener.
func setupGRPCServer(cfg *config.Config, campaignServer *grpcserver.Server, logr logrus.FieldLogger) (*grpc.Server, net.Listener) {
	grpcAddr := net.JoinHostPort(cfg.GRPCHost, cfg.GRPCPort)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		logr.WithError(err).Fatal("Failed to listen on gRPC port")
	}

	grpcServer := grpc.NewServer()
	types.RegisterCampaignServiceServer(grpcServer, campaignServer)

	return grpcServer, lis
}

func storeName(db *sql.DB) string {
	if db == nil {
		return "memory"
	}
	return "mysql"
}
