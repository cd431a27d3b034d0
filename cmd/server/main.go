// Package main provides the entry point for the parlayscope API server.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/parlayscope/internal/config"
	"github.com/yourusername/parlayscope/internal/database"
	"github.com/yourusername/parlayscope/internal/frames"
	"github.com/yourusername/parlayscope/internal/health"
	"github.com/yourusername/parlayscope/internal/insights"
	"github.com/yourusername/parlayscope/internal/logger"
	"github.com/yourusername/parlayscope/internal/metrics"
	"github.com/yourusername/parlayscope/internal/repository"
	"github.com/yourusername/parlayscope/internal/scheduler"
	"github.com/yourusername/parlayscope/internal/server"
	"github.com/yourusername/parlayscope/internal/service"
	"github.com/yourusername/parlayscope/internal/vision"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	cfg        *config.Config
	appLog     *logrus.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
}

var rootCmd = &cobra.Command{
	Use:   "parlayscope-server",
	Short: "Parlay slip companion API server",
	Long:  `Serves parlay simulations, slip video extraction and betting insights over HTTP and websockets.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadWithDefaults(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
			region := os.Getenv("AWS_REGION")
			secretName := os.Getenv("AWS_SECRET_NAME")
			if region == "" || secretName == "" {
				return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
			}
			if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
				return fmt.Errorf("failed to load secrets: %w", err)
			}
		}

		if err := config.Validate(cfg); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		appLog = logger.NewLogger(cfg.App.LogLevel)
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		runServer()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func runServer() {
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"version":     Version,
		"commit":      GitCommit,
		"build_date":  BuildDate,
	}).Info("Parlayscope server starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics.InitRegistry()

	db, err := database.NewDB(ctx, &cfg.Database)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()
	appLog.Info("Database connection established")

	repos, err := repository.NewRepositories(db)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize repositories")
	}

	visionClient := vision.NewCachedClient(&cfg.VisionService, appLog)
	appLog.WithField("vision_service_url", cfg.VisionService.BaseURL).Info("Vision client initialized")

	extractor := frames.NewExtractor(frames.Config{
		SampleIntervalSeconds: cfg.Extraction.SampleIntervalSeconds,
		MaxFrames:             cfg.Extraction.MaxFrames,
		MaxVideoBytes:         cfg.MaxVideoBytes(),
		FFmpegPath:            cfg.Extraction.FFmpegPath,
		FFprobePath:           cfg.Extraction.FFprobePath,
	}, appLog)

	audit := logger.NewAuditLogger(appLog)
	simulationSvc := service.NewSimulationService(repos.Simulation, &cfg.Simulator, audit, appLog)
	slipSvc := service.NewSlipService(extractor, visionClient, repos.Slip, repos.Simulation, db, cfg.Extraction.HashDistance, audit, appLog)
	insightsSvc := insights.NewService(visionClient, repos.Insight, time.Duration(cfg.Insights.FreshnessMinutes)*time.Minute, appLog)

	hub := server.NewHub()
	handler := server.NewHandler(simulationSvc, slipSvc, insightsSvc, hub, cfg.MaxVideoBytes(), cfg.Features.HedgeSuggestionsEnabled, appLog)
	apiServer := server.NewServer(&cfg.Server, handler, appLog)

	healthServer := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Commit:      GitCommit,
		Logger:      appLog,
		DB:          db,
		Vision:      visionClient,
	})
	if err := healthServer.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to start health server")
	}

	var sched *scheduler.Scheduler
	if cfg.Features.InsightRefreshEnabled {
		schedLog := log.New(os.Stdout, "scheduler: ", log.LstdFlags)
		sched = scheduler.NewScheduler(insightsSvc, repos.Insight, schedLog)
		if err := sched.ScheduleSharpMoneyRefresh(cfg.Insights.SharpMoneyCron); err != nil {
			appLog.WithError(err).Fatal("Failed to schedule sharp money refresh")
		}
		if err := sched.ScheduleHitRateRefresh(cfg.Insights.HitRateCron); err != nil {
			appLog.WithError(err).Fatal("Failed to schedule hit rate refresh")
		}
		if err := sched.ScheduleExpiredInsightCleanup(15 * 60); err != nil {
			appLog.WithError(err).Fatal("Failed to schedule insight cleanup")
		}
		if err := sched.Start(); err != nil {
			appLog.WithError(err).Fatal("Failed to start scheduler")
		}
		appLog.Info("Insight refresh scheduler started")
	} else {
		appLog.Info("Insight refresh disabled; skipping scheduler")
	}

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
		metricsServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler: mux,
		}
		go func() {
			appLog.WithField("port", cfg.Metrics.Port).Info("Metrics server starting")
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				appLog.WithError(err).Error("Metrics server error")
			}
		}()
	}

	go func() {
		if err := apiServer.Start(); err != nil {
			appLog.WithError(err).Fatal("API server failed")
		}
	}()

	healthServer.SetReady(true)
	appLog.WithFields(logrus.Fields{
		"api_port":       cfg.Server.Port,
		"video_uploads":  cfg.Features.VideoUploadsEnabled,
		"insight_cycles": cfg.Features.InsightRefreshEnabled,
	}).Info("Parlayscope server is running")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	appLog.WithField("signal", sig).Info("Shutdown signal received")

	healthServer.SetReady(false)
	cancel()

	if sched != nil {
		if err := sched.Stop(); err != nil {
			appLog.WithError(err).Error("Error during scheduler shutdown")
		}
	}
	if err := apiServer.Shutdown(); err != nil {
		appLog.WithError(err).Error("Error during API server shutdown")
	}
	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			appLog.WithError(err).Error("Error during metrics server shutdown")
		}
	}

	appLog.Info("Parlayscope server shut down successfully")
}
