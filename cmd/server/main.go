package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	httpadapter "github.com/couchcryptid/crime-hotspot-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/crime-hotspot-service/internal/adapter/kafka"
	"github.com/couchcryptid/crime-hotspot-service/internal/adapter/mapbox"
	"github.com/couchcryptid/crime-hotspot-service/internal/adapter/mlmodel"
	"github.com/couchcryptid/crime-hotspot-service/internal/analysis"
	"github.com/couchcryptid/crime-hotspot-service/internal/config"
	"github.com/couchcryptid/crime-hotspot-service/internal/dataset"
	"github.com/couchcryptid/crime-hotspot-service/internal/domain"
	"github.com/couchcryptid/crime-hotspot-service/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	data, err := dataset.LoadFiles(dataset.Sources{
		Records:        cfg.CrimeDataPath,
		Locations:      cfg.LocationsPath,
		Cities:         cfg.CitiesPath,
		Categories:     cfg.CrimeCategoriesPath,
		Weights:        cfg.SeverityWeightsPath,
		DefaultCeiling: cfg.SeverityCeiling,
	}, logger)
	if err != nil {
		logger.Error("failed to load dataset", "error", err)
		os.Exit(1)
	}

	var collab analysis.Collaborators

	// Geocoding fallback (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, cfg.MapboxRateLimit, metrics, logger)
		collab.Geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		logger.Info("mapbox geocoding enabled",
			"cache_size", cfg.MapboxCacheSize,
			"timeout", cfg.MapboxTimeout,
			"rate_limit", cfg.MapboxRateLimit,
		)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	// Crime-rate model (enabled by ML_SERVICE_URL).
	if cfg.PredictionEnabled() {
		var predictor domain.Predictor = mlmodel.NewClient(cfg.MLServiceURL, cfg.MLTimeout, metrics, logger)
		if cfg.PredictionCacheTTL > 0 {
			predictor = mlmodel.NewCachedPredictor(predictor, cfg.PredictionCacheTTL, metrics)
		}
		collab.Predictor = predictor
		logger.Info("prediction enabled", "url", cfg.MLServiceURL, "cache_ttl", cfg.PredictionCacheTTL)
	} else {
		logger.Info("prediction disabled")
	}

	// Report stream.
	var publisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg, logger)
		collab.Publisher = publisher
		logger.Info("report publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaReportTopic)
	}

	svc := analysis.New(data, analysis.Options{
		HotspotRadiusKm: cfg.HotspotRadiusKm,
		Cluster: domain.ClusterParams{
			EpsilonKm: cfg.ClusterEpsilonKm,
			MinPoints: cfg.ClusterMinPoints,
		},
	}, collab, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, cfg.CORSAllowedOrigins, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
		if publisher != nil {
			if err := publisher.Close(); err != nil {
				logger.Error("kafka publisher close error", "error", err)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("http server error", "error", err)
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}
