// Command storefront serves the Acrique storefront and admin console pages.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/config"
	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/invalidation"
	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/query"
	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/storefront"
	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/uploadstore"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

const shutdownTimeout = 30 * time.Second

func main() {
	configPath := flag.String("config", os.Getenv("ACRIQUE_CONFIG"), "path to the YAML config file")
	flag.Parse()

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if err := run(*configPath, logger); err != nil {
		logger.Fatal().Err(err).Msg("Storefront failed.")
	}
}

func run(configPath string, logger zerolog.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	logger = logger.Level(level).With().Str("service", cfg.ServiceName).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := query.NewPrometheusMetrics(registry, cfg.MetricsNamespace)
	if err != nil {
		return err
	}

	deps := storefront.Dependencies{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Metrics:    metrics,
		Gatherer:   registry,
	}

	var clientOpts []option.ClientOption
	if cfg.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	if cfg.Redis.Addr != "" {
		redisStore, err := query.NewRedisStore(ctx, &cfg.Redis, logger)
		if err != nil {
			return err
		}
		defer redisStore.Close()
		deps.StoreFor = func(sessionID string) query.Store {
			return redisStore.Scoped("session:" + sessionID)
		}
		deps.SharedStore = redisStore.Scoped("shared")
	}

	if cfg.Uploads.BucketName != "" {
		gcs, err := storage.NewClient(ctx, clientOpts...)
		if err != nil {
			return fmt.Errorf("failed to create storage client: %w", err)
		}
		defer gcs.Close()
		objects, err := uploadstore.New(uploadstore.NewGCSClientAdapter(gcs), cfg.Uploads, logger)
		if err != nil {
			return err
		}
		deps.Objects = objects
	}

	var (
		psClient  *pubsub.Client
		publisher *invalidation.Publisher
		consumer  *invalidation.Consumer
	)
	if cfg.Invalidation.Enabled() {
		psClient, err = pubsub.NewClient(ctx, cfg.ProjectID, clientOpts...)
		if err != nil {
			return fmt.Errorf("failed to create pubsub client: %w", err)
		}
		defer psClient.Close()

		pubCfg := invalidation.NewPublisherDefaults(cfg.Invalidation.TopicID)
		if cfg.Invalidation.Origin != "" {
			pubCfg.Origin = cfg.Invalidation.Origin
		}
		publisher, err = invalidation.NewPublisher(ctx, pubCfg, psClient, logger)
		if err != nil {
			return err
		}
		deps.Publisher = publisher
	}

	srv, err := storefront.New(cfg, deps, logger)
	if err != nil {
		return err
	}

	if publisher != nil {
		subCfg := invalidation.NewConsumerDefaults(cfg.Invalidation.SubscriptionFor(publisher.Origin()))
		consumer, err = invalidation.NewConsumer(ctx, subCfg, psClient, publisher.Origin(), srv, logger)
		if err != nil {
			return err
		}
		if err := consumer.Start(ctx); err != nil {
			return err
		}
	}

	if err := srv.Start(); err != nil {
		return err
	}
	logger.Info().Str("address", srv.Addr()).Str("api", cfg.API.BaseURL).Bool("invalidation", publisher != nil).Msg("Storefront started.")

	<-ctx.Done()
	logger.Info().Msg("Shutdown signal received.")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if consumer != nil {
		if err := consumer.Stop(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Failed to stop invalidation consumer.")
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Failed to shut down storefront.")
	}
	if publisher != nil {
		if err := publisher.Stop(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Failed to stop invalidation publisher.")
		}
	}
	logger.Info().Msg("Storefront stopped.")
	return nil
}
