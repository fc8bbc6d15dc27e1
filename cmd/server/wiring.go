package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"credverify/internal/credential/store"
	"credverify/internal/platform/config"
	"credverify/internal/platform/database"
	"credverify/internal/platform/health"
	"credverify/internal/platform/kafka"
	"credverify/internal/platform/kafka/producer"
	"credverify/internal/platform/redis"
	"credverify/migrations"
	"credverify/pkg/platform/audit"
	"credverify/pkg/platform/audit/publisher"
	kafkastore "credverify/pkg/platform/audit/store/kafka"
	memorystore "credverify/pkg/platform/audit/store/memory"
)

const (
	poolStatsInterval = 15 * time.Second
	auditBufferSize   = 1024
)

// openRegistry builds the configured revocation registry and registers its
// readiness check.
func openRegistry(ctx context.Context, cfg config.Server, h *health.Handler, g *errgroup.Group, gctx context.Context, log *slog.Logger) (store.Store, func(), error) {
	switch cfg.Registry.Backend {
	case config.BackendMemory:
		log.Warn("using in-memory revocation registry; records are lost on restart")
		return store.NewInMemory(), func() {}, nil

	case config.BackendPostgres:
		dbCfg := database.DefaultConfig()
		dbCfg.URL = cfg.Registry.DatabaseURL
		pool, err := database.New(ctx, dbCfg)
		if err != nil {
			return nil, nil, err
		}
		if err := database.ApplyMigrations(ctx, pool.DB(), migrations.FS); err != nil {
			pool.Close() //nolint:errcheck // best-effort cleanup on init failure
			return nil, nil, err
		}
		h.RegisterCheck("postgres", pool.Health)
		log.Info("using postgres revocation registry")
		return store.NewPostgres(pool.DB()), func() {
			if err := pool.Close(); err != nil {
				log.Error("failed to close database pool", "error", err)
			}
		}, nil

	case config.BackendRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		h.RegisterCheck("redis", client.Health)
		g.Go(func() error {
			ticker := time.NewTicker(poolStatsInterval)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					client.RecordPoolStats()
				}
			}
		})
		log.Info("using redis revocation registry")
		return store.NewRedis(client.Client), func() {
			if err := client.Close(); err != nil {
				log.Error("failed to close redis client", "error", err)
			}
		}, nil

	default:
		return nil, nil, fmt.Errorf("unknown registry backend %q", cfg.Registry.Backend)
	}
}

// openAudit publishes audit events to Kafka when brokers are configured and
// keeps them in memory otherwise.
func openAudit(cfg config.Server, h *health.Handler, log *slog.Logger) (*publisher.Publisher, func(), error) {
	var sink audit.Store
	var closeSink func()

	if cfg.Kafka.Brokers == "" {
		log.Info("audit events kept in memory; set KAFKA_BROKERS to publish them")
		sink = memorystore.NewInMemoryStore()
		closeSink = func() {}
	} else {
		p, err := producer.New(producer.DefaultConfig(cfg.Kafka.Brokers), log)
		if err != nil {
			return nil, nil, err
		}
		h.RegisterCheck("kafka", func(ctx context.Context) error {
			if err := kafka.CheckBrokers(ctx, cfg.Kafka.Brokers, 2*time.Second); err != nil {
				return err
			}
			return p.Healthy(ctx)
		})
		sink = kafkastore.New(p, cfg.Kafka.AuditTopic)
		closeSink = func() {
			if err := p.Close(); err != nil {
				log.Error("failed to close kafka producer", "error", err)
			}
		}
		log.Info("publishing audit events to kafka", "topic", cfg.Kafka.AuditTopic)
	}

	pub := publisher.NewPublisher(sink,
		publisher.WithAsyncBuffer(auditBufferSize),
		publisher.WithPublisherLogger(log),
	)
	// Drain queued events before the sink goes away.
	return pub, func() {
		pub.Close()
		closeSink()
	}, nil
}
