package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/afikmenashe/dungeon-monitor/internal/config"
	"github.com/afikmenashe/dungeon-monitor/internal/consumer"
	"github.com/afikmenashe/dungeon-monitor/internal/database"
	"github.com/afikmenashe/dungeon-monitor/internal/events"
	"github.com/afikmenashe/dungeon-monitor/internal/metrics"
	"github.com/afikmenashe/dungeon-monitor/internal/processor"
	"github.com/afikmenashe/dungeon-monitor/internal/producer"
	"github.com/afikmenashe/dungeon-monitor/internal/shared"
	"github.com/afikmenashe/dungeon-monitor/internal/sink"
	"github.com/afikmenashe/dungeon-monitor/internal/state"
)

const serviceName = "run-monitor"

func main() {
	// Parse command-line flags with environment variable fallbacks
	cfg := &config.Config{}
	var lowHP, jackpotGold string
	flag.StringVar(&cfg.KafkaBrokers, "kafka-brokers", shared.GetEnvOrDefault("KAFKA_BROKERS", config.DefaultKafkaBrokers), "Kafka broker addresses (comma-separated)")
	flag.StringVar(&cfg.Topic, "topic", shared.GetEnvOrDefault("KAFKA_TOPIC", config.DefaultTopic), "Kafka topic carrying dungeon events")
	flag.StringVar(&cfg.ConsumerGroupID, "consumer-group-id", shared.GetEnvOrDefault("KAFKA_CONSUMER_GROUP_ID_JSON", config.DefaultConsumerGroupID), "Kafka consumer group ID")
	flag.StringVar(&lowHP, "low-hp-threshold", shared.GetEnvOrDefault("LOW_HP_THRESHOLD", strconv.Itoa(events.DefaultLowHPThreshold)), "HP at or below which a low HP alert fires")
	flag.StringVar(&jackpotGold, "jackpot-gold-threshold", shared.GetEnvOrDefault("JACKPOT_GOLD_THRESHOLD", strconv.Itoa(events.DefaultJackpotGoldThreshold)), "Loot gold at or above which a jackpot alert fires")
	flag.StringVar(&cfg.AlertsTopic, "alerts-topic", shared.GetEnvOrDefault("ALERTS_TOPIC", ""), "Kafka topic for alert records (empty = disabled)")
	flag.BoolVar(&cfg.PublishSummaries, "publish-summaries", false, "Also publish per-event summaries to the alerts topic")
	flag.StringVar(&cfg.RedisAddr, "redis-addr", shared.GetEnvOrDefault("REDIS_ADDR", ""), "Redis server address for metrics (empty = disabled)")
	flag.StringVar(&cfg.PostgresDSN, "postgres-dsn", shared.GetEnvOrDefault("POSTGRES_DSN", ""), "PostgreSQL connection string for the alert archive (empty = disabled)")
	flag.StringVar(&cfg.MetricsAddr, "metrics-addr", shared.GetEnvOrDefault("METRICS_ADDR", ""), "Listen address for the Prometheus endpoint (empty = disabled)")
	flag.StringVar(&cfg.LogLevel, "log-level", shared.GetEnvOrDefault("LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
	flag.StringVar(&cfg.LogFormat, "log-format", shared.GetEnvOrDefault("LOG_FORMAT", "text"), "Log format (text, json)")
	flag.Parse()

	cfg.Thresholds = events.Thresholds{
		LowHP:       config.ParseThreshold(lowHP, events.DefaultLowHPThreshold),
		JackpotGold: config.ParseThreshold(jackpotGold, events.DefaultJackpotGoldThreshold),
	}

	shared.SetupLogging(cfg.LogLevel, cfg.LogFormat)

	slog.Info("Starting run monitor",
		"kafka_brokers", cfg.KafkaBrokers,
		"topic", cfg.Topic,
		"consumer_group_id", cfg.ConsumerGroupID,
		"low_hp_threshold", cfg.Thresholds.LowHP,
		"jackpot_gold_threshold", cfg.Thresholds.JackpotGold,
		"alerts_topic", cfg.AlertsTopic,
		"redis_addr", cfg.RedisAddr,
		"postgres_dsn", shared.MaskDSN(cfg.PostgresDSN),
		"metrics_addr", cfg.MetricsAddr,
	)

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		slog.Error("Run monitor failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Run monitor stopped")
}

// run wires the monitor and blocks until the processing loop ends. Every
// resource is released through defers before it returns, including on failure.
func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			slog.Info("Received shutdown signal, shutting down gracefully...")
			cancel()
		case <-ctx.Done():
		}
	}()

	store := state.NewStore()

	// Metrics: Redis snapshot and Prometheus endpoint are both optional
	var recorders metrics.Multi
	if cfg.RedisAddr != "" {
		slog.Info("Connecting to Redis", "addr", cfg.RedisAddr)
		redisClient, err := shared.ConnectRedis(ctx, cfg.RedisAddr)
		if err != nil {
			slog.Info("Tip: Start Redis with 'docker compose up -d redis' or leave -redis-addr empty")
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		defer redisClient.Close()
		slog.Info("Successfully connected to Redis")

		collector := metrics.NewCollector(serviceName, redisClient)
		collector.TrackRuns(store.Len)
		collector.Start(ctx)
		defer collector.Stop()
		recorders = append(recorders, collector)
	}

	if cfg.MetricsAddr != "" {
		prom := metrics.NewPrometheus(store.Len)
		recorders = append(recorders, prom)

		mux := http.NewServeMux()
		mux.Handle("/metrics", prom.Handler())
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			slog.Info("Prometheus metrics available", "addr", cfg.MetricsAddr, "path", "/metrics")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("Metrics server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			srv.Shutdown(shutdownCtx)
		}()
	}

	// Sinks: log always, Kafka and Postgres archive when configured
	sinks := sink.Multi{sink.NewLogSink(nil)}
	defer func() {
		if err := sinks.Close(); err != nil {
			slog.Error("Failed to close sinks", "error", err)
		}
	}()

	if cfg.AlertsTopic != "" {
		slog.Info("Connecting to Kafka producer", "topic", cfg.AlertsTopic)
		alertProducer, err := producer.NewProducer(cfg.KafkaBrokers, cfg.AlertsTopic, producer.Options{Async: true, CreateTopic: true})
		if err != nil {
			return fmt.Errorf("failed to create Kafka producer: %w", err)
		}
		sinks = append(sinks, sink.NewKafkaSink(alertProducer, cfg.PublishSummaries))
		slog.Info("Successfully connected to Kafka producer")
	}

	if cfg.PostgresDSN != "" {
		slog.Info("Connecting to PostgreSQL database")
		db, err := database.NewDB(cfg.PostgresDSN)
		if err != nil {
			slog.Info("Tip: Start Postgres with 'docker compose up -d postgres' or leave -postgres-dsn empty")
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		if err := db.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("failed to prepare alert archive: %w", err)
		}
		archive := sink.NewArchiveSink(db, sink.DefaultArchiveBuffer)
		sinks = append(sinks, archive)
		// Drain the archive queue before db.Close runs.
		defer archive.Close()
	}

	// Initialize Kafka consumer
	slog.Info("Connecting to Kafka consumer", "topic", cfg.Topic, "group", cfg.ConsumerGroupID)
	kafkaConsumer, err := consumer.NewConsumer(cfg.KafkaBrokers, cfg.Topic, cfg.ConsumerGroupID)
	if err != nil {
		slog.Info("Tip: Start Kafka with 'docker compose up -d kafka'")
		return fmt.Errorf("failed to create Kafka consumer: %w", err)
	}
	slog.Info("Successfully connected to Kafka consumer")

	var opts []processor.Option
	if len(recorders) > 0 {
		opts = append(opts, processor.WithMetrics(recorders))
	}
	proc := processor.New(kafkaConsumer, sinks, store, cfg.Thresholds, opts...)

	// Main processing loop; the consumer is closed by Run on every exit path
	runErr := proc.Run(ctx)

	stats := kafkaConsumer.Stats()
	slog.Info("END consumer",
		"topic", cfg.Topic,
		"group", cfg.ConsumerGroupID,
		"runs_tracked", store.Len(),
		"messages_read", stats.Messages,
		"lag", stats.Lag,
		"reader_errors", stats.Errors,
	)

	if runErr != nil {
		return fmt.Errorf("dungeon event processing failed: %w", runErr)
	}
	return nil
}
