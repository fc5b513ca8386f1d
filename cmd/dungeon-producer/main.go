// Package main is the entry point for the dungeon event producer. It simulates
// several dungeon runs and publishes their events to Kafka at a fixed interval.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/afikmenashe/dungeon-monitor/internal/config"
	"github.com/afikmenashe/dungeon-monitor/internal/generator"
	"github.com/afikmenashe/dungeon-monitor/internal/producer"
	"github.com/afikmenashe/dungeon-monitor/internal/shared"
)

func main() {
	cfg := config.ProducerConfig{}
	var interval string
	flag.StringVar(&cfg.KafkaBrokers, "kafka-brokers", shared.GetEnvOrDefault("KAFKA_BROKERS", config.DefaultKafkaBrokers), "Kafka broker addresses (comma-separated)")
	flag.StringVar(&cfg.Topic, "topic", shared.GetEnvOrDefault("KAFKA_TOPIC", config.DefaultTopic), "Kafka topic name")
	flag.StringVar(&interval, "interval", shared.GetEnvOrDefault("MESSAGE_INTERVAL_SECONDS", "1"), "Seconds between events (fractions allowed)")
	flag.IntVar(&cfg.Runs, "runs", config.DefaultRuns, "Number of dungeon runs simulated at once")
	flag.IntVar(&cfg.Count, "count", 0, "Stop after N events (0 = run until interrupted)")
	flag.Int64Var(&cfg.Seed, "seed", 0, "Random seed for deterministic generation (0 = random)")
	flag.BoolVar(&cfg.Mock, "mock", false, "Use mock producer (no Kafka required, logs events instead)")
	flag.StringVar(&cfg.LogLevel, "log-level", shared.GetEnvOrDefault("LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
	flag.StringVar(&cfg.LogFormat, "log-format", shared.GetEnvOrDefault("LOG_FORMAT", "text"), "Log format (text, json)")
	flag.Parse()

	cfg.Interval = config.ParseInterval(interval)

	shared.SetupLogging(cfg.LogLevel, cfg.LogFormat)

	slog.Info("START dungeon producer",
		"kafka_brokers", cfg.KafkaBrokers,
		"topic", cfg.Topic,
		"interval", cfg.Interval,
		"runs", cfg.Runs,
		"count", cfg.Count,
		"seed", cfg.Seed,
	)

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	var pub producer.Publisher
	if cfg.Mock {
		slog.Info("Using mock mode - events will be logged but not sent to Kafka")
		pub = producer.NewMock(cfg.Topic)
	} else {
		slog.Info("Connecting to Kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.Topic)
		kafkaProd, err := producer.NewProducer(cfg.KafkaBrokers, cfg.Topic, producer.Options{CreateTopic: true})
		if err != nil {
			slog.Error("Failed to create Kafka producer", "error", err)
			slog.Info("Tip: Start Kafka with 'docker compose up -d' or use --mock flag to test without Kafka")
			os.Exit(1)
		}
		pub = kafkaProd
		slog.Info("Successfully connected to Kafka")
	}

	gen := generator.New(cfg)
	sent, err := generator.Stream(ctx, gen, pub, cfg.Interval, cfg.Count)

	if cerr := pub.Close(); cerr != nil {
		slog.Error("Failed to close producer", "error", cerr)
	}
	if err != nil {
		slog.Error("Event production failed", "error", err, "sent", sent)
		os.Exit(1)
	}

	slog.Info("END producer", "sent", sent)
}
