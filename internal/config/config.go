// Package config holds configuration for the run monitor and the dungeon producer.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/afikmenashe/dungeon-monitor/internal/events"
)

const (
	DefaultKafkaBrokers    = "localhost:9092"
	DefaultTopic           = "dungeon_topic"
	DefaultConsumerGroupID = "schroder_group"
	DefaultInterval        = time.Second
	DefaultRuns            = 3
)

// Config holds all configuration parameters for the run monitor.
type Config struct {
	KafkaBrokers     string
	Topic            string
	ConsumerGroupID  string
	Thresholds       events.Thresholds
	AlertsTopic      string
	PublishSummaries bool
	RedisAddr        string
	PostgresDSN      string
	MetricsAddr      string
	LogLevel         string
	LogFormat        string
}

// Validate checks that all required configuration fields are set and have valid values.
func (c *Config) Validate() error {
	if c.KafkaBrokers == "" {
		return fmt.Errorf("kafka-brokers cannot be empty")
	}
	if c.Topic == "" {
		return fmt.Errorf("topic cannot be empty")
	}
	if c.ConsumerGroupID == "" {
		return fmt.Errorf("consumer-group-id cannot be empty")
	}
	if c.AlertsTopic != "" && c.AlertsTopic == c.Topic {
		return fmt.Errorf("alerts-topic must differ from topic %q", c.Topic)
	}
	if c.PublishSummaries && c.AlertsTopic == "" {
		return fmt.Errorf("publish-summaries requires alerts-topic")
	}
	return validateLogFormat(c.LogFormat)
}

// ProducerConfig holds configuration for the dungeon event producer.
type ProducerConfig struct {
	KafkaBrokers string
	Topic        string
	Interval     time.Duration
	Runs         int
	Count        int
	Seed         int64
	Mock         bool
	LogLevel     string
	LogFormat    string
}

// Validate checks the producer configuration.
func (c *ProducerConfig) Validate() error {
	if c.KafkaBrokers == "" && !c.Mock {
		return fmt.Errorf("kafka-brokers cannot be empty")
	}
	if c.Topic == "" {
		return fmt.Errorf("topic cannot be empty")
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be > 0, got %s", c.Interval)
	}
	if c.Runs < 1 {
		return fmt.Errorf("runs must be >= 1, got %d", c.Runs)
	}
	if c.Count < 0 {
		return fmt.Errorf("count must be >= 0, got %d", c.Count)
	}
	return validateLogFormat(c.LogFormat)
}

func validateLogFormat(format string) error {
	switch strings.ToLower(format) {
	case "", "text", "json":
		return nil
	default:
		return fmt.Errorf("log-format must be text or json, got %q", format)
	}
}

// ParseThreshold parses an integer threshold. Anything that is not an integer
// yields def, so a bad environment value never stops the monitor.
func ParseThreshold(raw string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return v
}

// ParseInterval parses a number of seconds, fractions allowed. Invalid or
// non-positive values yield DefaultInterval.
func ParseInterval(raw string) time.Duration {
	secs, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || secs <= 0 {
		return DefaultInterval
	}
	return time.Duration(secs * float64(time.Second))
}
