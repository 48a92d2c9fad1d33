// Package config loads service configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every knob the service reads from the environment.
type Config struct {
	// Storage
	PostgresDSN   string
	ClickhouseDSN string
	UseMemory     bool

	// Ingest
	KafkaBrokers string
	KafkaGroupID string
	KafkaTopic   string
	WSFeedURL    string

	// Scheduling
	AggregationInterval time.Duration
	ScoringInterval     time.Duration
	CorrelationInterval time.Duration

	// API
	APIAddr     string
	MetricsAddr string
	RateRPS     int
	RateBurst   int

	// Logging
	LogLevel string
}

// Load reads configuration from the environment. A missing .env file is not
// an error; explicit environment variables always win.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		PostgresDSN:   getEnv("POSTGRES_DSN", ""),
		ClickhouseDSN: getEnv("CLICKHOUSE_DSN", ""),
		UseMemory:     getEnvBool("USE_MEMORY", false),

		KafkaBrokers: getEnv("KAFKA_BROKERS", "localhost:9092"),
		KafkaGroupID: getEnv("KAFKA_GROUP_ID", "fantoken-intel"),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "fan_token_observations"),
		WSFeedURL:    getEnv("WS_FEED_URL", ""),

		AggregationInterval: getEnvDuration("AGGREGATION_INTERVAL", 5*time.Minute),
		ScoringInterval:     getEnvDuration("SCORING_INTERVAL", 5*time.Minute),
		CorrelationInterval: getEnvDuration("CORRELATION_INTERVAL", 24*time.Hour),

		APIAddr:     getEnv("API_ADDR", ":8080"),
		MetricsAddr: getEnv("METRICS_ADDR", ":9090"),
		RateRPS:     getEnvInt("RATE_LIMIT_RPS", 10),
		RateBurst:   getEnvInt("RATE_LIMIT_BURST", 20),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
