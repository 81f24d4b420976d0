// Package config loads service configuration from environment variables.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds indexer configuration.
type Config struct {
	Port        string
	LogLevel    string
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Deferred delivery.
	QueueKey          string
	EventChannel      string
	NotificationDelay time.Duration
	DeliveryRate      float64
	DeliveryBatch     int
	RulesPath         string

	// Telemetry.
	OTLPEndpoint     string
	TelemetryEnabled bool
}

// Load loads configuration from environment variables.
func Load() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "INFO"
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		// Default to local generic postgres
		dbURL = "postgres://safeindex@localhost:5432/safeindex?sslmode=disable"
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))

	delay := 5 * time.Second
	if v := os.Getenv("NOTIFICATION_DELAY_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			delay = time.Duration(secs) * time.Second
		}
	}

	deliveryRate := 50.0
	if v := os.Getenv("DELIVERY_RATE_PER_SEC"); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err == nil && rate > 0 {
			deliveryRate = rate
		}
	}

	deliveryBatch := 100
	if v := os.Getenv("DELIVERY_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			deliveryBatch = n
		}
	}

	otlpEndpoint := os.Getenv("OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	return &Config{
		Port:              port,
		LogLevel:          logLevel,
		DatabaseURL:       dbURL,
		RedisAddr:         redisAddr,
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           redisDB,
		QueueKey:          os.Getenv("QUEUE_KEY"),
		EventChannel:      os.Getenv("EVENT_CHANNEL"),
		NotificationDelay: delay,
		DeliveryRate:      deliveryRate,
		DeliveryBatch:     deliveryBatch,
		RulesPath:         os.Getenv("NOTIFICATION_RULES_PATH"),
		OTLPEndpoint:      otlpEndpoint,
		TelemetryEnabled:  os.Getenv("TELEMETRY_ENABLED") == "true",
	}
}
