package config

import (
	"os"
	"strconv"
	"time"

	"github.com/apex/log"
	"github.com/joho/godotenv"
)

const (
	StoreMySQL  = "mysql"
	StoreMemory = "memory"
)

// Config holds all configuration for the pothole service
type Config struct {
	// Database configuration
	DBHost           string
	DBPort           string
	DBUser           string
	DBPassword       string
	DBName           string
	DBMaxOpenConns   int
	DBMaxIdleConns   int
	DBPingMaxWaitSec int

	// Server configuration
	Port         string
	StoreBackend string

	// Auth Service configuration
	AuthServiceURL string

	// RabbitMQ configuration
	AMQPURL              string
	AMQPExchange         string
	AMQPStatusRoutingKey string

	// Geospatial policy
	MaxExportAreaM2       float64
	HeatmapGridResolution float64
	MapRetention          time.Duration

	// Export rate limiting, per client IP
	ExportRatePerMinute int
	ExportRateBurst     int

	LeaderboardSize int
}

// Load loads configuration from environment variables. A .env file in the
// working directory is read first when present.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Info("Loaded environment from .env")
	}

	config := &Config{
		// Database defaults
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnv("DB_PORT", "3306"),
		DBUser:           getEnv("DB_USER", "server"),
		DBPassword:       getEnv("DB_PASSWORD", "secret"),
		DBName:           getEnv("DB_NAME", "potholes"),
		DBMaxOpenConns:   getIntEnv("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:   getIntEnv("DB_MAX_IDLE_CONNS", 10),
		DBPingMaxWaitSec: getIntEnv("DB_PING_MAX_WAIT_SEC", 60),

		// Server defaults
		Port:         getEnv("PORT", "8080"),
		StoreBackend: getEnv("STORE_BACKEND", StoreMySQL),

		// Auth Service defaults
		AuthServiceURL: getEnv("AUTH_SERVICE_URL", "http://auth-service:8080"),

		// RabbitMQ defaults
		AMQPURL:              getEnv("AMQP_URL", ""),
		AMQPExchange:         getEnv("AMQP_EXCHANGE", "potholes"),
		AMQPStatusRoutingKey: getEnv("AMQP_STATUS_ROUTING_KEY", "report.status"),

		MaxExportAreaM2:       getFloatEnv("MAX_EXPORT_AREA_M2", 300000),
		HeatmapGridResolution: getFloatEnv("HEATMAP_GRID_RESOLUTION", 0.1),
		MapRetention:          getDurationEnv("MAP_RETENTION", 30*24*time.Hour),

		ExportRatePerMinute: getIntEnv("EXPORT_RATE_PER_MINUTE", 10),
		ExportRateBurst:     getIntEnv("EXPORT_RATE_BURST", 3),

		LeaderboardSize: getIntEnv("LEADERBOARD_SIZE", 10),
	}

	return config
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv gets an integer environment variable or returns a default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Warnf("Ignoring malformed %s=%q, using %d", key, value, defaultValue)
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Warnf("Ignoring malformed %s=%q, using %g", key, value, defaultValue)
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Warnf("Ignoring malformed %s=%q, using %v", key, value, defaultValue)
	}
	return defaultValue
}
