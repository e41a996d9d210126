package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var ErrMissingDatabaseURL = errors.New("missing env: DATABASE_URL")

type Config struct {
	HTTPAddr             string
	DatabaseDriver       string
	DatabaseURL          string
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool
	MaxBodyBytes         int64

	LogMode  string
	LogLevel string

	OTelEnabled     bool
	OTelServiceName string
	OTelEndpoint    string
	OTelHeaders     string
	OTelInsecure    bool
	OTelSampleRatio float64

	HealthCheckRetries int
	HealthCheckDelay   time.Duration
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:             getenv("HTTP_ADDR", ":8080"),
		DatabaseDriver:       strings.ToLower(getenv("DATABASE_DRIVER", "postgres")),
		DatabaseURL:          getenv("DATABASE_URL", ""),
		CORSAllowCredentials: getenv("CORS_ALLOW_CREDENTIALS", "false") == "true",
		MaxBodyBytes:         int64(getInt("MAX_BODY_BYTES", 1<<20)),
		LogMode:              getenv("LOG_MODE", "dev"),
		LogLevel:             getenv("LOG_LEVEL", "debug"),
		OTelEnabled:          getBool("OTEL_ENABLED"),
		OTelServiceName:      getenv("OTEL_SERVICE_NAME", "calendars"),
		OTelEndpoint:         getenv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTelHeaders:          getenv("OTEL_EXPORTER_OTLP_HEADERS", ""),
		OTelInsecure:         getBool("OTEL_EXPORTER_OTLP_INSECURE"),
		OTelSampleRatio:      getFloat("OTEL_SAMPLER_RATIO", 0.1),
		HealthCheckRetries:   getInt("HEALTH_CHECK_RETRIES", 5),
		HealthCheckDelay:     time.Duration(getInt("HEALTH_CHECK_DELAY_MS", 1000)) * time.Millisecond,
	}

	origins := strings.Split(getenv("CORS_ALLOWED_ORIGINS", ""), ",")
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	if cfg.DatabaseURL == "" {
		return cfg, ErrMissingDatabaseURL
	}
	return cfg, nil
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getInt(key string, def int) int {
	if v := getenv(key, ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := getenv(key, ""); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getBool(key string) bool {
	switch strings.ToLower(getenv(key, "")) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
