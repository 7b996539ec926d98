// Package config provides configuration management for the pallet service.
//
// Values are read by viper from the environment, with an optional config.env
// file in the working directory or ./config. Environment variables win.
package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Snapshot backends.
const (
	SnapshotBackendFile  = "file"
	SnapshotBackendMongo = "mongo"
)

// Config holds the complete application configuration.
type Config struct {
	Server   ServerConfig
	Planner  PlannerConfig
	Database DatabaseConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port              string
	RateLimit         int
	RateWindow        time.Duration
	RequestTimeout    time.Duration
	CORSOrigins       []string
	EnableIdempotency bool
	SwaggerUser       string
	SwaggerPass       string
	// MaxUploadSize limits invoice uploads, in bytes.
	MaxUploadSize int64
}

// PlannerConfig holds the planning session configuration.
type PlannerConfig struct {
	AutoSaveDebounce time.Duration
	AutoSaveTimeout  time.Duration
	SessionCacheSize int
	SessionTTL       time.Duration
	// SnapshotBackend is "file" or "mongo"; mongo needs the database enabled.
	SnapshotBackend string
	SnapshotDir     string
}

// DatabaseConfig holds MongoDB configuration.
type DatabaseConfig struct {
	URI          string
	DatabaseName string
	Enabled      bool
	// MaxPoolSize bounds the connections kept by the MongoDB client.
	MaxPoolSize int
	// SnapshotTTL expires snapshots stored in MongoDB after their last save.
	SnapshotTTL time.Duration
	// CircuitBreaker configuration
	CircuitBreakerFailureThreshold int
	CircuitBreakerSuccessThreshold int
	CircuitBreakerTimeout          time.Duration
}

// LogConfig holds logger configuration.
type LogConfig struct {
	Level  string
	Pretty bool
}

// Load creates a Config from environment variables and the optional config file.
func Load() Config {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // the file is optional
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) Config {
	return Config{
		Server: ServerConfig{
			Port:              getString(v, "PORT", "8080"),
			RateLimit:         getInt(v, "RATE_LIMIT", 100),
			RateWindow:        getDuration(v, "RATE_WINDOW", time.Minute),
			RequestTimeout:    getDuration(v, "REQUEST_TIMEOUT", 30*time.Second),
			CORSOrigins:       parseCORSOrigins(getString(v, "CORS_ORIGINS", "")),
			EnableIdempotency: getBool(v, "IDEMPOTENCY_ENABLED", true),
			SwaggerUser:       getString(v, "SWAGGER_USER", ""),
			SwaggerPass:       getString(v, "SWAGGER_PASS", ""),
			MaxUploadSize:     int64(getInt(v, "MAX_UPLOAD_SIZE", 10<<20)),
		},
		Planner: PlannerConfig{
			AutoSaveDebounce: getDuration(v, "AUTOSAVE_DEBOUNCE", 1500*time.Millisecond),
			AutoSaveTimeout:  getDuration(v, "AUTOSAVE_TIMEOUT", 10*time.Second),
			SessionCacheSize: getInt(v, "SESSION_CACHE_SIZE", 1024),
			SessionTTL:       getDuration(v, "SESSION_TTL", 30*time.Minute),
			SnapshotBackend:  parseSnapshotBackend(getString(v, "SNAPSHOT_BACKEND", SnapshotBackendFile)),
			SnapshotDir:      getString(v, "SNAPSHOT_DIR", "./data/snapshots"),
		},
		Database: DatabaseConfig{
			URI:                            getString(v, "MONGODB_URI", "mongodb://localhost:27017"),
			DatabaseName:                   getString(v, "MONGODB_DATABASE", "pallet_service"),
			Enabled:                        getBool(v, "MONGODB_ENABLED", false),
			MaxPoolSize:                    getInt(v, "MONGODB_MAX_POOL_SIZE", 50),
			SnapshotTTL:                    getDuration(v, "SNAPSHOT_TTL", 30*24*time.Hour),
			CircuitBreakerFailureThreshold: getInt(v, "CIRCUIT_BREAKER_FAILURE_THRESHOLD", 5),
			CircuitBreakerSuccessThreshold: getInt(v, "CIRCUIT_BREAKER_SUCCESS_THRESHOLD", 2),
			CircuitBreakerTimeout:          getDuration(v, "CIRCUIT_BREAKER_TIMEOUT", 30*time.Second),
		},
		Log: LogConfig{
			Level:  getString(v, "LOG_LEVEL", "info"),
			Pretty: getBool(v, "LOG_PRETTY", false),
		},
	}
}

func getString(v *viper.Viper, key, defaultValue string) string {
	if s := strings.TrimSpace(v.GetString(key)); s != "" {
		return s
	}
	return defaultValue
}

func getInt(v *viper.Viper, key string, defaultValue int) int {
	if i, err := strconv.Atoi(strings.TrimSpace(v.GetString(key))); err == nil {
		return i
	}
	return defaultValue
}

func getBool(v *viper.Viper, key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(strings.TrimSpace(v.GetString(key))); err == nil {
		return b
	}
	return defaultValue
}

func getDuration(v *viper.Viper, key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(strings.TrimSpace(v.GetString(key))); err == nil {
		return d
	}
	return defaultValue
}

func parseSnapshotBackend(s string) string {
	if strings.EqualFold(s, SnapshotBackendMongo) {
		return SnapshotBackendMongo
	}
	return SnapshotBackendFile
}

func parseCORSOrigins(s string) []string {
	// Default origins for local development
	defaults := []string{
		"http://localhost:3000",
		"http://127.0.0.1:3000",
	}
	if s == "" {
		return defaults
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts)+len(defaults))
	result = append(result, defaults...)
	for _, p := range parts {
		if origin := strings.TrimSpace(p); origin != "" {
			result = append(result, origin)
		}
	}
	return result
}
