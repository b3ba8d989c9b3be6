// Package config reads process settings from the environment (optionally from a .env file).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Record backends
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Settings holds everything the server needs at startup
type Settings struct {
	Port               string
	ConfigPath         string
	RecordBackend      string
	RedisURL           string
	RedisKey           string
	MongoURI           string
	MongoDatabase      string
	EtsyAuthURL        string
	EtsyTokenURL       string
	EtsyAPIBaseURL     string
	UpstreamTimeout    time.Duration
	LogLevel           zerolog.Level
	CORSAllowedOrigins []string
}

// Load reads .env when present, then the environment
func Load(logger zerolog.Logger) (*Settings, error) {
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg(".env file not found, using environment only")
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("PORT", "3003")
	v.SetDefault("CONFIG_PATH", "config.json")
	v.SetDefault("RECORD_BACKEND", BackendFile)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_KEY", "etsy:config")
	v.SetDefault("MONGODB_URI", "")
	v.SetDefault("MONGODB_DATABASE", "etsy")
	v.SetDefault("ETSY_AUTH_URL", "")
	v.SetDefault("ETSY_TOKEN_URL", "")
	v.SetDefault("ETSY_API_BASE_URL", "")
	v.SetDefault("UPSTREAM_TIMEOUT", "30s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.AutomaticEnv()
	return v
}

// FromViper builds and validates Settings from v
func FromViper(v *viper.Viper) (*Settings, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(v.GetString("LOG_LEVEL")))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	timeout, err := time.ParseDuration(v.GetString("UPSTREAM_TIMEOUT"))
	if err != nil || timeout <= 0 {
		return nil, fmt.Errorf("invalid UPSTREAM_TIMEOUT %q", v.GetString("UPSTREAM_TIMEOUT"))
	}

	s := &Settings{
		Port:               v.GetString("PORT"),
		ConfigPath:         v.GetString("CONFIG_PATH"),
		RecordBackend:      strings.ToLower(v.GetString("RECORD_BACKEND")),
		RedisURL:           v.GetString("REDIS_URL"),
		RedisKey:           v.GetString("REDIS_KEY"),
		MongoURI:           v.GetString("MONGODB_URI"),
		MongoDatabase:      v.GetString("MONGODB_DATABASE"),
		EtsyAuthURL:        v.GetString("ETSY_AUTH_URL"),
		EtsyTokenURL:       v.GetString("ETSY_TOKEN_URL"),
		EtsyAPIBaseURL:     v.GetString("ETSY_API_BASE_URL"),
		UpstreamTimeout:    timeout,
		LogLevel:           level,
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
	}

	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) validate() error {
	if s.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if s.ConfigPath == "" {
		return fmt.Errorf("CONFIG_PATH must not be empty")
	}

	switch s.RecordBackend {
	case BackendFile:
	case BackendRedis:
		if s.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when RECORD_BACKEND=redis")
		}
	case BackendMongo:
		if s.MongoURI == "" {
			return fmt.Errorf("MONGODB_URI is required when RECORD_BACKEND=mongo")
		}
	default:
		return fmt.Errorf("unknown RECORD_BACKEND %q", s.RecordBackend)
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
