package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	HTTPAddr string

	// Upstream admin event feed.
	UpstreamWSURL        string
	UpstreamToken        string
	AutoReconnect        bool
	ReconnectInterval    time.Duration
	MaxReconnectAttempts int

	FeedCapacity int

	RedisAddr string
	RedisPass string

	// Side-channel mirroring of notifications.
	SideChannelEnabled bool
	SideChannelName    string
	// Channel for review-event cache invalidation hints.
	InvalidationChannel string

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
}

func Load() AppConfig {
	if err := godotenv.Load(); err != nil {
		log.Println("AdminNotify: No .env file found, relying on system env vars")
	}
	return AppConfig{
		HTTPAddr:             getEnv("HTTP_ADDR", ":8021"),
		UpstreamWSURL:        getEnv("UPSTREAM_WS_URL", "ws://localhost:8020/api/v1/admin/events/ws"),
		UpstreamToken:        getEnv("UPSTREAM_TOKEN", ""),
		AutoReconnect:        getEnvBool("AUTO_RECONNECT", true),
		ReconnectInterval:    getEnvDuration("RECONNECT_INTERVAL", 5*time.Second),
		MaxReconnectAttempts: getEnvInt("MAX_RECONNECT_ATTEMPTS", 3),
		FeedCapacity:         getEnvInt("FEED_CAPACITY", 50),
		RedisAddr:            getEnv("REDIS_ADDR", "redis:6379"),
		RedisPass:            getEnv("REDIS_PASS", ""),
		SideChannelEnabled:   getEnvBool("SIDE_CHANNEL", false),
		SideChannelName:      getEnv("SIDE_CHANNEL_CHANNEL", "admin:notifications"),
		InvalidationChannel:  getEnv("INVALIDATION_CHANNEL", "admin:invalidate"),
		JWTSecret:            getEnv("JWT_SECRET", ""),
		JWTIssuer:            getEnv("JWT_ISSUER", "admin-auth-service"),
		JWTAudience:          getEnv("JWT_AUDIENCE", "admin-dashboard"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("AdminNotify: invalid %s=%q, using %d", key, v, fallback)
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("AdminNotify: invalid %s=%q, using %v", key, v, fallback)
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("AdminNotify: invalid %s=%q, using %s", key, v, fallback)
	}
	return fallback
}
