package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port     string
	Env      string
	LogLevel string

	// External services
	RankServiceURL string
	GatewayURL     string

	// Redis (이벤트 발행용, 비어 있으면 비활성화)
	RedisURL string

	// Matchmaking
	MatchInterval time.Duration
	MaxRetryCount int

	// CORS
	CORSAllowedOrigins []string
}

func Load() (*Config, error) {
	// .env 파일 로드 (있는 경우)
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		RankServiceURL:     getEnv("RANK_SERVICE_URL", "http://localhost:8081"),
		GatewayURL:         getEnv("GATEWAY_URL", "http://localhost:8082"),
		RedisURL:           getEnv("REDIS_URL", ""),
		MatchInterval:      parseDuration(getEnv("MATCH_INTERVAL", "2s")),
		MaxRetryCount:      parseInt(getEnv("MAX_RETRY_COUNT", "3")),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 2 * time.Second
	}
	return d
}

func parseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 3
	}
	return n
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
