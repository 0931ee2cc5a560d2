package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	Environment      string
	APIBaseURL       string
	APITimeout       time.Duration
	AllowedOrigins   []string
	TrustedProxies   []string
	RedisHost        string
	RedisPassword    string
	KafkaBroker      string
	ElasticsearchURL string
	SentryDSN        string
	AppVersion       string
	SessionCookie    string
	SessionTTL       time.Duration
	CarouselInterval time.Duration
	CarouselImages   []string
	DatabaseURL      string
	APIPort          string
}

// DefaultSessionTTL bounds both the session cookie and its stored flag.
const DefaultSessionTTL = 7 * 24 * time.Hour

var defaultCarouselImages = []string{
	"/images/irwan-rbDE93-0hHs-unsplash.jpg",
	"/images/marcelo-leal-6pcGTJDuf6M-unsplash.jpg",
	"/images/hms.jpg",
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}
	return NewConfig()
}

func NewConfig() *Config {
	return &Config{
		Port:             getEnvOrDefault("PORT", "8080"),
		Environment:      getEnvOrDefault("ENVIRONMENT", "development"),
		APIBaseURL:       strings.TrimRight(getEnvOrDefault("API_BASE_URL", "http://localhost:4000"), "/"),
		APITimeout:       getDurationOrDefault("API_TIMEOUT", 10*time.Second),
		AllowedOrigins:   getListOrDefault("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		TrustedProxies:   getListOrDefault("TRUSTED_PROXIES", nil),
		RedisHost:        os.Getenv("REDIS_HOST"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		KafkaBroker:      os.Getenv("KAFKA_BROKER"),
		ElasticsearchURL: os.Getenv("ELASTICSEARCH_URL"),
		SentryDSN:        os.Getenv("SENTRY_DSN"),
		AppVersion:       getEnvOrDefault("APP_VERSION", "dev"),
		SessionCookie:    getEnvOrDefault("SESSION_COOKIE", "login-system"),
		SessionTTL:       getDurationOrDefault("SESSION_TTL", DefaultSessionTTL),
		CarouselInterval: getDurationOrDefault("CAROUSEL_INTERVAL", 3*time.Second),
		CarouselImages:   getListOrDefault("CAROUSEL_IMAGES", defaultCarouselImages),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		APIPort:          getEnvOrDefault("API_PORT", "4000"),
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		log.Printf("Warning: invalid %s=%q, using %s", key, raw, defaultValue)
		return defaultValue
	}
	return d
}

func getListOrDefault(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
