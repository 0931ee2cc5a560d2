package config

import (
	"testing"
	"time"
)

func TestNewConfigDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "API_BASE_URL", "TRUSTED_PROXIES", "SESSION_TTL", "SESSION_COOKIE", "CAROUSEL_INTERVAL", "CAROUSEL_IMAGES", "ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg := NewConfig()
	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.APIBaseURL != "http://localhost:4000" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.SessionCookie != "login-system" {
		t.Errorf("SessionCookie = %q", cfg.SessionCookie)
	}
	if cfg.CarouselInterval != 3*time.Second {
		t.Errorf("CarouselInterval = %s", cfg.CarouselInterval)
	}
	if len(cfg.CarouselImages) != 3 {
		t.Errorf("CarouselImages = %v", cfg.CarouselImages)
	}
	if cfg.SessionTTL != DefaultSessionTTL {
		t.Errorf("SessionTTL = %s, want %s", cfg.SessionTTL, DefaultSessionTTL)
	}
	if cfg.TrustedProxies != nil {
		t.Errorf("TrustedProxies = %v, want none", cfg.TrustedProxies)
	}
}

func TestNewConfigOverrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://api.internal:9000/")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("CAROUSEL_INTERVAL", "500ms")
	t.Setenv("SESSION_TTL", "not-a-duration")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.1, 10.0.1.0/24")

	cfg := NewConfig()
	if cfg.APIBaseURL != "http://api.internal:9000" {
		t.Errorf("trailing slash not trimmed: %q", cfg.APIBaseURL)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://b.test" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if len(cfg.TrustedProxies) != 2 || cfg.TrustedProxies[1] != "10.0.1.0/24" {
		t.Errorf("TrustedProxies = %v", cfg.TrustedProxies)
	}
	if cfg.CarouselInterval != 500*time.Millisecond {
		t.Errorf("CarouselInterval = %s", cfg.CarouselInterval)
	}
	if cfg.SessionTTL != DefaultSessionTTL {
		t.Errorf("invalid SESSION_TTL should fall back, got %s", cfg.SessionTTL)
	}
}
