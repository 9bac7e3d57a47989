package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"HTTP_ADDR", "MAX_FILE_SIZE", "MIN_ORDER_AMOUNT", "OPENING_TIME", "CLOSING_TIME", "TIMEZONE"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("expected default addr :8080, got %s", cfg.HTTPAddr)
	}
	if cfg.MaxFileSizeBytes != 5*1024*1024 {
		t.Fatalf("expected 5MB default upload limit, got %d", cfg.MaxFileSizeBytes)
	}
	if cfg.MinOrderAmount != 10000 {
		t.Fatalf("expected default minimum order 10000, got %d", cfg.MinOrderAmount)
	}
	if cfg.OpeningTime != "10:00" || cfg.ClosingTime != "21:00" {
		t.Fatalf("unexpected default opening hours %s-%s", cfg.OpeningTime, cfg.ClosingTime)
	}
	if cfg.Timezone != "Asia/Jakarta" {
		t.Fatalf("unexpected default timezone %s", cfg.Timezone)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("MIN_ORDER_AMOUNT", "25000")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("SESSION_COOKIE_SECURE", "true")

	cfg := Load()
	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("expected :9090, got %s", cfg.HTTPAddr)
	}
	if cfg.MinOrderAmount != 25000 {
		t.Fatalf("expected 25000, got %d", cfg.MinOrderAmount)
	}
	if len(cfg.CorsAllowedOrigins) != 2 || cfg.CorsAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins %v", cfg.CorsAllowedOrigins)
	}
	if !cfg.SessionCookieSecure {
		t.Fatalf("expected secure cookies to be enabled")
	}
}

func TestObjectStoreEnabled(t *testing.T) {
	cfg := Config{}
	if cfg.ObjectStoreEnabled() {
		t.Fatalf("expected empty config to disable the object store")
	}

	cfg.ObjectStoreEndpoint = "https://s3.example"
	cfg.ObjectStoreBucket = "uploads"
	if cfg.ObjectStoreEnabled() {
		t.Fatalf("expected missing public base url to disable the object store")
	}

	cfg.ObjectStorePublicBaseURL = "https://cdn.example"
	if !cfg.ObjectStoreEnabled() {
		t.Fatalf("expected complete config to enable the object store")
	}
}
