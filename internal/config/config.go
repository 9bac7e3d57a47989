package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Env                 string
	HTTPAddr            string
	DatabaseURL         string
	JWTSecret           string
	JWTExpirySeconds    int64
	SessionCookieDomain string
	SessionCookieSecure bool
	CorsAllowedOrigins  []string

	MaxFileSizeBytes int64
	MinOrderAmount   int64
	OpeningTime      string
	ClosingTime      string
	Timezone         string

	StoreDir      string
	PublicBaseURL string

	MailSender     string
	WhatsAppNumber string

	ObjectStoreEndpoint        string
	ObjectStoreRegion          string
	ObjectStoreAccessKeyID     string
	ObjectStoreSecretAccessKey string
	ObjectStoreBucket          string
	ObjectStorePublicBaseURL   string
	ObjectStoreStorageClass    string
}

func Load() Config {
	cfg := Config{
		Env:                 getEnv("APP_ENV", "development"),
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		JWTExpirySeconds:    getEnvInt64("JWT_EXPIRY", 86400),
		SessionCookieDomain: getEnv("SESSION_COOKIE_DOMAIN", ""),
		SessionCookieSecure: getEnvBool("SESSION_COOKIE_SECURE", false),
		CorsAllowedOrigins:  splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),

		MaxFileSizeBytes: getEnvInt64("MAX_FILE_SIZE", 5*1024*1024),
		MinOrderAmount:   getEnvInt64("MIN_ORDER_AMOUNT", 10000),
		OpeningTime:      getEnv("OPENING_TIME", "10:00"),
		ClosingTime:      getEnv("CLOSING_TIME", "21:00"),
		Timezone:         getEnv("TIMEZONE", "Asia/Jakarta"),

		StoreDir:      getEnv("STORE_DIR", "storage/store"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),

		MailSender:     getEnv("MAIL_SENDER", "no-reply@rumahmakansalwa.id"),
		WhatsAppNumber: getEnv("WHATSAPP_NUMBER", ""),

		ObjectStoreEndpoint:        getEnv("OBJECT_STORE_ENDPOINT", ""),
		ObjectStoreRegion:          getEnv("OBJECT_STORE_REGION", "auto"),
		ObjectStoreAccessKeyID:     getEnv("OBJECT_STORE_ACCESS_KEY_ID", ""),
		ObjectStoreSecretAccessKey: getEnv("OBJECT_STORE_SECRET_ACCESS_KEY", ""),
		ObjectStoreBucket:          getEnv("OBJECT_STORE_BUCKET", ""),
		ObjectStorePublicBaseURL:   getEnv("OBJECT_STORE_PUBLIC_BASE_URL", ""),
		ObjectStoreStorageClass:    getEnv("OBJECT_STORE_STORAGE_CLASS", "STANDARD"),
	}

	if cfg.MaxFileSizeBytes <= 0 {
		cfg.MaxFileSizeBytes = 5 * 1024 * 1024
	}
	if cfg.MinOrderAmount < 0 {
		cfg.MinOrderAmount = 0
	}

	return cfg
}

// ObjectStoreEnabled reports whether uploads go to the S3-compatible store
// instead of the local public disk.
func (c Config) ObjectStoreEnabled() bool {
	return strings.TrimSpace(c.ObjectStoreEndpoint) != "" &&
		strings.TrimSpace(c.ObjectStoreBucket) != "" &&
		strings.TrimSpace(c.ObjectStorePublicBaseURL) != ""
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt64(key string, fallback int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitCSV(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
