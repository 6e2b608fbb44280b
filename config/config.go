package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

var (
	PORT        string
	DB_URL      string
	JWT_SECRET  string
	BASE_URL    string
	CORS_ORIGIN string

	ADMIN_PASSWORD_HASH string
	ADMIN_EMAILS        []string
	ADMIN_REDIRECT      string

	GOOGLE_CLIENT_ID     string
	GOOGLE_CLIENT_SECRET string
	GOOGLE_REDIRECT_URL  string

	GATEWAY         string
	GATEWAY_TIMEOUT time.Duration
	CURRENCY        string
	SUPPORT_EMAIL   string

	PAYU_KEY  string
	PAYU_SALT string
	PAYU_ENV  string

	STRIPE_SECRET_KEY     string
	STRIPE_WEBHOOK_SECRET string

	KAFKA_BROKERS []string
	KAFKA_TOPIC   string

	STALE_PAYMENT_AFTER time.Duration
)

func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}

	PORT = getEnv("PORT", "8080")
	DB_URL = mustEnv("DB_URL")
	JWT_SECRET = mustEnv("JWT_SECRET")
	BASE_URL = strings.TrimRight(getEnv("BASE_URL", "http://localhost:8080"), "/")
	CORS_ORIGIN = getEnv("CORS_ORIGIN", "http://localhost:3000")

	ADMIN_PASSWORD_HASH = getEnv("ADMIN_PASSWORD_HASH", "")
	if ADMIN_PASSWORD_HASH == "" {
		if plain := getEnv("ADMIN_PASSWORD", ""); plain != "" {
			hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
			if err != nil {
				log.Fatalf("Failed to hash ADMIN_PASSWORD: %v", err)
			}
			ADMIN_PASSWORD_HASH = string(hashed)
		}
	}
	ADMIN_EMAILS = splitList(getEnv("ADMIN_EMAILS", ""))
	ADMIN_REDIRECT = getEnv("ADMIN_REDIRECT", "/admin")

	GOOGLE_CLIENT_ID = getEnv("GOOGLE_CLIENT_ID", "")
	GOOGLE_CLIENT_SECRET = getEnv("GOOGLE_CLIENT_SECRET", "")
	GOOGLE_REDIRECT_URL = getEnv("GOOGLE_REDIRECT_URL", BASE_URL+"/auth/google/callback")

	GATEWAY = strings.ToLower(getEnv("GATEWAY", "payu"))
	GATEWAY_TIMEOUT = getDuration("GATEWAY_TIMEOUT", 10*time.Second)
	CURRENCY = strings.ToLower(getEnv("CURRENCY", "inr"))
	SUPPORT_EMAIL = getEnv("SUPPORT_EMAIL", "support@example.com")

	switch GATEWAY {
	case "payu":
		PAYU_KEY = mustEnv("PAYU_KEY")
		PAYU_SALT = mustEnv("PAYU_SALT")
		PAYU_ENV = getEnv("PAYU_ENV", "test")
	case "stripe":
		STRIPE_SECRET_KEY = mustEnv("STRIPE_SECRET_KEY")
		STRIPE_WEBHOOK_SECRET = getEnv("STRIPE_WEBHOOK_SECRET", "")
	default:
		log.Fatalf("Unsupported GATEWAY %q (expected payu or stripe)", GATEWAY)
	}

	KAFKA_BROKERS = splitList(getEnv("KAFKA_BROKERS", ""))
	KAFKA_TOPIC = getEnv("KAFKA_TOPIC", "streamdraw.events")

	STALE_PAYMENT_AFTER = getDuration("STALE_PAYMENT_AFTER", 30*time.Minute)
}

func mustEnv(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("Missing required environment variable: %s", key)
	}
	return v
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Fatalf("Invalid duration for %s: %v", key, err)
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
