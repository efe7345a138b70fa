package config

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	DatabaseURL    string
	SessionSecret  string
	AdminUser      string // seed credentials, consumed once at startup
	AdminPassword  string
	TrustProxyHead bool // trust X-Forwarded-For for client IPs
	UploadDir      string
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading env vars from system")
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		DatabaseURL:    getEnv("DATABASE_URL", "notes.db"),
		SessionSecret:  os.Getenv("SESSION_SECRET"),
		AdminUser:      getEnv("ADMIN_USER", "admin"),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		TrustProxyHead: os.Getenv("TRUST_PROXY_HEADER") == "true",
		UploadDir:      getEnv("EMOJI_UPLOAD_DIR", "./web/static/emojis"),
	}

	if cfg.SessionSecret == "" {
		cfg.SessionSecret = randomSecret()
		log.Println("WARNING: SESSION_SECRET not set, generated a random one; sessions will not survive a restart")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		log.Fatalf("Failed to generate session secret: %v", err)
	}
	return hex.EncodeToString(b)
}
