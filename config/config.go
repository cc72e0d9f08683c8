package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds everything the process reads from the environment.
type Config struct {
	Port        string
	AppEnv      string
	DatabaseURI string
	JWTSecret   string
	// AMQPURL is optional; when empty the RabbitMQ order-event mirror is
	// simply not started.
	AMQPURL           string
	AMQPExchange      string
	CORSAllowedOrigin string
	// Seed admin account, created at boot when both are set.
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// Load reads .env (when present) and collects environment variables into a
// Config, filling in development defaults.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded, using environment variables only.")
	}

	cfg := Config{
		Port:              getEnv("PORT", "8080"),
		AppEnv:            getEnv("APP_ENV", "development"),
		DatabaseURI:       getEnv("DATABASE_URI", "tabletap.db"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		AMQPURL:           os.Getenv("AMQP_URL"),
		AMQPExchange:      getEnv("AMQP_EXCHANGE", "orders_topic"),
		CORSAllowedOrigin: getEnv("CORS_ALLOWED_ORIGIN", "https://app.tabletap.example"),
		AdminName:         getEnv("ADMIN_NAME", "Administrator"),
		AdminEmail:        os.Getenv("ADMIN_EMAIL"),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
	}

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET environment variable not set")
	}

	return cfg
}

// UsesPostgres reports whether DATABASE_URI points at Postgres rather than
// a local SQLite file.
func (c Config) UsesPostgres() bool {
	return strings.HasPrefix(c.DatabaseURI, "postgres://") || strings.HasPrefix(c.DatabaseURI, "postgresql://")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
