package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN         string
	ServerPort    string
	SessionSecret string
	JWTSecret     string
	JWTTTL        time.Duration
	AppEnv        string

	AdminUsername string
	AdminPassword string
}

func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBDSN:         os.Getenv("DB_DSN"),
		ServerPort:    os.Getenv("SERVER_PORT"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		AppEnv:        os.Getenv("APP_ENV"),
		AdminUsername: os.Getenv("ADMIN_USERNAME"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	if cfg.DBDSN == "" {
		log.Fatal("DB_DSN is not set")
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.SessionSecret == "" {
		log.Fatal("SESSION_SECRET is not set")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}
	if cfg.AdminUsername == "" {
		cfg.AdminUsername = "admin"
	}

	cfg.JWTTTL = 24 * time.Hour
	if v := os.Getenv("JWT_TTL_HOURS"); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil || hours <= 0 {
			log.Fatalf("JWT_TTL_HOURS must be a positive integer, got %q", v)
		}
		cfg.JWTTTL = time.Duration(hours) * time.Hour
	}

	return cfg
}

// DSN loads .env and returns DB_DSN without requiring the server-only
// settings. Used by ledgerctl.
func DSN() string {
	_ = godotenv.Load()
	return os.Getenv("DB_DSN")
}
