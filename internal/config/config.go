package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port          string
	DBDSN         string
	JWTSecret     string
	TokenTTLMin   int
	UploadDir     string
	LogFile       string
	AdminEmail    string
	AdminPassword string
	KafkaBrokers  []string
	KafkaTopic    string
	KafkaEnabled  bool
}

func Load() Config {
	cfg := Config{
		Port:          getenv("PORT", "8080"),
		DBDSN:         getenv("DB_DSN", "webshop.db"), // sqlite file in project root
		JWTSecret:     getenv("JWT_SECRET", "change-me-secret"),
		TokenTTLMin:   getint("TOKEN_TTL_MIN", 60*24),
		UploadDir:     getenv("UPLOAD_DIR", "./uploads"),
		LogFile:       getenv("LOG_FILE", ""),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		KafkaTopic:    getenv("KAFKA_TOPIC", "webshop-events"),
		KafkaEnabled:  getbool("KAFKA_ENABLED", false),
	}
	for _, b := range strings.Split(getenv("KAFKA_BROKERS", "localhost:9092"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
		}
	}

	log.Printf("[config] PORT=%s DB_DSN=%s UPLOAD_DIR=%s KAFKA_ENABLED=%v",
		cfg.Port, cfg.DBDSN, cfg.UploadDir, cfg.KafkaEnabled)
	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func getbool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
