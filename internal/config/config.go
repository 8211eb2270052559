package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	SERVER_PORT string
	LOG_LEVEL   string

	CATALOG_URL    string
	PRODUCT_SOURCE string

	ES_URL      string
	ES_USER     string
	ES_PASSWORD string
	ES_INDEX    string

	DB_DRIVER    string
	DATABASE_URL string
	SQLITE_PATH  string

	// SLOT_STORE is "db" or "redis".
	SLOT_STORE string
	REDIS_URL  string

	KAFKA_BROKERS []string
	KAFKA_TOPIC   string

	JWT_SECRET   string
	CSRF_ENABLED bool

	STOCK_CHECK_INCLUSIVE bool
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		SERVER_PORT:           getenv("SERVER_PORT", "8080"),
		LOG_LEVEL:             getenv("LOG_LEVEL", "info"),
		CATALOG_URL:           getenv("CATALOG_URL", "http://localhost:3333/"),
		PRODUCT_SOURCE:        getenv("PRODUCT_SOURCE", "http"),
		ES_URL:                os.Getenv("ES_URL"),
		ES_USER:               os.Getenv("ES_USER"),
		ES_PASSWORD:           os.Getenv("ES_PASSWORD"),
		ES_INDEX:              getenv("ES_INDEX", "product"),
		DB_DRIVER:             getenv("DB_DRIVER", "sqlite"),
		DATABASE_URL:          os.Getenv("DATABASE_URL"),
		SQLITE_PATH:           getenv("SQLITE_PATH", "rocketshoes.db"),
		SLOT_STORE:            getenv("SLOT_STORE", "db"),
		REDIS_URL:             getenv("REDIS_URL", "localhost:6379"),
		KAFKA_BROKERS:         CSV(os.Getenv("KAFKA_BROKERS")),
		KAFKA_TOPIC:           getenv("KAFKA_TOPIC", "cart_events"),
		JWT_SECRET:            os.Getenv("JWT_SECRET"),
		CSRF_ENABLED:          getbool("CSRF_ENABLED", false),
		STOCK_CHECK_INCLUSIVE: getbool("STOCK_CHECK_INCLUSIVE", false),
	}

	return config, nil
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getbool(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
