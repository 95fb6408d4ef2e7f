package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort         string
	AppMode         string
	DBHost          string
	DBUser          string
	DBPassword      string
	DBName          string
	DBPort          string
	RedisHost       string
	RedisPort       string
	RedisPassword   string
	SessionTTLHours int
	TicketSecret    string
	TicketExpiryMin int
	BcryptCost      int
	AuthRateLimit   int
}

func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		AppPort:         getEnv("APP_PORT", "8080"),
		AppMode:         getEnv("APP_MODE", "debug"),
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBUser:          getEnv("DB_USER", "postgres"),
		DBPassword:      getEnv("DB_PASSWORD", "postgres"),
		DBName:          getEnv("DB_NAME", "votecast"),
		DBPort:          getEnv("DB_PORT", "5432"),
		RedisHost:       getEnv("REDIS_HOST", "localhost"),
		RedisPort:       getEnv("REDIS_PORT", "6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		SessionTTLHours: getEnvAsInt("SESSION_TTL_HOURS", 24),
		TicketSecret:    getEnv("TICKET_SECRET", "change-me"),
		TicketExpiryMin: getEnvAsInt("TICKET_EXPIRY_MIN", 5),
		BcryptCost:      getEnvAsInt("BCRYPT_COST", 10),
		AuthRateLimit:   getEnvAsInt("AUTH_RATE_LIMIT", 5),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
