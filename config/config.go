package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	JWTKey    string
	SaltRound int

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	EmailSender string
	Password    string // SMTP Password

	LedgerAPIURL        string // Ledger node REST endpoint, empty disables anchoring
	LedgerAPIToken      string
	LedgerSenderAddress string
	LedgerSigningKey    string // hex-encoded ed25519 seed, empty disables anchoring
	LedgerMaxRounds     int    // confirmation rounds waited before giving up

	AnchorRetrySchedule string // cron spec for the unanchored-certificate retry pass
}

// Load initializes configuration from environment variables or defaults
func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	cfg := &Config{
		Port:      getEnv("PORT", "3000"),
		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "certchain"),
		DBPort:     getEnv("DB_PORT", "5432"),

		EmailSender: getEnv("EMAIL_SENDER", ""),
		Password:    getEnv("PASSWORD", ""),

		LedgerAPIURL:        getEnv("LEDGER_API_URL", ""),
		LedgerAPIToken:      getEnv("LEDGER_API_TOKEN", ""),
		LedgerSenderAddress: getEnv("LEDGER_SENDER_ADDRESS", ""),
		LedgerSigningKey:    getEnv("LEDGER_SIGNING_KEY", ""),
		LedgerMaxRounds:     getEnvInt("LEDGER_MAX_ROUNDS", 10),

		AnchorRetrySchedule: getEnv("ANCHOR_RETRY_SCHEDULE", "@every 10m"),
	}

	// Validate critical configuration
	if cfg.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if cfg.LedgerAPIURL == "" || cfg.LedgerSigningKey == "" {
		log.Println("Warning: Ledger anchoring not configured. Certificates will be issued without on-chain backing.")
	}

	return cfg
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}
