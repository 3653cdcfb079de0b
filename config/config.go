package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// defaultContracts is the initial set of tracked TON jetton addresses.
// Override with the CONTRACT_ADDRESSES env var (comma-separated).
var defaultContracts = []string{
	"EQA1EIDrR33zgL21rwDIfGo7h4ETWieentUvg7jIT-3aP5GG",
	"EQBaCgUwOoc6gHCNln_oJzb0mVs79YG7wYoavh-o1ItaneLA",
	"EQBZ_cafPyDr5KUTs0aNxh0ZTDhkpEZONmLJA2SNGlLm4Cko",
	"EQB420yQsZobGcy0VYDfSKHpG2QQlw-j1f_tPu1J488I__PX",
	"EQC7js8NLX3v57ZuRmuusNtMSBdki4va_qyL7sAwdmosf_xK",
	"EQBKRSNRkeP1-2jcg5T_f__0s5Hj-vrbfNLMQy8dnZs7xd_p",
	"EQD0KpcRMh-sKO2z5-vOjgvFjTT58tO-2Nmvxqg5ocFQFtWz",
	"EQATcUc69sGSCCMSadsVUKdGwM1BMKS-HKCWGPk60xZGgwsK",
	"EQBsosmcZrD6FHijA7qWGLw5wo_aH8UN435hi935jJ_STORM",
	"EQCAj5oiRRrXokYsg_B-e0KG9xMwh5upr5I8HQzErm0_BLUM",
	"EQCuPm01HldiduQ55xaBF_1kaW_WAUy5DHey8suqzU_MAJOR",
	"EQAunJ_g3aswhm4WKrVxLT3zUHoZtg1koB58w5zMQTFVMi64",
	"EQAvlWFDxGF2lXm67y4yzC17wYKD9A0guwPkMs1gOsM__NOT",
}

// Config holds application configuration
type Config struct {
	APIPort int

	// Database configuration
	DatabaseHost     string
	DatabasePort     string
	DatabaseName     string
	DatabaseUser     string
	DatabasePassword string

	// Redis configuration
	RedisHost     string
	RedisPassword string
	RedisPort     string

	// Upstream APIs
	DexScreenerBaseURL string
	TonAPIBaseURL      string
	ChainID            string

	// Tracked token contracts
	Contracts []string

	// Response cache TTL in seconds
	CacheTTLSeconds int

	// Fallback TON/USD price when the quote lookup fails
	TonPriceFallback float64

	// Optional ops webhook notified on alert toggles
	AlertWebhookURL string

	// Optional Telegram bot token; enables init-data verification
	TelegramBotToken string
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		APIPort: getEnvIntOrDefault("API_PORT", 8080),

		// Database configuration
		DatabaseHost:     getEnvOrDefault("DB_HOST", "localhost"),
		DatabasePort:     getEnvOrDefault("DB_PORT", "5432"),
		DatabaseName:     getEnvOrDefault("DB_NAME", "tonpulse"),
		DatabaseUser:     getEnvOrDefault("DB_USER", "tonpulse"),
		DatabasePassword: getEnvOrDefault("DB_PASSWORD", "tonpulse123"),

		// Redis configuration
		RedisHost:     getEnvOrDefault("REDIS_HOST", "localhost"),
		RedisPort:     getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),

		DexScreenerBaseURL: getEnvOrDefault("DEXSCREENER_BASE_URL", "https://api.dexscreener.com"),
		TonAPIBaseURL:      getEnvOrDefault("TONAPI_BASE_URL", "https://tonapi.io/v2"),
		ChainID:            getEnvOrDefault("CHAIN_ID", "ton"),

		Contracts: getEnvListOrDefault("CONTRACT_ADDRESSES", defaultContracts),

		CacheTTLSeconds:  getEnvIntOrDefault("CACHE_TTL_SECONDS", 30),
		TonPriceFallback: getEnvFloatOrDefault("TON_PRICE_FALLBACK", 5.20),

		AlertWebhookURL:  os.Getenv("ALERT_WEBHOOK_URL"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
	}
}

// getEnvOrDefault returns environment variable value or default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvIntOrDefault returns environment variable as int or default
func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
		log.Printf("⚠️  Invalid value for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}

// getEnvFloatOrDefault returns environment variable as float64 or default
func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
		log.Printf("⚠️  Invalid value for %s, using default %v", key, defaultValue)
	}
	return defaultValue
}

// getEnvListOrDefault returns a comma-separated environment variable as a
// slice, skipping empty entries
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
