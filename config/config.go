package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DBHost        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBPort        string
	RedisAddr     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	JWTSecret     string

	// Subscription pricing
	MonthPrice  int     // price of one month, in Currency units
	Currency    string  // invoice currency, e.g. EUR
	TrialDays   int     // days granted at sign-up
	AffilateFee float64 // referral reward share of an invoice, e.g. 0.3

	// BTCPay merchant
	BTCPayURL   string
	BTCPayToken string

	// Reset-password mail
	SendgridAPIKey     string
	ResetPasswordEmail string
	ResetPasswordURL   string

	// Domains used to build invoice callback/redirect URLs
	MainDomain      string
	APIDomain       string
	WebhookEndpoint string

	// Space-separated account ids with admin capability
	AdminIDs []uint

	// Log configuration
	LogLevel      string
	LogFilename   string
	LogMaxSize    int
	LogMaxBackups int
	LogMaxAge     int
	LogCompress   bool
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

func (c *Config) RedisFullAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisAddr, c.RedisPort)
}

// WebhookURL is the processor notification target: the webhook endpoint as
// it is actually mounted, under the versioned API prefix.
func (c *Config) WebhookURL() string {
	return strings.TrimRight(c.APIDomain, "/") + "/api/v1/" + c.WebhookEndpoint
}

// IsAdmin reports whether the account id is on the admin allow-list.
func (c *Config) IsAdmin(accountID uint) bool {
	for _, id := range c.AdminIDs {
		if id == accountID {
			return true
		}
	}
	return false
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		// Ignore error if .env file is not found
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	return &Config{
		Port:          getEnv("PORT", "8080"),
		DBHost:        os.Getenv("DB_HOST"),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        os.Getenv("DB_NAME"),
		DBPort:        os.Getenv("DB_PORT"),
		RedisAddr:     os.Getenv("REDIS_HOST"),
		RedisPort:     os.Getenv("REDIS_PORT"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		JWTSecret:     getEnv("JWT_SECRET", "secret"),

		MonthPrice:  getEnvAsInt("MONTH_PRICE", 5),
		Currency:    getEnv("CURRENCY", "EUR"),
		TrialDays:   getEnvAsInt("TRIAL_DAYS", 1),
		AffilateFee: getEnvAsFloat("AFFILATE_FEE", 0.3),

		BTCPayURL:   os.Getenv("BTCPAY_URL"),
		BTCPayToken: os.Getenv("BTCPAY_TOKEN"),

		SendgridAPIKey:     os.Getenv("SENDGRID_API_KEY"),
		ResetPasswordEmail: os.Getenv("RESET_PASSWORD_EMAIL"),
		ResetPasswordURL:   os.Getenv("RESET_PASSWORD_URL"),

		MainDomain:      os.Getenv("MAIN_DOMAIN"),
		APIDomain:       os.Getenv("API_DOMAIN"),
		WebhookEndpoint: getEnv("WEBHOOK_ENDPOINT", "wh"),

		AdminIDs: parseIDList(os.Getenv("ADMIN_IDS")),

		LogLevel:      getEnv("LOG_LEVEL", "INFO"),
		LogFilename:   getEnv("LOG_FILENAME", "logs/app.log"),
		LogMaxSize:    getEnvAsInt("LOG_MAX_SIZE", 100),
		LogMaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 3),
		LogMaxAge:     getEnvAsInt("LOG_MAX_AGE", 28),
		LogCompress:   getEnvAsBool("LOG_COMPRESS", true),
	}, nil
}

func parseIDList(s string) []uint {
	var ids []uint
	for _, part := range strings.Fields(s) {
		if id, err := strconv.ParseUint(part, 10, 32); err == nil {
			ids = append(ids, uint(id))
		}
	}
	return ids
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}
