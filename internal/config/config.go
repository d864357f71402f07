package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
// It is loaded once at startup and passed by pointer to every constructor; nothing mutates it afterwards.
type Config struct {
	Port        int
	BaseURL     string
	LogLevel    string
	LogFormat   string
	LogDir      string
	Environment string
	Version     string
	ServiceName string

	// Admin shared credential (HTTP Basic). AdminPassword may be a bcrypt hash.
	AdminUsername string
	AdminPassword string

	TrustedProxies []string

	// Payment provider
	StripeSecretKey            string
	StripeConnectWebhookSecret string
	DefaultFeePercent          int

	// Record store
	StoreBackend          string
	SheetsCredentialsJSON string
	SheetsSpreadsheetID   string
	SheetsWorksheet       string
	DBUser                string
	DBPassword            string
	DBHost                string
	DBPort                string
	DBName                string
	DBMaxConns            int
	DBMaxConnIdleTime     time.Duration
	DBMaxConnLifetime     time.Duration

	// Chat service
	MatrixServerURL      string
	MatrixBotUsername    string
	MatrixBotPassword    string
	MatrixIdentityServer string
	MatrixDefaultRoomIDs []string

	// Optional ops alerts
	DiscordAlertWebhookURL string

	// ExternalCallTimeout bounds every outbound round trip
	ExternalCallTimeout time.Duration
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}

	// Admin routes are unusable without a credential
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil, fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD environment variables must be set for security")
	}

	return cfg, nil
}

// LoadForTooling loads the configuration for operator commands, which serve no admin routes
func LoadForTooling() (*Config, error) {
	return load()
}

func load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:    getEnv("LOG_LEVEL", DefaultLogLevel),
		LogFormat:   getEnv("LOG_FORMAT", DefaultLogFormat),
		LogDir:      getEnv("LOG_DIR", ""),
		Environment: getEnv("ENVIRONMENT", DefaultEnvironment),
		Version:     getEnv("VERSION", DefaultVersion),
		ServiceName: getEnv("SERVICE_NAME", DefaultServiceName),

		AdminUsername: getEnv("ADMIN_USERNAME", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		TrustedProxies: getEnvAsList("TRUSTED_PROXIES"),

		StripeSecretKey:            getEnv("STRIPE_SECRET_KEY", ""),
		StripeConnectWebhookSecret: getEnv("STRIPE_CONNECT_WEBHOOK_SECRET", ""),
		DefaultFeePercent:          getEnvAsInt("DEFAULT_FEE_PERCENT", DefaultFeePercent),

		StoreBackend:          strings.ToLower(getEnv("STORE_BACKEND", StoreBackendSheets)),
		SheetsCredentialsJSON: getEnv("GOOGLE_SHEETS_CREDENTIALS_JSON", ""),
		SheetsSpreadsheetID:   getEnv("GOOGLE_SHEETS_SPREADSHEET_ID", ""),
		SheetsWorksheet:       getEnv("GOOGLE_SHEETS_WORKSHEET", DefaultWorksheet),
		DBUser:                getEnv("DB_USER", "postgres"),
		DBPassword:            getEnv("DB_PASSWORD", "postgres"),
		DBHost:                getEnv("DB_HOST", "localhost"),
		DBPort:                getEnv("DB_PORT", "5432"),
		DBName:                getEnv("DB_NAME", "launchpass"),
		DBMaxConns:            getEnvAsInt("DB_MAX_CONNS", DefaultDBMaxConns),
		DBMaxConnIdleTime:     getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", DefaultDBMaxConnIdleTime),
		DBMaxConnLifetime:     getEnvAsDuration("DB_MAX_CONN_LIFETIME", DefaultDBMaxConnLifetime),

		MatrixServerURL:      getEnv("MATRIX_SERVER_URL", ""),
		MatrixBotUsername:    getEnv("MATRIX_BOT_USERNAME", ""),
		MatrixBotPassword:    getEnv("MATRIX_BOT_PASSWORD", ""),
		MatrixIdentityServer: getEnv("MATRIX_IDENTITY_SERVER", DefaultIdentityServer),
		MatrixDefaultRoomIDs: getEnvAsList("MATRIX_DEFAULT_ROOM_IDS"),

		DiscordAlertWebhookURL: getEnv("DISCORD_ALERT_WEBHOOK_URL", ""),

		ExternalCallTimeout: getEnvAsDuration("EXTERNAL_CALL_TIMEOUT", DefaultExternalCallTimeout),
	}

	// Older deployments configured a single space for every invite
	if len(cfg.MatrixDefaultRoomIDs) == 0 {
		cfg.MatrixDefaultRoomIDs = getEnvAsList("MATRIX_SPACE_ID")
	}

	portStr := getEnv("PORT", DefaultPort)
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT value: %w", err)
	}
	cfg.Port = port
	cfg.BaseURL = strings.TrimRight(getEnv("BASE_URL", fmt.Sprintf("http://localhost:%d", port)), "/")

	if cfg.StoreBackend != StoreBackendSheets && cfg.StoreBackend != StoreBackendPostgres {
		return nil, fmt.Errorf("invalid STORE_BACKEND %q: must be %q or %q", cfg.StoreBackend, StoreBackendSheets, StoreBackendPostgres)
	}

	if cfg.DefaultFeePercent < 0 || cfg.DefaultFeePercent > 100 {
		return nil, fmt.Errorf("invalid DEFAULT_FEE_PERCENT %d: must be between 0 and 100", cfg.DefaultFeePercent)
	}

	return cfg, nil
}

// IsDevelopment reports whether the service runs in a development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "dev" || c.Environment == "development"
}

// OnboardingReturnURL is where the provider sends a creator after onboarding
func (c *Config) OnboardingReturnURL(accountID string) string {
	return fmt.Sprintf("%s%s?account_id=%s", c.BaseURL, PathConnectReturn, accountID)
}

// OnboardingRefreshURL is where the provider sends a creator whose link expired
func (c *Config) OnboardingRefreshURL(accountID string) string {
	return fmt.Sprintf("%s%s?account_id=%s", c.BaseURL, PathConnectRefresh, accountID)
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

// getEnvAsList splits a comma separated variable, dropping blanks
func getEnvAsList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
