package config

import (
	"fmt"
	"os"
	"strings"
)

// ExpectedEnvSchemaVersion is the .env layout this build understands
const ExpectedEnvSchemaVersion = "1.0"

const exampleAdminPassword = "change_this_secure_password"

// setting pairs an environment variable with the value it loaded into
type setting struct {
	env   string
	value string
}

// required lists the settings the service cannot start without, including
// those of the selected record store
func (c *Config) required() []setting {
	out := []setting{
		{"ADMIN_USERNAME", c.AdminUsername},
		{"ADMIN_PASSWORD", c.AdminPassword},
		{"STRIPE_SECRET_KEY", c.StripeSecretKey},
		{"STRIPE_CONNECT_WEBHOOK_SECRET", c.StripeConnectWebhookSecret},
		{"MATRIX_SERVER_URL", c.MatrixServerURL},
		{"MATRIX_BOT_USERNAME", c.MatrixBotUsername},
		{"MATRIX_BOT_PASSWORD", c.MatrixBotPassword},
	}
	if c.StoreBackend == StoreBackendPostgres {
		return append(out,
			setting{"DB_USER", c.DBUser},
			setting{"DB_PASSWORD", c.DBPassword},
			setting{"DB_HOST", c.DBHost},
			setting{"DB_PORT", c.DBPort},
			setting{"DB_NAME", c.DBName},
		)
	}
	return append(out,
		setting{"GOOGLE_SHEETS_CREDENTIALS_JSON", c.SheetsCredentialsJSON},
		setting{"GOOGLE_SHEETS_SPREADSHEET_ID", c.SheetsSpreadsheetID},
	)
}

// checkSchemaVersion rejects .env files written for another layout
func checkSchemaVersion() error {
	switch v := os.Getenv("ENV_SCHEMA_VERSION"); v {
	case ExpectedEnvSchemaVersion:
		return nil
	case "":
		return fmt.Errorf("ENV_SCHEMA_VERSION is not set - please update your .env file to include this field (expected: %s)", ExpectedEnvSchemaVersion)
	default:
		return fmt.Errorf("ENV_SCHEMA_VERSION mismatch: expected %s, got %s - your .env file may be outdated", ExpectedEnvSchemaVersion, v)
	}
}

// Validate reports everything that would stop the service from running, and
// separately the settings that work but are probably a mistake
func (c *Config) Validate() (warnings []string, err error) {
	if err := checkSchemaVersion(); err != nil {
		return nil, err
	}

	var missing []string
	for _, s := range c.required() {
		if strings.TrimSpace(s.value) == "" {
			missing = append(missing, s.env)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	prod := !c.IsDevelopment()
	check := func(cond bool, msg string) {
		if cond {
			warnings = append(warnings, msg)
		}
	}
	check(c.AdminPassword == exampleAdminPassword,
		"ADMIN_PASSWORD appears to be using the example value - please use a secure password")
	check(prod && strings.HasPrefix(c.StripeSecretKey, "sk_test_"),
		"STRIPE_SECRET_KEY is a test-mode key outside development")
	check(prod && strings.HasPrefix(c.BaseURL, "http://"),
		"BASE_URL is not https - provider redirects will be sent over plain http")
	check(len(c.MatrixDefaultRoomIDs) == 0,
		"no default chat rooms configured - checkouts for creators without rooms will invite nobody")

	return warnings, nil
}
