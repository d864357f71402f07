package logger

import (
	"io"
	"log/slog"
	"strings"
)

// Config controls the process-wide slog handler
type Config struct {
	Level       string
	Format      string
	ServiceName string
	Version     string
	Environment string
	AddSource   bool
}

// NewConfig builds a Config; source locations are attached only outside production
func NewConfig(level, format, serviceName, version, environment string) Config {
	env := strings.ToLower(environment)
	return Config{
		Level:       level,
		Format:      format,
		ServiceName: serviceName,
		Version:     version,
		Environment: environment,
		AddSource:   env == fallbackEnvironment || env == "development",
	}
}

// DefaultConfig is used before the application config is available
func DefaultConfig() Config {
	return NewConfig(LevelInfo, FormatText, fallbackServiceName, fallbackVersion, fallbackEnvironment)
}

// LogLevel maps Level onto slog, treating anything unknown as info
func (c Config) LogLevel() slog.Level {
	levels := map[string]slog.Level{
		levelDebug:   slog.LevelDebug,
		levelWarn:    slog.LevelWarn,
		levelWarning: slog.LevelWarn,
		levelError:   slog.LevelError,
	}
	if lvl, ok := levels[strings.ToLower(strings.TrimSpace(c.Level))]; ok {
		return lvl
	}
	return slog.LevelInfo
}

// IsJSON reports whether records are emitted as JSON
func (c Config) IsJSON() bool {
	return strings.EqualFold(c.Format, FormatJSON)
}

func (c Config) handler(opts *slog.HandlerOptions, w io.Writer) slog.Handler {
	var h slog.Handler
	if c.IsJSON() {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return h.WithAttrs([]slog.Attr{
		slog.String(KeyService, c.ServiceName),
		slog.String(KeyVersion, c.Version),
		slog.String(KeyEnvironment, c.Environment),
	})
}
