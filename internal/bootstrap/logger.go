package bootstrap

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/osse101/LaunchPass_Go/internal/config"
	"github.com/osse101/LaunchPass_Go/internal/logger"
)

// SetupLogger installs the application logger. With LogDir set, output is
// also written to a timestamped session file, and older sessions beyond the
// retention count are removed. The returned file is nil without LogDir;
// otherwise the caller must close it.
func SetupLogger(cfg *config.Config) (*os.File, error) {
	logCfg := logger.NewConfig(cfg.LogLevel, cfg.LogFormat, cfg.ServiceName, cfg.Version, cfg.Environment)

	if cfg.LogDir == "" {
		logger.InitLogger(logCfg)
		logStartup(cfg)
		return nil, nil
	}

	if err := os.MkdirAll(cfg.LogDir, logDirPerm); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedCreateLogsDir, err)
	}
	cleanupLogs(cfg.LogDir, logFilesKept)

	name := filepath.Join(cfg.LogDir, sessionLogName(time.Now()))
	logFile, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePerm)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedOpenLogFile, err)
	}

	logger.InitLoggerWithWriter(logCfg, io.MultiWriter(os.Stdout, logFile))
	logStartup(cfg)
	return logFile, nil
}

func logStartup(cfg *config.Config) {
	slog.Info(LogMsgLoggingInitialized, "level", cfg.LogLevel, "format", cfg.LogFormat)
	slog.Info(LogMsgStartingService,
		"environment", cfg.Environment,
		"version", cfg.Version,
		"store_backend", cfg.StoreBackend)
	slog.Debug(LogMsgConfigurationLoaded,
		"port", cfg.Port,
		"base_url", cfg.BaseURL,
		"default_rooms", len(cfg.MatrixDefaultRoomIDs),
		"default_fee_percent", cfg.DefaultFeePercent)
}

// sessionLogName names a session file so that names sort chronologically
func sessionLogName(t time.Time) string {
	return logFilePrefix + t.UTC().Format(logFileTimeLayout) + logFileSuffix
}

// cleanupLogs removes the oldest session logs so that keep remain. Other files in the directory are left alone.
func cleanupLogs(logDir string, keep int) {
	entries, err := os.ReadDir(logDir)
	if err != nil {
		return
	}

	var logFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() && strings.HasPrefix(name, logFilePrefix) && strings.HasSuffix(name, logFileSuffix) {
			logFiles = append(logFiles, name)
		}
	}
	if len(logFiles) <= keep {
		return
	}

	sort.Strings(logFiles)
	for _, name := range logFiles[:len(logFiles)-keep] {
		if err := os.Remove(filepath.Join(logDir, name)); err != nil {
			slog.Warn(LogMsgFailedDeleteOldLog, "file", name, "error", err)
		}
	}
}
