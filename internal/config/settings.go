package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"log/slog"
)

// Settings holds all analyzer runtime configuration
type Settings struct {
	// Output settings
	OutputFile  string
	Format      string // "json", "yaml" or "text"
	PrettyPrint bool

	// Analysis behavior
	ExcludePatterns []string
	UserID          int64  // owner of the upload, scopes deduplication
	FilterUsername  string // optional contributor filter
	StorePath       string // sqlite dedup store, empty = in-memory
	GitWorkers      int    // 0 = one per CPU
	HashWorkers     int    // 0 = one per CPU
	Verbose         bool
	Debug           bool

	// Logging
	LogLevel  slog.Level
	LogFormat string // "text" or "json"
	LogFile   string // Optional: write logs to file instead of stderr
}

// DefaultSettings returns default configuration
func DefaultSettings() *Settings {
	return &Settings{
		OutputFile:      "",
		Format:          "json",
		PrettyPrint:     true,
		ExcludePatterns: []string{},
		UserID:          0,
		FilterUsername:  "",
		StorePath:       "",
		GitWorkers:      0,
		HashWorkers:     0,
		Verbose:         false,
		Debug:           false,
		LogLevel:        slog.LevelError,
		LogFormat:       "text",
		LogFile:         "",
	}
}

// LoadSettings creates settings from defaults and applies environment variable overrides
func LoadSettings() *Settings {
	settings := DefaultSettings()

	if outputFile := os.Getenv("FOLIOSCAN_OUTPUT"); outputFile != "" {
		settings.OutputFile = outputFile
	}

	if format := os.Getenv("FOLIOSCAN_FORMAT"); format != "" {
		settings.Format = strings.ToLower(format)
	}

	if excludePatterns := os.Getenv("FOLIOSCAN_EXCLUDE"); excludePatterns != "" {
		settings.ExcludePatterns = strings.Split(excludePatterns, ",")
		for i, pattern := range settings.ExcludePatterns {
			settings.ExcludePatterns[i] = strings.TrimSpace(pattern)
		}
	}

	if userID := os.Getenv("FOLIOSCAN_USER_ID"); userID != "" {
		if id, err := strconv.ParseInt(userID, 10, 64); err == nil {
			settings.UserID = id
		}
	}

	if store := os.Getenv("FOLIOSCAN_STORE"); store != "" {
		settings.StorePath = store
	}

	if workers := os.Getenv("FOLIOSCAN_GIT_WORKERS"); workers != "" {
		if n, err := strconv.Atoi(workers); err == nil && n > 0 {
			settings.GitWorkers = n
		}
	}

	if pretty := os.Getenv("FOLIOSCAN_PRETTY"); pretty != "" {
		settings.PrettyPrint = strings.ToLower(pretty) == "true"
	}

	if logLevel := os.Getenv("FOLIOSCAN_LOG_LEVEL"); logLevel != "" {
		if level, err := ParseLogLevel(logLevel); err == nil {
			settings.LogLevel = level
		}
	}

	if logFormat := os.Getenv("FOLIOSCAN_LOG_FORMAT"); logFormat != "" {
		settings.LogFormat = logFormat
	}

	if logFile := os.Getenv("FOLIOSCAN_LOG_FILE"); logFile != "" {
		settings.LogFile = logFile
	}

	if verbose := os.Getenv("FOLIOSCAN_VERBOSE"); verbose != "" {
		settings.Verbose = strings.ToLower(verbose) == "true"
	}

	if debug := os.Getenv("FOLIOSCAN_DEBUG"); debug != "" {
		settings.Debug = strings.ToLower(debug) == "true"
	}

	return settings
}

// ParseLogLevel converts string log level to slog.Level
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", level)
	}
}

// ConfigureLogger sets up the global logger based on settings
func (s *Settings) ConfigureLogger() *slog.Logger {
	var handler slog.Handler

	var output io.Writer = os.Stderr
	if s.LogFile != "" {
		file, err := os.OpenFile(s.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Cannot open log file %s: %v\n", s.LogFile, err)
			output = os.Stderr
		} else {
			output = file
		}
	}

	opts := &slog.HandlerOptions{
		Level: s.LogLevel,
	}

	if s.LogFormat == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}
