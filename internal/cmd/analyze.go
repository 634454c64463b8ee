package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"log/slog"

	"github.com/folioscan/folioscan/internal/config"
	"github.com/folioscan/folioscan/internal/dedup"
	"github.com/folioscan/folioscan/internal/pipeline"
	"github.com/folioscan/folioscan/internal/progress"
	"github.com/folioscan/folioscan/internal/util"
	"github.com/spf13/cobra"
)

var (
	settings       *config.Settings
	scanConfigPath string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <archive.zip>",
	Short: "Analyze an uploaded portfolio archive",
	Long: `Analyze extracts a zip archive, discovers the projects inside, classifies
every file, mines git history for contributor and activity statistics,
ranks skills by recency and marks files already seen in earlier uploads
of the same user.

Examples:
  folioscan analyze portfolio.zip
  folioscan analyze --user-id 42 --store folioscan.sqlite portfolio.zip
  folioscan analyze --filter-username jordan portfolio.zip
  folioscan analyze --exclude "**/fixtures/**" --format yaml portfolio.zip`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Defaults come from the environment so flags only override what the
	// user sets explicitly.
	settings = config.LoadSettings()

	analyzeCmd.Flags().StringVarP(&settings.OutputFile, "output", "o", settings.OutputFile, "Output file path (default: stdout)")
	analyzeCmd.Flags().StringVarP(&settings.Format, "format", "f", settings.Format, "Output format: json, yaml, or text")
	analyzeCmd.Flags().BoolVar(&settings.PrettyPrint, "pretty", settings.PrettyPrint, "Pretty print JSON output")
	analyzeCmd.Flags().StringSliceVar(&settings.ExcludePatterns, "exclude", settings.ExcludePatterns, "Patterns to exclude (supports glob patterns, can be specified multiple times)")
	analyzeCmd.Flags().Int64Var(&settings.UserID, "user-id", settings.UserID, "Owner of the upload, scopes deduplication")
	analyzeCmd.Flags().StringVar(&settings.FilterUsername, "filter-username", settings.FilterUsername, "Only report contributions matching this name or email local part")
	analyzeCmd.Flags().StringVar(&settings.StorePath, "store", settings.StorePath, "SQLite dedup store path (default: in-memory)")
	analyzeCmd.Flags().IntVar(&settings.GitWorkers, "git-workers", settings.GitWorkers, "Concurrent git analyses (0 = one per CPU)")
	analyzeCmd.Flags().IntVar(&settings.HashWorkers, "hash-workers", settings.HashWorkers, "Concurrent file hashers (0 = one per CPU)")
	analyzeCmd.Flags().BoolVarP(&settings.Verbose, "verbose", "v", settings.Verbose, "Show progress while analyzing")
	analyzeCmd.Flags().BoolVarP(&settings.Debug, "debug", "d", settings.Debug, "Show progress and debug logging")
	analyzeCmd.Flags().StringVar(&scanConfigPath, "config", "", "Scan config YAML path (default: embedded)")

	analyzeCmd.Flags().String("log-level", settings.LogLevel.String(), "Log level: debug, info, warn, error")
	analyzeCmd.Flags().String("log-format", settings.LogFormat, "Log format: text or json")
	analyzeCmd.Flags().String("log-file", settings.LogFile, "Log file path (default: stderr)")

	analyzeCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		settings.Format = util.NormalizeFormat(settings.Format)
		return util.ValidateOutputFormat(settings.Format)
	}
}

// configureLogging sets up logging based on command flags
func configureLogging(cmd *cobra.Command) *slog.Logger {
	logLevel, _ := cmd.Flags().GetString("log-level")
	logFormat, _ := cmd.Flags().GetString("log-format")
	logFile, _ := cmd.Flags().GetString("log-file")

	if level, err := config.ParseLogLevel(logLevel); err == nil {
		settings.LogLevel = level
	}
	if settings.Debug {
		settings.LogLevel = slog.LevelDebug
	}
	settings.LogFormat = logFormat
	settings.LogFile = logFile

	return settings.ConfigureLogger()
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	logger := configureLogging(cmd)

	path := strings.TrimSpace(args[0])
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		return fmt.Errorf("failed to read archive: %w", err)
	}

	cfg, err := config.LoadScanConfig(scanConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load scan config: %w", err)
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	prog := progress.New(settings.Verbose || settings.Debug, progress.HandlerFor(os.Stderr))
	pipe := pipeline.New(settings, cfg,
		pipeline.WithStore(store),
		pipeline.WithProgress(prog),
		pipeline.WithVersion(rootCmd.Version),
	)

	logger.Debug("Starting analysis",
		"archive", absPath,
		"user_id", settings.UserID,
		"exclude_patterns", settings.ExcludePatterns)

	payload, err := pipe.Analyze(cmd.Context(), data, filepath.Base(absPath))
	if err != nil {
		return err
	}

	return OutputToFile(payloadOutput{payload}, settings.Format, settings.OutputFile, settings.PrettyPrint)
}

func openStore() (dedup.Store, error) {
	if settings.StorePath == "" {
		return dedup.NewMemoryStore(), nil
	}
	store, err := dedup.OpenSQLiteStore(settings.StorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open dedup store: %w", err)
	}
	return store, nil
}
