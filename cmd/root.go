// Package cmd wires the command-line interface.
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/iyuangang/sql-batch-runner/internal/config"
	"github.com/iyuangang/sql-batch-runner/internal/core"
	"github.com/iyuangang/sql-batch-runner/internal/output"
	"github.com/iyuangang/sql-batch-runner/internal/security"
	"github.com/iyuangang/sql-batch-runner/internal/utils"
)

var (
	configFile      string
	connectionURL   string
	sqlFile         string
	filePattern     string
	continueOnError bool
	securityLevel   string
	disableSecurity bool
	outputFormat    string
	verbose         bool
	noProgress      bool
)

var rootCmd = &cobra.Command{
	Use:   "sql-batch-runner",
	Short: "Execute batches of SQL files against a database",
	Long: `Execute batches of SQL files against a database.

Statements are split on top-level semicolons with comments stripped,
classified as fetch or execute (CTEs follow their main statement), and run
under a configurable transaction policy: stop on the first error and roll
the file back, or isolate each statement and continue.`,
	SilenceUsage: true,
	RunE:         runBatch,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.Flags().StringVarP(&connectionURL, "connection", "c", "", "database connection URL")
	rootCmd.Flags().StringVarP(&sqlFile, "file", "f", "", "SQL file to execute")
	rootCmd.Flags().StringVarP(&filePattern, "pattern", "p", "", "glob pattern of SQL files to execute")
	rootCmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "isolate each statement and keep going after failures")
	rootCmd.Flags().StringVar(&securityLevel, "security-level", "", "security level (strict/normal/permissive)")
	rootCmd.Flags().BoolVar(&disableSecurity, "disable-security", false, "disable all security validation")
	rootCmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "output format (text/json)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log to stdout as well as the log file")
	rootCmd.Flags().BoolVar(&noProgress, "no-progress", false, "do not show a progress bar")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(testConnCmd)
	rootCmd.AddCommand(encryptCmd)
	rootCmd.AddCommand(decryptCmd)
}

// loadConfig merges flags over environment over the config file.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if connectionURL != "" {
		cfg.DatabaseURL = connectionURL
	}
	if continueOnError {
		cfg.Execution.StopOnError = false
	}
	if securityLevel != "" {
		level, err := security.ParseLevel(securityLevel)
		if err != nil {
			return nil, err
		}
		cfg.Security.Level = level
	}
	if disableSecurity {
		cfg.Security.Enabled = false
	}
	return cfg, nil
}

// collectFiles resolves --file or --pattern into a sorted path list.
func collectFiles() ([]string, error) {
	switch {
	case sqlFile != "" && filePattern != "":
		return nil, fmt.Errorf("use either --file or --pattern, not both")
	case sqlFile != "":
		if !utils.FileExists(sqlFile) {
			return nil, fmt.Errorf("SQL file not found: %s", sqlFile)
		}
		return []string{sqlFile}, nil
	case filePattern != "":
		matches, err := filepath.Glob(filePattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", filePattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match pattern %q", filePattern)
		}
		sort.Strings(matches)
		return matches, nil
	}
	return nil, fmt.Errorf("specify a SQL file (-f) or a glob pattern (-p)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("no database URL: use --connection, the config file, or SQL_BATCH_RUNNER_DATABASE_URL")
	}

	files, err := collectFiles()
	if err != nil {
		return err
	}

	logger, err := utils.NewLogger(cfg.LogFile, cfg.LogLevel, verbose)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	if !cfg.Security.Enabled {
		fmt.Fprintln(os.Stderr, "Warning: security validation is disabled")
		logger.Warnw("security validation disabled")
	}

	// Screen the URL before any connection attempt.
	if err := security.NewValidator(cfg.Security).ValidateURL(cfg.DatabaseURL); err != nil {
		return err
	}

	exec, err := core.NewExecutor(cfg, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer exec.Close()

	logger.Infow("starting batch",
		"version", Version,
		"files", len(files),
		"stop_on_error", cfg.Execution.StopOnError,
		"security_level", cfg.Security.Level)

	var progress *utils.Progress
	if format == output.FormatText && !noProgress && len(files) > 1 {
		progress = utils.NewProgress(len(files), "Executing SQL files")
	}

	summary := exec.ProcessFiles(context.Background(), files, progress)
	if progress != nil {
		progress.Finish()
	}

	if err := output.NewPrinter(os.Stdout, format).PrintSummary(summary); err != nil {
		return err
	}

	if !summary.Ok() {
		return fmt.Errorf("%d of %d files had failures",
			summary.FilesFailed+summary.FilesMixed, summary.FilesProcessed)
	}
	return nil
}
