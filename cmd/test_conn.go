package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iyuangang/sql-batch-runner/internal/db"
	"github.com/iyuangang/sql-batch-runner/internal/security"
	"github.com/iyuangang/sql-batch-runner/internal/utils"
)

var testConnCmd = &cobra.Command{
	Use:   "test-connection",
	Short: "Test the database connection",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("no database URL: use --connection, the config file, or SQL_BATCH_RUNNER_DATABASE_URL")
		}
		if err := security.NewValidator(cfg.Security).ValidateURL(cfg.DatabaseURL); err != nil {
			return err
		}

		logger, err := utils.NewLogger(cfg.LogFile, cfg.LogLevel, verbose)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer logger.Sync()

		start := time.Now()
		pool, err := db.NewPool(cfg.DatabaseURL, logger)
		if err != nil {
			return fmt.Errorf("connection failed: %w", err)
		}
		defer pool.Close()

		if err := pool.Ping(context.Background()); err != nil {
			return fmt.Errorf("ping failed: %w", err)
		}

		fmt.Printf("Connected via %s driver\n", pool.Driver())
		fmt.Printf("Response time: %s\n", utils.FormatDuration(time.Since(start)))

		stats := pool.Stats()
		fmt.Printf("\nConnection pool:\n")
		fmt.Printf("Open connections: %d\n", stats.OpenConnections)
		fmt.Printf("In use: %d\n", stats.InUse)
		fmt.Printf("Idle: %d\n", stats.Idle)
		return nil
	},
}
