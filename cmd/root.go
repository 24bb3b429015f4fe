// Package cmd is the journal's command line.
package cmd

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"stock-journal/config"
	"stock-journal/database"
	"stock-journal/report"
	"stock-journal/session"
)

// NewRootCommand creates the root command of the journal CLI.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stock-journal",
		Short:         "Personal stock trading journal",
		Long:          "Log buy and sell trades, write daily reflections, and review daily, monthly and yearly reports.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewMigrateCommand())
	cmd.AddCommand(NewImportCommand())
	cmd.AddCommand(NewUserCommand())
	return cmd
}

// Execute runs the CLI and returns its error, already logged.
func Execute() error {
	err := NewRootCommand().Execute()
	if err != nil {
		log.WithError(err).Error("command failed")
	}
	return err
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	log.SetLevel(cfg.LogLevel)
	return cfg, nil
}

// openStore connects to the database and migrates it. The returned func
// closes the connection.
func openStore(cmd *cobra.Command, cfg *config.Config) (*database.Store, func(), error) {
	db, err := config.OpenDatabase(cfg)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	closeFn := func() { sqlDB.Close() }

	store := database.New(db)
	if err := store.Migrate(cmd.Context()); err != nil {
		closeFn()
		return nil, nil, err
	}
	return store, closeFn, nil
}

// openShared connects to the Redis instance the server keeps its report
// cache and sessions in. Both results are nil when REDIS_ADDR is empty;
// an in-memory server cache cannot be reached from another process.
func openShared(cmd *cobra.Command, cfg *config.Config) (report.Cache, session.Registry, func(), error) {
	rdb, err := config.OpenRedis(cmd.Context(), cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	if rdb == nil {
		log.Warn("REDIS_ADDR not set, a running server keeps serving its cached reports until restart")
		return nil, nil, func() {}, nil
	}
	closeFn := func() { rdb.Close() }
	return report.NewRedisCache(rdb, cfg.ReportCacheTTL), session.NewRedisStore(rdb), closeFn, nil
}
