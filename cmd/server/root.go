package main

import (
	"fmt"

	"inventario/internal/config"
	"inventario/internal/database"
	"inventario/internal/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newRootCmd() *cobra.Command {
	v := config.New()

	root := &cobra.Command{
		Use:           "inventario",
		Short:         "Inventory tracker web application",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("db-driver", "sqlite", "database driver (sqlite, postgres)")
	flags.String("dsn", "", "database DSN (default inventario.db for sqlite)")
	flags.Duration("lock-timeout", 0, "how long a write waits for another writer's lock (default 10s)")
	flags.String("log-level", "", "debug, info, warn or error")
	bindFlag(v, "db_driver", root, "db-driver")
	bindFlag(v, "database_dsn", root, "dsn")
	bindFlag(v, "db_lock_timeout", root, "lock-timeout")
	bindFlag(v, "log_level", root, "log-level")

	serve := newServeCmd(v)
	root.AddCommand(serve, newExportCmd(v))
	// bare `inventario` starts the server
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

// bindFlag lets an explicitly set flag override the environment. Unset flags
// keep the env/default value.
func bindFlag(v *viper.Viper, key string, cmd *cobra.Command, name string) {
	if err := v.BindPFlag(key, cmd.PersistentFlags().Lookup(name)); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", name, err))
	}
}

// bootstrap loads configuration, builds the logger and opens the database.
func bootstrap(v *viper.Viper) (*config.Config, *zap.Logger, *gorm.DB, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, nil, nil, err
	}

	log, err := logger.New(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	for _, w := range cfg.Warnings() {
		log.Warn(w)
	}

	db, err := database.Open(cfg, log)
	if err != nil {
		_ = log.Sync()
		return nil, nil, nil, err
	}
	return cfg, log, db, nil
}
