package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"inventario/internal/database"
	"inventario/internal/inventory"
	"inventario/internal/server"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, db, err := bootstrap(v)
			if err != nil {
				return err
			}
			defer log.Sync()
			defer database.Close(db)

			store := inventory.NewStore(db, log)
			app := server.New(server.Deps{
				Config: cfg,
				Repo:   store,
				Health: store,
				Log:    log,
			})

			go func() {
				quit := make(chan os.Signal, 1)
				signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
				<-quit
				log.Info("shutting down")
				if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
					log.Error("shutdown", zap.Error(err))
				}
			}()

			log.Info("server listening", zap.String("port", cfg.HTTPPort), zap.String("env", cfg.AppEnv))
			return app.Listen(":" + cfg.HTTPPort)
		},
	}

	cmd.Flags().String("port", "8080", "HTTP port")
	if err := v.BindPFlag("http_port", cmd.Flags().Lookup("port")); err != nil {
		panic(err)
	}
	return cmd
}
