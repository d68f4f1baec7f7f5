package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/chiaview/site-backend/config"
	"github.com/chiaview/site-backend/database"
	"github.com/chiaview/site-backend/logger"
	"github.com/chiaview/site-backend/models"
)

const serviceName = "site-backend"

func main() {
	rootCmd := &cobra.Command{
		Use:          serviceName,
		Short:        "Chia View site API",
		SilenceUsage: true,
		RunE:         runServe,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE:  runServe,
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, db, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			if err := database.New(db).Migrate(); err != nil {
				return err
			}
			log.Info().Msg("migration complete")
			return nil
		},
	}

	var outPath string
	genCmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate typed query helpers and report unmapped columns",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, db, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			return models.Generate(db, outPath)
		},
	}
	genCmd.Flags().StringVar(&outPath, "out", "./generated", "output directory for generated code")

	rootCmd.AddCommand(serveCmd, migrateCmd, genCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// setup loads configuration and initializes the global logger.
func setup(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	err = logger.Init(logger.Options{
		Service:  serviceName,
		Level:    cfg.LogLevel,
		Pretty:   cfg.LogPretty,
		FilePath: cfg.LogFilePath,
		MaxSize:  cfg.LogFileMaxSize,
		MaxAge:   cfg.LogFileMaxAge,
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// bootstrap runs setup and connects to the database.
func bootstrap(ctx context.Context) (*config.Config, *gorm.DB, error) {
	cfg, err := setup(ctx)
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg.DSN(), cfg.ReplicaDSNs())
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
