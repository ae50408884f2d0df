package main

import (
	"os"

	"github.com/raseen-shahil/Med-App-sub000/config"
	"github.com/raseen-shahil/Med-App-sub000/logger"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "medapp",
	Short:         "Online pharmacy backend: shopping app and seller dashboard API",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		logger.Init(cfg.LogLevel, cfg.LogPretty)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("❌ command failed")
		os.Exit(1)
	}
}
