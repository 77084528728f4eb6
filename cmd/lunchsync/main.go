package main

import (
	"os"

	"github.com/spf13/cobra"

	"lunchsync/internal/config"
	"lunchsync/internal/logging"
)

var cfg = config.New()

var rootCmd = &cobra.Command{
	Use:   "lunchsync",
	Short: "Synchronize weekly lunch orders from spreadsheets to the lunches API",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Load(); err != nil {
			return err
		}
		logging.Setup(cfg.LogLevel, cfg.LogFormat)
		return nil
	},
	SilenceUsage: true,
}

func init() {
	cfg.BindFlags(rootCmd.PersistentFlags())
	rootCmd.AddCommand(serveCmd, syncCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
