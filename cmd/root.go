package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/civicsnap/civic-cli/internal/config"
)

var cfg *config.Config

var rulesPath string

var rootCmd = &cobra.Command{
	Use:   "civic-cli",
	Short: "Civic snapshot aggregator",
	Long:  "Turns a ZIP code into a consolidated civic snapshot: jurisdiction, legislative bills, and elected representatives, via OpenStates and zippopotam.us.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rulesPath, "rules", "", "YAML file with category keyword overrides")
}
