package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/draftworks/manualj-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "manualj",
	Short: "Manual-J load calculation from blueprint PDFs",
	Long:  "Classifies blueprint pages, detects drawing scale, extracts room geometry, reconciles it with vision-extracted semantics, and computes Manual-J heating and cooling loads.",
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
