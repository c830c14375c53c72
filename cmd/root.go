package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harborview-partners/dealflow-cli/internal/config"
)

var cfg *config.Config

var benchmarksFile string

var rootCmd = &cobra.Command{
	Use:   "dealflow",
	Short: "Healthcare M&A deal pipeline and pro forma engine",
	Long:  "Tracks seniors-housing acquisition targets, benchmarks their T12 financials against configurable operating targets, and quantifies the EBITDA opportunity.",
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
	rootCmd.PersistentFlags().StringVar(&benchmarksFile, "benchmarks", "",
		"YAML file of benchmark overrides (default from config)")
}
