package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/harborview-partners/dealflow-cli/internal/report"
)

var benchmarksCmd = &cobra.Command{
	Use:   "benchmarks",
	Short: "Print the effective benchmark table",
	RunE: func(cmd *cobra.Command, args []string) error {
		benchCfg, err := effectiveBenchmarks()
		if err != nil {
			return err
		}
		report.RenderBenchmarks(os.Stdout, benchCfg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(benchmarksCmd)
}
