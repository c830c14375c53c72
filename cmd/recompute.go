package main

import (
	"context"
	"sync/atomic"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/harborview-partners/dealflow-cli/internal/benchmark"
	"github.com/harborview-partners/dealflow-cli/internal/store"
)

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Re-run the analysis for every saved scenario",
	Long:  "Refreshes cached scenario results against the current benchmark defaults. Run after changing house benchmarks so stale cached figures do not survive.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("recompute"); err != nil {
			return err
		}

		benchCfg, err := effectiveBenchmarks()
		if err != nil {
			return err
		}

		s, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		refreshed, skipped, err := recomputeScenarios(cmd.Context(), s, benchCfg, cfg.Recompute.MaxConcurrent)
		if err != nil {
			return err
		}
		zap.L().Info("recompute complete",
			zap.Int64("refreshed", refreshed),
			zap.Int64("unchanged", skipped),
		)
		return nil
	},
}

// recomputeScenarios refreshes every scenario whose cached result was
// produced under a different benchmark config. Deals are walked
// sequentially; scenario recomputes fan out under errgroup.
func recomputeScenarios(ctx context.Context, s store.Store, base benchmark.Config, maxConcurrent int) (refreshed, skipped int64, err error) {
	deals, err := s.ListDeals(ctx, store.DealFilter{Limit: 10_000})
	if err != nil {
		return 0, 0, err
	}

	var nRefreshed, nSkipped atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for _, deal := range deals {
		scenarios, err := s.ListScenarios(ctx, deal.ID)
		if err != nil {
			return 0, 0, err
		}
		for _, sc := range scenarios {
			g.Go(func() error {
				benchCfg, err := base.Apply(sc.Overrides)
				if err != nil {
					// An override key retired from the catalog; surface it
					// rather than silently keeping the stale cache.
					return err
				}
				if sc.Result != nil && sc.BenchmarkHash == benchCfg.Hash() {
					nSkipped.Add(1)
					return nil
				}

				result := runAnalysis(&deal, benchCfg)
				if err := s.UpdateScenarioResult(ctx, sc.ID, &result, benchCfg.Hash()); err != nil {
					return err
				}
				nRefreshed.Add(1)
				zap.L().Debug("scenario refreshed",
					zap.String("deal", deal.ID),
					zap.String("scenario", sc.ID),
					zap.String("name", sc.Name),
				)
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return 0, 0, err
	}
	return nRefreshed.Load(), nSkipped.Load(), nil
}

func init() {
	rootCmd.AddCommand(recomputeCmd)
}
