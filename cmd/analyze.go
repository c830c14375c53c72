package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harborview-partners/dealflow-cli/internal/benchmark"
	"github.com/harborview-partners/dealflow-cli/internal/importer"
	"github.com/harborview-partners/dealflow-cli/internal/model"
	"github.com/harborview-partners/dealflow-cli/internal/proforma"
	"github.com/harborview-partners/dealflow-cli/internal/report"
	"github.com/harborview-partners/dealflow-cli/internal/snapshot"
)

var (
	analyzePayloadFile string
	analyzeWaterfall   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [deal-id]",
	Short: "Run the pro forma analysis for a deal or payload file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		benchCfg, err := effectiveBenchmarks()
		if err != nil {
			return err
		}

		var deal *model.Deal
		switch {
		case analyzePayloadFile != "":
			payload, err := importer.ReadJSON(analyzePayloadFile)
			if err != nil {
				return err
			}
			deal = &model.Deal{Name: analyzePayloadFile, Payload: payload}
		case len(args) == 1:
			s, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()
			if deal, err = s.GetDeal(cmd.Context(), args[0]); err != nil {
				return err
			}
		default:
			return eris.New("analyze: a deal id or --payload file is required")
		}

		result := runAnalysis(deal, benchCfg)
		zap.L().Info("analysis complete",
			zap.String("deal", deal.Name),
			zap.Float64("total_opportunity", result.TotalOpportunity),
			zap.Int("issues", len(result.Issues)),
		)

		report.RenderAnalysis(os.Stdout, result)

		if analyzeWaterfall && deal.Payload != nil {
			snap := dealSnapshot(deal)
			if snap.EBITDA != nil && result.StabilizedEBITDA != nil {
				segments := proforma.BuildWaterfall(*snap.EBITDA, result.Opportunities, *result.StabilizedEBITDA)
				os.Stdout.WriteString("\n")
				report.RenderWaterfall(os.Stdout, segments)
			}
		}
		return nil
	},
}

// dealSnapshot extracts the deal's financial snapshot with the server
// overlay merged in.
func dealSnapshot(deal *model.Deal) snapshot.Snapshot {
	snap := snapshot.Extract(deal.Payload)
	if len(deal.Overlay) > 0 {
		snap = snapshot.MergeOverlay(snap, deal.Overlay)
	}
	return snap
}

// runAnalysis runs the full benchmarking pass for a deal.
func runAnalysis(deal *model.Deal, benchCfg benchmark.Config) proforma.AnalysisResult {
	return proforma.Calculate(dealSnapshot(deal), benchCfg, deal.ServerAnalysis)
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzePayloadFile, "payload", "", "analyze a local JSON payload instead of a stored deal")
	analyzeCmd.Flags().BoolVar(&analyzeWaterfall, "waterfall", false, "print the EBITDA bridge segments")
	rootCmd.AddCommand(analyzeCmd)
}
