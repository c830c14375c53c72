package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/harborview-partners/dealflow-cli/internal/model"
	"github.com/harborview-partners/dealflow-cli/internal/report"
)

var (
	scenarioNotes     string
	scenarioOverrides []string
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Manage saved benchmark scenarios",
}

var scenarioSaveCmd = &cobra.Command{
	Use:   "save <deal-id> <name>",
	Short: "Save a benchmark override scenario for a deal",
	Long:  "Only the sparse override set is persisted; the analysis is computed and cached at save time against the current benchmark defaults.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		overrides, err := parseOverrides(scenarioOverrides)
		if err != nil {
			return err
		}

		benchCfg, err := effectiveBenchmarks()
		if err != nil {
			return err
		}
		benchCfg, err = benchCfg.Apply(overrides)
		if err != nil {
			return err
		}

		s, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		deal, err := s.GetDeal(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		result := runAnalysis(deal, benchCfg)
		sc := &model.Scenario{
			DealID:        deal.ID,
			Name:          args[1],
			Notes:         scenarioNotes,
			Overrides:     overrides,
			Result:        &result,
			BenchmarkHash: benchCfg.Hash(),
		}
		if err := s.SaveScenario(cmd.Context(), sc); err != nil {
			return err
		}

		fmt.Printf("saved scenario %s\n", sc.ID)
		fmt.Println(report.Summary(result))
		return nil
	},
}

var scenarioListCmd = &cobra.Command{
	Use:   "list <deal-id>",
	Short: "List scenarios for a deal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		scenarios, err := s.ListScenarios(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tOVERRIDES\tTOTAL OPPORTUNITY")
		for _, sc := range scenarios {
			total := "N/A"
			if sc.Result != nil {
				total = report.Currency(&sc.Result.TotalOpportunity)
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", sc.ID, sc.Name, len(sc.Overrides), total)
		}
		return tw.Flush()
	},
}

var scenarioShowCmd = &cobra.Command{
	Use:   "show <scenario-id>",
	Short: "Print a scenario as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		sc, err := s.GetScenario(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sc)
	},
}

var scenarioDeleteCmd = &cobra.Command{
	Use:   "delete <scenario-id>",
	Short: "Delete a scenario",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		return s.DeleteScenario(cmd.Context(), args[0])
	},
}

// parseOverrides turns repeated key=value flags into an override map.
func parseOverrides(pairs []string) (map[string]float64, error) {
	overrides := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, eris.Errorf("invalid override %q, want key=value", pair)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, eris.Errorf("invalid override value %q for %s", raw, key)
		}
		overrides[key] = v
	}
	return overrides, nil
}

func init() {
	scenarioSaveCmd.Flags().StringVar(&scenarioNotes, "notes", "", "free-form notes")
	scenarioSaveCmd.Flags().StringArrayVar(&scenarioOverrides, "set", nil,
		"benchmark override as key=value (repeatable)")

	scenarioCmd.AddCommand(scenarioSaveCmd, scenarioListCmd, scenarioShowCmd, scenarioDeleteCmd)
	rootCmd.AddCommand(scenarioCmd)
}
