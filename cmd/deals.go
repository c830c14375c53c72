package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/harborview-partners/dealflow-cli/internal/model"
	"github.com/harborview-partners/dealflow-cli/internal/store"
)

var (
	dealsStatus string
	dealsState  string
	dealsLimit  int
)

var dealsCmd = &cobra.Command{
	Use:   "deals",
	Short: "Manage pipeline deals",
}

var dealsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List deals in the pipeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		filter := store.DealFilter{
			Status: model.DealStatus(dealsStatus),
			State:  dealsState,
			Limit:  dealsLimit,
		}
		if filter.Status != "" && !model.ValidDealStatus(filter.Status) {
			return eris.Errorf("unknown status: %s", dealsStatus)
		}

		deals, err := s.ListDeals(cmd.Context(), filter)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tSTATE\tBEDS\tUPDATED")
		for _, d := range deals {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
				d.ID, d.Name, d.Status, d.Facility.State, d.Facility.Beds,
				d.UpdatedAt.Format("2006-01-02"))
		}
		return tw.Flush()
	},
}

var dealsShowCmd = &cobra.Command{
	Use:   "show <deal-id>",
	Short: "Print a deal as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		deal, err := s.GetDeal(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(deal)
	},
}

var dealsStatusCmd = &cobra.Command{
	Use:   "status <deal-id> <status>",
	Short: "Move a deal to a new pipeline stage",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		status := model.DealStatus(args[1])
		if !model.ValidDealStatus(status) {
			return eris.Errorf("unknown status: %s", args[1])
		}

		s, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		return s.UpdateDealStatus(cmd.Context(), args[0], status)
	},
}

var dealsDeleteCmd = &cobra.Command{
	Use:   "delete <deal-id>",
	Short: "Delete a deal and its scenarios",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		return s.DeleteDeal(cmd.Context(), args[0])
	},
}

func init() {
	dealsListCmd.Flags().StringVar(&dealsStatus, "status", "", "filter by pipeline stage")
	dealsListCmd.Flags().StringVar(&dealsState, "state", "", "filter by facility state")
	dealsListCmd.Flags().IntVar(&dealsLimit, "limit", 0, "max rows (default 100)")

	dealsCmd.AddCommand(dealsListCmd, dealsShowCmd, dealsStatusCmd, dealsDeleteCmd)
	rootCmd.AddCommand(dealsCmd)
}
