package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harborview-partners/dealflow-cli/internal/importer"
	"github.com/harborview-partners/dealflow-cli/internal/model"
)

var (
	importName  string
	importSheet string
	importSkip  int
	importType  string
	importCity  string
	importState string
	importBeds  int
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Create a deal from an extraction workbook or JSON payload",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		var payload map[string]any
		var err error
		switch strings.ToLower(filepath.Ext(path)) {
		case ".xlsx":
			payload, err = importer.ReadWorkbook(path, importer.WorkbookOptions{
				SheetName: importSheet,
				SkipRows:  importSkip,
			})
		default:
			payload, err = importer.ReadJSON(path)
		}
		if err != nil {
			return err
		}

		name := importName
		if name == "" {
			if n, ok := payload["facility_name"].(string); ok {
				name = n
			} else {
				name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			}
		}

		s, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		facility := model.Facility{
			Name:  name,
			Type:  importType,
			City:  importCity,
			State: importState,
			Beds:  importBeds,
		}
		deal, err := s.CreateDeal(cmd.Context(), name, facility, payload)
		if err != nil {
			return err
		}

		zap.L().Info("deal imported",
			zap.String("deal_id", deal.ID),
			zap.String("source", path),
			zap.Int("fields", len(payload)),
		)
		fmt.Printf("created deal %s (%s)\n", deal.ID, deal.Name)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importName, "name", "", "deal name (default from payload or filename)")
	importCmd.Flags().StringVar(&importSheet, "sheet", "", "workbook sheet name (default first sheet)")
	importCmd.Flags().IntVar(&importSkip, "skip-rows", 1, "header rows to skip in the workbook")
	importCmd.Flags().StringVar(&importType, "type", "", "facility type (AL, IL, MC, SNF)")
	importCmd.Flags().StringVar(&importCity, "city", "", "facility city")
	importCmd.Flags().StringVar(&importState, "state", "", "facility state")
	importCmd.Flags().IntVar(&importBeds, "beds", 0, "licensed beds")

	rootCmd.AddCommand(importCmd)
}
