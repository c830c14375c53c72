package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

// writeWorkbook builds a two-column extraction workbook for tests.
func writeWorkbook(t *testing.T, sheetName string, rows [][2]string) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	require.NoError(t, err)

	header := sheet.AddRow()
	header.AddCell().Value = "Field"
	header.AddCell().Value = "Value"
	for _, r := range rows {
		row := sheet.AddRow()
		row.AddCell().Value = r[0]
		row.AddCell().Value = r[1]
	}

	path := filepath.Join(t.TempDir(), "extraction.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadWorkbook(t *testing.T) {
	path := writeWorkbook(t, "Financials", [][2]string{
		{"facility_name", "Maple Grove"},
		{"financial_information_t12.total_revenue", "$10,000,000"},
		{"financial_information_t12.ebitda", "1200000"},
		{"expense_information.total_labor_cost", "4,800,000"},
		{"census_information.occupancy_pct", "88%"},
		{"custom_note", "operator provided T12 through June"},
	})

	payload, err := ReadWorkbook(path, WorkbookOptions{SkipRows: 1})
	require.NoError(t, err)

	fin, ok := payload["financial_information_t12"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 10_000_000.0, fin["total_revenue"])
	assert.Equal(t, 1_200_000.0, fin["ebitda"])

	exp := payload["expense_information"].(map[string]any)
	assert.Equal(t, 4_800_000.0, exp["total_labor_cost"])

	census := payload["census_information"].(map[string]any)
	assert.Equal(t, 88.0, census["occupancy_pct"])

	// Non-numeric fields survive verbatim.
	assert.Equal(t, "Maple Grove", payload["facility_name"])
	assert.Equal(t, "operator provided T12 through June", payload["custom_note"])
}

func TestReadWorkbookSheetSelection(t *testing.T) {
	path := writeWorkbook(t, "Extraction", [][2]string{
		{"annual_revenue", "5000000"},
	})

	payload, err := ReadWorkbook(path, WorkbookOptions{SheetName: "Extraction", SkipRows: 1})
	require.NoError(t, err)
	assert.Equal(t, 5_000_000.0, payload["annual_revenue"])

	_, err = ReadWorkbook(path, WorkbookOptions{SheetName: "Missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sheet \"Missing\" not found")

	_, err = ReadWorkbook(path, WorkbookOptions{SheetIndex: 5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestReadWorkbookSkipsBlankAndShortRows(t *testing.T) {
	path := writeWorkbook(t, "Financials", [][2]string{
		{"annual_revenue", "5000000"},
		{"", "ignored"},
		{"orphan_field", ""},
	})

	payload, err := ReadWorkbook(path, WorkbookOptions{SkipRows: 1})
	require.NoError(t, err)
	assert.Len(t, payload, 1)
}

func TestReadWorkbookEmpty(t *testing.T) {
	path := writeWorkbook(t, "Financials", nil)
	_, err := ReadWorkbook(path, WorkbookOptions{SkipRows: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no field rows")
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		raw  string
		want any
	}{
		{"1234", 1234.0},
		{"$1,234.56", 1234.56},
		{"88%", 88.0},
		{"($500)", -500.0},
		{"(1,200)", -1200.0},
		{"8.50", 8.5},
		{"AL/MC", "AL/MC"},
		{"$n/a", "$n/a"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseValue(tt.raw), tt.raw)
	}
}

func TestReadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payload.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"financial_information_t12": {"total_revenue": 10000000},
		"facility_name": "Maple Grove"
	}`), 0o644))

	payload, err := ReadJSON(path)
	require.NoError(t, err)
	fin := payload["financial_information_t12"].(map[string]any)
	assert.Equal(t, 10_000_000.0, fin["total_revenue"])
}

func TestReadJSONErrors(t *testing.T) {
	_, err := ReadJSON(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("not json"), 0o644))
	_, err = ReadJSON(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse json")

	empty := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte("{}"), 0o644))
	_, err = ReadJSON(empty)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty payload")
}
