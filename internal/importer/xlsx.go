// Package importer turns facility financial submissions (extraction
// workbooks or raw JSON files) into the payload map the snapshot
// extractor consumes.
package importer

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// WorkbookOptions configures the XLSX reader.
type WorkbookOptions struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
	SkipRows   int    // number of header rows to skip
}

// ReadWorkbook reads a two-column (field, value) extraction workbook and
// builds a payload map. Dotted field names nest ("expense_information.
// total_labor_cost" becomes a sub-map); numeric-looking values are
// parsed, everything else is kept verbatim. Unknown fields pass through
// untouched: the snapshot extractor decides what it understands.
func ReadWorkbook(path string, opts WorkbookOptions) (map[string]any, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "importer: open workbook")
	}

	sheet, err := getSheet(f, opts)
	if err != nil {
		return nil, err
	}

	payload := make(map[string]any)
	for i, row := range sheet.Rows {
		if i < opts.SkipRows || len(row.Cells) < 2 {
			continue
		}
		field := strings.TrimSpace(row.Cells[0].String())
		raw := strings.TrimSpace(row.Cells[1].String())
		if field == "" || raw == "" {
			continue
		}
		setField(payload, field, parseValue(raw))
	}
	if len(payload) == 0 {
		return nil, eris.Errorf("importer: no field rows in %s", path)
	}
	return payload, nil
}

func getSheet(f *xlsx.File, opts WorkbookOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("importer: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}
	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("importer: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}
	return f.Sheets[opts.SheetIndex], nil
}

// setField writes value at the dotted path, creating intermediate maps.
// A scalar already sitting where a map is needed gets replaced; last
// write wins, matching how analysts re-key corrected rows lower in the
// sheet.
func setField(payload map[string]any, field string, value any) {
	parts := strings.Split(field, ".")
	m := payload
	for _, part := range parts[:len(parts)-1] {
		next, ok := m[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[part] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = value
}

// parseValue converts currency- and percent-formatted strings to
// float64 where possible; otherwise the raw string is preserved.
func parseValue(raw string) any {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.TrimSuffix(cleaned, "%")
	cleaned = strings.ReplaceAll(cleaned, ",", "")

	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = strings.Trim(cleaned, "()")
		cleaned = strings.TrimPrefix(cleaned, "$")
	}

	if v, err := strconv.ParseFloat(cleaned, 64); err == nil {
		if negative {
			return -v
		}
		return v
	}
	return raw
}
