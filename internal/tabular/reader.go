// Package tabular reads production data from CSV and XLSX files and
// extracts it into the typed shapes the analysis operations consume. The
// orchestrator negotiates column names with the user; extraction is
// explicit per intended use (overall totals, stage records, a numeric
// series, or event rows) rather than one function branching on which
// optional parameters were supplied.
package tabular

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/prodsight/yield-mcp-server/internal/analysis"
	mcperrors "github.com/prodsight/yield-mcp-server/internal/errors"
)

// Table is a parsed spreadsheet: a header row and data rows
type Table struct {
	Header []string
	Rows   [][]string
}

// ReadCSV parses a CSV file into a Table. The first row is the header.
func ReadCSV(path string) (*Table, error) {
	cleanPath := filepath.Clean(path)
	if strings.Contains(cleanPath, "..") {
		return nil, mcperrors.NewInvalidInput("Invalid file path: path traversal detected.")
	}

	f, err := os.Open(cleanPath) // #nosec G304 -- path is validated above
	if err != nil {
		return nil, mcperrors.NewParseErrorf("Could not open CSV file %s: %v", cleanPath, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, mcperrors.NewParseErrorf("Could not parse CSV file %s: %v", cleanPath, err)
	}
	return tableFromRecords(records, cleanPath)
}

// ReadXLSX parses a sheet of an Excel workbook into a Table. An empty
// sheet name selects the workbook's first sheet.
func ReadXLSX(path, sheetName string) (*Table, error) {
	cleanPath := filepath.Clean(path)
	if strings.Contains(cleanPath, "..") {
		return nil, mcperrors.NewInvalidInput("Invalid file path: path traversal detected.")
	}

	f, err := excelize.OpenFile(cleanPath)
	if err != nil {
		return nil, mcperrors.NewParseErrorf("Could not open Excel file %s: %v", cleanPath, err)
	}
	defer f.Close()

	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, mcperrors.NewParseErrorf("Could not read sheet %q from %s: %v", sheetName, cleanPath, err)
	}
	return tableFromRecords(rows, cleanPath)
}

func tableFromRecords(records [][]string, path string) (*Table, error) {
	if len(records) < 2 {
		return nil, mcperrors.NewParseErrorf("File %s must contain a header row and at least one data row.", path)
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}
	return &Table{Header: header, Rows: records[1:]}, nil
}

// columnIndex locates a column by name, case-insensitively
func (t *Table) columnIndex(name string) (int, error) {
	for i, h := range t.Header {
		if strings.EqualFold(h, name) {
			return i, nil
		}
	}
	return 0, mcperrors.NewInvalidInputf("Column %q not found; available columns: %s", name, strings.Join(t.Header, ", "))
}

func (t *Table) cell(row []string, col int) string {
	if col < len(row) {
		return strings.TrimSpace(row[col])
	}
	return ""
}

// YieldTotals is the overall-yield extraction result
type YieldTotals struct {
	TotalUnits     int `json:"total_units"`
	DefectiveUnits int `json:"defective_units"`
}

// ExtractYieldTotals sums the total-units and defective-units columns
// across all rows.
func (t *Table) ExtractYieldTotals(totalCol, defectiveCol string) (*YieldTotals, error) {
	ti, err := t.columnIndex(totalCol)
	if err != nil {
		return nil, err
	}
	di, err := t.columnIndex(defectiveCol)
	if err != nil {
		return nil, err
	}

	totals := &YieldTotals{}
	for rowNum, row := range t.Rows {
		total, err := t.intCell(row, ti, totalCol, rowNum)
		if err != nil {
			return nil, err
		}
		defective, err := t.intCell(row, di, defectiveCol, rowNum)
		if err != nil {
			return nil, err
		}
		totals.TotalUnits += total
		totals.DefectiveUnits += defective
	}
	return totals, nil
}

// ExtractStages reads one production stage per row
func (t *Table) ExtractStages(stageCol, inputCol, outputCol string) ([]analysis.ProductionStage, error) {
	si, err := t.columnIndex(stageCol)
	if err != nil {
		return nil, err
	}
	ii, err := t.columnIndex(inputCol)
	if err != nil {
		return nil, err
	}
	oi, err := t.columnIndex(outputCol)
	if err != nil {
		return nil, err
	}

	stages := make([]analysis.ProductionStage, 0, len(t.Rows))
	for rowNum, row := range t.Rows {
		name := t.cell(row, si)
		if name == "" {
			return nil, mcperrors.NewParseErrorf("Row %d has an empty %q cell.", rowNum+2, stageCol)
		}
		in, err := t.intCell(row, ii, inputCol, rowNum)
		if err != nil {
			return nil, err
		}
		out, err := t.intCell(row, oi, outputCol, rowNum)
		if err != nil {
			return nil, err
		}
		stages = append(stages, analysis.ProductionStage{StageName: name, InputUnits: in, OutputUnits: out})
	}
	return stages, nil
}

// ExtractSeries reads a numeric column as a series of data points
func (t *Table) ExtractSeries(valueCol string) ([]float64, error) {
	vi, err := t.columnIndex(valueCol)
	if err != nil {
		return nil, err
	}

	series := make([]float64, 0, len(t.Rows))
	for rowNum, row := range t.Rows {
		raw := t.cell(row, vi)
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, mcperrors.NewParseErrorf(
				"Row %d: value %q in column %q is not numeric.", rowNum+2, raw, valueCol)
		}
		series = append(series, v)
	}
	return series, nil
}

// ExtractEvents reads one event per row for failure-pattern analysis.
// Timestamps are passed through as strings; the failure-pattern miner owns
// timestamp parsing.
func (t *Table) ExtractEvents(timestampCol, eventTypeCol, itemIDCol string) ([]analysis.Event, error) {
	tsi, err := t.columnIndex(timestampCol)
	if err != nil {
		return nil, err
	}
	eti, err := t.columnIndex(eventTypeCol)
	if err != nil {
		return nil, err
	}
	idi, err := t.columnIndex(itemIDCol)
	if err != nil {
		return nil, err
	}

	events := make([]analysis.Event, 0, len(t.Rows))
	for rowNum, row := range t.Rows {
		event := analysis.Event{
			Timestamp: t.cell(row, tsi),
			EventType: t.cell(row, eti),
			ItemID:    t.cell(row, idi),
		}
		if event.Timestamp == "" || event.EventType == "" || event.ItemID == "" {
			return nil, mcperrors.NewParseErrorf("Row %d is missing a timestamp, event type, or item ID.", rowNum+2)
		}
		events = append(events, event)
	}
	return events, nil
}

func (t *Table) intCell(row []string, col int, colName string, rowNum int) (int, error) {
	raw := t.cell(row, col)
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, mcperrors.NewParseError(fmt.Sprintf(
			"Row %d: value %q in column %q is not an integer.", rowNum+2, raw, colName))
	}
	return v, nil
}
