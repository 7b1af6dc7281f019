package tabular

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	mcperrors "github.com/prodsight/yield-mcp-server/internal/errors"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func writeXLSX(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func TestReadCSV(t *testing.T) {
	path := writeCSV(t, "stage, input, output\nAssembly, 100, 85\nSoldering, 85, 84\n")

	table, err := ReadCSV(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"stage", "input", "output"}, table.Header)
	require.Len(t, table.Rows, 2)
}

func TestReadCSV_Errors(t *testing.T) {
	_, err := ReadCSV(filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
	assert.Equal(t, mcperrors.CodeParseError, mcperrors.CodeOf(err))

	// Header only, no data rows
	path := writeCSV(t, "a,b,c\n")
	_, err = ReadCSV(path)
	assert.Error(t, err)
}

func TestExtractYieldTotals(t *testing.T) {
	path := writeCSV(t, "date,total,defective\n2026-01-01,100,10\n2026-01-02,200,5\n")
	table, err := ReadCSV(path)
	require.NoError(t, err)

	totals, err := table.ExtractYieldTotals("Total", "Defective")
	require.NoError(t, err)
	assert.Equal(t, 300, totals.TotalUnits)
	assert.Equal(t, 15, totals.DefectiveUnits)
}

func TestExtractStages(t *testing.T) {
	path := writeCSV(t, "stage,input,output\nAssembly,100,85\nCoating,85,80\n")
	table, err := ReadCSV(path)
	require.NoError(t, err)

	stages, err := table.ExtractStages("stage", "input", "output")
	require.NoError(t, err)
	require.Len(t, stages, 2)
	assert.Equal(t, "Assembly", stages[0].StageName)
	assert.Equal(t, 100, stages[0].InputUnits)
	assert.Equal(t, 85, stages[0].OutputUnits)
}

func TestExtractSeries(t *testing.T) {
	path := writeCSV(t, "day,temp\n1,24.5\n2,25.0\n3,24.8\n")
	table, err := ReadCSV(path)
	require.NoError(t, err)

	series, err := table.ExtractSeries("temp")
	require.NoError(t, err)
	assert.Equal(t, []float64{24.5, 25.0, 24.8}, series)
}

func TestExtractSeries_NonNumeric(t *testing.T) {
	path := writeCSV(t, "day,temp\n1,hot\n")
	table, err := ReadCSV(path)
	require.NoError(t, err)

	_, err = table.ExtractSeries("temp")
	require.Error(t, err)
	// Row numbering counts the header as row 1
	assert.Contains(t, err.Error(), "Row 2")
}

func TestExtractEvents(t *testing.T) {
	path := writeCSV(t, "when,type,item\n2026-01-01T00:00:00Z,maintenance_completed,press-1\n2026-01-01T02:00:00Z,motor_failure,press-1\n")
	table, err := ReadCSV(path)
	require.NoError(t, err)

	events, err := table.ExtractEvents("when", "type", "item")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "motor_failure", events[1].EventType)
	assert.Equal(t, "press-1", events[1].ItemID)
}

func TestColumnNotFound(t *testing.T) {
	path := writeCSV(t, "a,b\n1,2\n")
	table, err := ReadCSV(path)
	require.NoError(t, err)

	_, err = table.ExtractSeries("c")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "available columns: a, b")
}

func TestReadXLSX(t *testing.T) {
	path := writeXLSX(t, [][]interface{}{
		{"stage", "input", "output"},
		{"Assembly", 100, 85},
		{"Coating", 85, 80},
	})

	table, err := ReadXLSX(path, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"stage", "input", "output"}, table.Header)

	stages, err := table.ExtractStages("stage", "input", "output")
	require.NoError(t, err)
	require.Len(t, stages, 2)
	assert.Equal(t, "Coating", stages[1].StageName)
}

func TestReadXLSX_MissingSheet(t *testing.T) {
	path := writeXLSX(t, [][]interface{}{
		{"a"},
		{"1"},
	})

	_, err := ReadXLSX(path, "NoSuchSheet")
	assert.Error(t, err)
}
