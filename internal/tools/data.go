package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/prodsight/yield-mcp-server/internal/config"
	mcperrors "github.com/prodsight/yield-mcp-server/internal/errors"
	"github.com/prodsight/yield-mcp-server/internal/tabular"
)

// Extraction modes for the data-reading tools
const (
	extractYieldTotals = "yield_totals"
	extractStages      = "stages"
	extractSeries      = "series"
	extractEvents      = "events"
)

// dataSchemaProperties is shared between the CSV and Excel tools; the
// Excel tool adds sheet_name on top.
func dataSchemaProperties(fileDescription string) map[string]interface{} {
	return map[string]interface{}{
		"file_path": map[string]interface{}{
			"type":        "string",
			"description": fileDescription,
		},
		"extract": map[string]interface{}{
			"type":        "string",
			"enum":        []string{extractYieldTotals, extractStages, extractSeries, extractEvents},
			"description": "What to extract: overall unit totals, per-stage records, a numeric series, or event rows",
		},
		"total_units_column": map[string]interface{}{
			"type":        "string",
			"description": "Column with total units (extract=yield_totals)",
		},
		"defective_units_column": map[string]interface{}{
			"type":        "string",
			"description": "Column with defective units (extract=yield_totals)",
		},
		"stage_name_column": map[string]interface{}{
			"type":        "string",
			"description": "Column with stage names (extract=stages)",
		},
		"input_units_column": map[string]interface{}{
			"type":        "string",
			"description": "Column with stage input units (extract=stages)",
		},
		"output_units_column": map[string]interface{}{
			"type":        "string",
			"description": "Column with stage output units (extract=stages)",
		},
		"value_column": map[string]interface{}{
			"type":        "string",
			"description": "Numeric column to read as a series (extract=series)",
		},
		"timestamp_column": map[string]interface{}{
			"type":        "string",
			"description": "Column with event timestamps (extract=events)",
		},
		"event_type_column": map[string]interface{}{
			"type":        "string",
			"description": "Column with event types (extract=events)",
		},
		"item_id_column": map[string]interface{}{
			"type":        "string",
			"description": "Column with equipment item IDs (extract=events)",
		},
	}
}

// extractFromTable dispatches on the extract mode, pulling the column
// parameters that mode requires.
func extractFromTable(table *tabular.Table, extract string, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	requireColumn := func(key string) (string, error) {
		col, err := GetStringParam(arguments, key, true)
		if err != nil {
			return "", mcperrors.NewInvalidInputf("Extraction %q requires the %q parameter.", extract, key)
		}
		return col, nil
	}

	switch extract {
	case extractYieldTotals:
		totalCol, err := requireColumn("total_units_column")
		if err != nil {
			return ErrorResult(err), nil
		}
		defectiveCol, err := requireColumn("defective_units_column")
		if err != nil {
			return ErrorResult(err), nil
		}
		totals, err := table.ExtractYieldTotals(totalCol, defectiveCol)
		if err != nil {
			return ErrorResult(err), nil
		}
		return FormatJSONResult(totals)

	case extractStages:
		stageCol, err := requireColumn("stage_name_column")
		if err != nil {
			return ErrorResult(err), nil
		}
		inputCol, err := requireColumn("input_units_column")
		if err != nil {
			return ErrorResult(err), nil
		}
		outputCol, err := requireColumn("output_units_column")
		if err != nil {
			return ErrorResult(err), nil
		}
		stages, err := table.ExtractStages(stageCol, inputCol, outputCol)
		if err != nil {
			return ErrorResult(err), nil
		}
		return FormatJSONResult(map[string]interface{}{"production_data_per_stage": stages})

	case extractSeries:
		valueCol, err := requireColumn("value_column")
		if err != nil {
			return ErrorResult(err), nil
		}
		series, err := table.ExtractSeries(valueCol)
		if err != nil {
			return ErrorResult(err), nil
		}
		return FormatJSONResult(map[string]interface{}{"data_points": series})

	case extractEvents:
		tsCol, err := requireColumn("timestamp_column")
		if err != nil {
			return ErrorResult(err), nil
		}
		typeCol, err := requireColumn("event_type_column")
		if err != nil {
			return ErrorResult(err), nil
		}
		idCol, err := requireColumn("item_id_column")
		if err != nil {
			return ErrorResult(err), nil
		}
		events, err := table.ExtractEvents(tsCol, typeCol, idCol)
		if err != nil {
			return ErrorResult(err), nil
		}
		return FormatJSONResult(map[string]interface{}{"event_data": events})

	default:
		return ErrorResult(mcperrors.NewInvalidInputf(
			"Unknown extraction %q; expected one of: yield_totals, stages, series, events.", extract)), nil
	}
}

// ReadCSVDataTool reads production data from a CSV file
type ReadCSVDataTool struct {
	*BaseTool
}

// NewReadCSVDataTool creates a new tool instance
func NewReadCSVDataTool(cfg *config.Config, logger *zap.Logger) *ReadCSVDataTool {
	return &ReadCSVDataTool{BaseTool: NewBaseTool(cfg, logger)}
}

// Name returns the tool name
func (t *ReadCSVDataTool) Name() string {
	return "read_csv_data"
}

// Annotations returns tool hints for LLMs
func (t *ReadCSVDataTool) Annotations() *mcp.ToolAnnotations {
	return FileAnnotations("Read CSV Data")
}

// Description returns the tool description
func (t *ReadCSVDataTool) Description() string {
	return `Read production data from a CSV file into a shape the analysis tools accept.

**When to use:**
- The user's data lives in a CSV file rather than in the conversation
- Ask the user which columns hold what before calling

**Returns:** depends on 'extract': overall unit totals (for
calculate_yield_metrics), per-stage records (for identify_low_yield_stages),
a numeric series (for SPC and anomaly tools), or event rows (for
identify_failure_patterns). The first row must be a header.`
}

// InputSchema returns the input schema
func (t *ReadCSVDataTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": dataSchemaProperties("Path to the CSV file"),
		"required":   []string{"file_path", "extract"},
	}
}

// Execute executes the tool
func (t *ReadCSVDataTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	filePath, err := GetStringParam(arguments, "file_path", true)
	if err != nil {
		return InvalidParamsResult(err), nil
	}
	extract, err := GetStringParam(arguments, "extract", true)
	if err != nil {
		return InvalidParamsResult(err), nil
	}

	table, err := tabular.ReadCSV(filePath)
	if err != nil {
		return ErrorResult(err), nil
	}

	t.logger.Debug("read CSV file",
		zap.String("file_path", filePath),
		zap.String("extract", extract),
		zap.Int("rows", len(table.Rows)))

	return extractFromTable(table, extract, arguments)
}

// ReadExcelDataTool reads production data from an Excel workbook
type ReadExcelDataTool struct {
	*BaseTool
}

// NewReadExcelDataTool creates a new tool instance
func NewReadExcelDataTool(cfg *config.Config, logger *zap.Logger) *ReadExcelDataTool {
	return &ReadExcelDataTool{BaseTool: NewBaseTool(cfg, logger)}
}

// Name returns the tool name
func (t *ReadExcelDataTool) Name() string {
	return "read_excel_data"
}

// Annotations returns tool hints for LLMs
func (t *ReadExcelDataTool) Annotations() *mcp.ToolAnnotations {
	return FileAnnotations("Read Excel Data")
}

// Description returns the tool description
func (t *ReadExcelDataTool) Description() string {
	return `Read production data from an Excel (.xlsx) workbook into a shape the
analysis tools accept.

**When to use:**
- The user's data lives in a spreadsheet rather than in the conversation
- Ask the user which sheet and columns hold what before calling

**Returns:** same shapes as read_csv_data, selected by 'extract'. When
sheet_name is omitted the first sheet is read. The first row of the sheet
must be a header.`
}

// InputSchema returns the input schema
func (t *ReadExcelDataTool) InputSchema() interface{} {
	properties := dataSchemaProperties("Path to the .xlsx file")
	properties["sheet_name"] = map[string]interface{}{
		"type":        "string",
		"description": "Sheet to read (default: the first sheet)",
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   []string{"file_path", "extract"},
	}
}

// Execute executes the tool
func (t *ReadExcelDataTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	filePath, err := GetStringParam(arguments, "file_path", true)
	if err != nil {
		return InvalidParamsResult(err), nil
	}
	extract, err := GetStringParam(arguments, "extract", true)
	if err != nil {
		return InvalidParamsResult(err), nil
	}
	sheetName, err := GetStringParam(arguments, "sheet_name", false)
	if err != nil {
		return InvalidParamsResult(err), nil
	}

	table, err := tabular.ReadXLSX(filePath, sheetName)
	if err != nil {
		return ErrorResult(err), nil
	}

	t.logger.Debug("read Excel file",
		zap.String("file_path", filePath),
		zap.String("sheet_name", sheetName),
		zap.String("extract", extract),
		zap.Int("rows", len(table.Rows)))

	return extractFromTable(table, extract, arguments)
}
