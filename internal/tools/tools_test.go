package tools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/prodsight/yield-mcp-server/internal/analysis"
	"github.com/prodsight/yield-mcp-server/internal/config"
	"github.com/prodsight/yield-mcp-server/internal/session"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func testContext(st *session.State) context.Context {
	return WithSession(context.Background(), st)
}

// resultText extracts the text payload of a tool result
func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

// resultJSON unmarshals the text payload of a tool result
func resultJSON(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &decoded))
	return decoded
}

func TestCalculateYieldMetricsTool_Execute(t *testing.T) {
	st := session.New()
	tool := NewCalculateYieldMetricsTool(testConfig(t), zap.NewNop())

	result, err := tool.Execute(testContext(st), map[string]interface{}{
		"total_units":     float64(100),
		"defective_units": float64(10),
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	payload := resultJSON(t, result)
	assert.Equal(t, 0.9, payload["yield_rate"])
	assert.Equal(t, 0.1, payload["defect_rate"])

	assert.Equal(t, 1, st.Count(analysis.TopicCalculations))
}

func TestCalculateYieldMetricsTool_ValidationError(t *testing.T) {
	st := session.New()
	tool := NewCalculateYieldMetricsTool(testConfig(t), zap.NewNop())

	result, err := tool.Execute(testContext(st), map[string]interface{}{
		"total_units":     float64(0),
		"defective_units": float64(0),
	})
	require.NoError(t, err, "validation failures are results, not errors")
	require.True(t, result.IsError)

	payload := resultJSON(t, result)
	assert.Equal(t, "INVALID_INPUT", payload["code"])
	assert.Equal(t, "Total units must be a positive number.", payload["message"])
}

func TestCalculateYieldMetricsTool_NoSession(t *testing.T) {
	tool := NewCalculateYieldMetricsTool(testConfig(t), zap.NewNop())

	_, err := tool.Execute(context.Background(), map[string]interface{}{
		"total_units":     float64(100),
		"defective_units": float64(10),
	})
	assert.ErrorIs(t, err, ErrNoSessionInContext)
}

func TestIdentifyLowYieldStagesTool_Execute(t *testing.T) {
	st := session.New()
	tool := NewIdentifyLowYieldStagesTool(testConfig(t), zap.NewNop())

	result, err := tool.Execute(testContext(st), map[string]interface{}{
		"production_data_per_stage": []interface{}{
			map[string]interface{}{"stage_name": "Assembly", "input_units": float64(100), "output_units": float64(85)},
			map[string]interface{}{"stage_name": "Coating", "input_units": float64(100), "output_units": float64(95)},
		},
		"yield_threshold": 0.9,
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	payload := resultJSON(t, result)
	stages := payload["low_yield_stages"].([]interface{})
	require.Len(t, stages, 1)
	assert.Equal(t, "Assembly", stages[0].(map[string]interface{})["stage_name"])
}

func TestIdentifyLowYieldStagesTool_NamesOffendingStage(t *testing.T) {
	st := session.New()
	tool := NewIdentifyLowYieldStagesTool(testConfig(t), zap.NewNop())

	result, err := tool.Execute(testContext(st), map[string]interface{}{
		"production_data_per_stage": []interface{}{
			map[string]interface{}{"stage_name": "Coating", "input_units": 10.5, "output_units": float64(9)},
		},
		"yield_threshold": 0.9,
	})
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Coating")
}

func TestIdentifyLowYieldStagesTool_MissingField(t *testing.T) {
	st := session.New()
	tool := NewIdentifyLowYieldStagesTool(testConfig(t), zap.NewNop())

	result, err := tool.Execute(testContext(st), map[string]interface{}{
		"production_data_per_stage": []interface{}{
			map[string]interface{}{"stage_name": "Assembly", "input_units": float64(100)},
		},
		"yield_threshold": 0.9,
	})
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "output_units")
}

func TestActionItemTools_Flow(t *testing.T) {
	st := session.New()
	cfg := testConfig(t)
	ctx := testContext(st)

	addTool := NewAddActionItemTool(cfg, zap.NewNop())
	result, err := addTool.Execute(ctx, map[string]interface{}{
		"description": "Replace worn stencil",
		"owner":       "maintenance",
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	created := resultJSON(t, result)
	assert.Equal(t, "open", created["status"], "status defaults to open")
	id := created["id"].(string)
	require.NotEmpty(t, id)

	listTool := NewListActionItemsTool(cfg, zap.NewNop())
	result, err = listTool.Execute(ctx, map[string]interface{}{"status_filter": "open"})
	require.NoError(t, err)
	listed := resultJSON(t, result)
	assert.Equal(t, float64(1), listed["count"])

	updateTool := NewUpdateActionItemStatusTool(cfg, zap.NewNop())
	result, err = updateTool.Execute(ctx, map[string]interface{}{
		"action_id":  id,
		"new_status": "done",
	})
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Equal(t, "done", resultJSON(t, result)["status"])

	result, err = updateTool.Execute(ctx, map[string]interface{}{
		"action_id":  "no-such-id",
		"new_status": "done",
	})
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Equal(t, "RESOURCE_NOT_FOUND", resultJSON(t, result)["code"])
}

func TestGuideRootCauseAnalysisTool_Execute(t *testing.T) {
	st := session.New()
	tool := NewGuideRootCauseAnalysisTool(testConfig(t), zap.NewNop())

	result, err := tool.Execute(testContext(st), map[string]interface{}{
		"problem_statement": "High scrap rate",
		"previous_whys": []interface{}{
			map[string]interface{}{
				"why_question": "Why is 'High scrap rate' happening?",
				"user_answer":  "Oven temperature drifts",
			},
		},
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	payload := resultJSON(t, result)
	assert.Equal(t, "Why did 'Oven temperature drifts' occur?", payload["next_prompt_for_user"])
	assert.Equal(t, float64(2), payload["depth"])
	assert.Equal(t, false, payload["concluded"])
}

func TestDetectSimpleAnomaliesTool_Execute(t *testing.T) {
	st := session.New()
	tool := NewDetectSimpleAnomaliesTool(testConfig(t), zap.NewNop())

	result, err := tool.Execute(testContext(st), map[string]interface{}{
		"data_points":              []interface{}{float64(10), float64(10), float64(10), float64(200), float64(10)},
		"window_size":              float64(3),
		"std_dev_threshold":        float64(1),
		"absolute_upper_threshold": float64(100),
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	payload := resultJSON(t, result)
	anomalies := payload["anomalies"].([]interface{})
	require.NotEmpty(t, anomalies)

	params := payload["parameters_used"].(map[string]interface{})
	assert.Equal(t, float64(3), params["window_size"])
	assert.Equal(t, float64(100), params["absolute_upper_threshold"])
}

func TestQueryKnowledgeBaseTool_Execute(t *testing.T) {
	st := session.New()
	cfg := testConfig(t)
	cfg.KBPath = filepath.Join(t.TempDir(), "kb.json")
	require.NoError(t, os.WriteFile(cfg.KBPath, []byte(`[
		{"keywords": ["solder"], "problem_summary": "Solder bridging", "causes": [], "solutions": []}
	]`), 0o600))

	tool := NewQueryKnowledgeBaseTool(cfg, zap.NewNop())
	result, err := tool.Execute(testContext(st), map[string]interface{}{
		"keywords": []interface{}{"solder"},
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	payload := resultJSON(t, result)
	assert.Equal(t, true, payload["found"])
}

func TestQueryKnowledgeBaseTool_MissingCatalog(t *testing.T) {
	st := session.New()
	cfg := testConfig(t)
	cfg.KBPath = filepath.Join(t.TempDir(), "absent.json")

	tool := NewQueryKnowledgeBaseTool(cfg, zap.NewNop())
	result, err := tool.Execute(testContext(st), map[string]interface{}{
		"keywords": []interface{}{"solder"},
	})
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Equal(t, "CONFIG_ERROR", resultJSON(t, result)["code"])
}

func TestReadCSVDataTool_ExtractModes(t *testing.T) {
	st := session.New()
	tool := NewReadCSVDataTool(testConfig(t), zap.NewNop())

	path := filepath.Join(t.TempDir(), "stages.csv")
	require.NoError(t, os.WriteFile(path,
		[]byte("stage,input,output\nAssembly,100,85\n"), 0o600))

	result, err := tool.Execute(testContext(st), map[string]interface{}{
		"file_path":           path,
		"extract":             "stages",
		"stage_name_column":   "stage",
		"input_units_column":  "input",
		"output_units_column": "output",
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	payload := resultJSON(t, result)
	stages := payload["production_data_per_stage"].([]interface{})
	require.Len(t, stages, 1)

	// Unknown extract mode is a validation failure
	result, err = tool.Execute(testContext(st), map[string]interface{}{
		"file_path": path,
		"extract":   "everything",
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)

	// Missing column parameter for the chosen mode
	result, err = tool.Execute(testContext(st), map[string]interface{}{
		"file_path": path,
		"extract":   "series",
	})
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "value_column")
}

func TestGetSessionContextTool_Execute(t *testing.T) {
	st := session.New()
	st.Append(analysis.TopicCalculations, session.Record{"yield_rate": 0.9})
	st.Append(analysis.TopicCalculations, session.Record{"yield_rate": 0.95})

	tool := NewGetSessionContextTool(testConfig(t), zap.NewNop())
	result, err := tool.Execute(testContext(st), map[string]interface{}{
		"topic": analysis.TopicCalculations,
		"limit": float64(1),
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	payload := resultJSON(t, result)
	recent := payload["recent_records"].(map[string]interface{})
	records := recent[analysis.TopicCalculations].([]interface{})
	require.Len(t, records, 1)
	assert.Equal(t, 0.95, records[0].(map[string]interface{})["yield_rate"], "most recent record wins")
}

func TestToolSchemas(t *testing.T) {
	cfg := testConfig(t)
	logger := zap.NewNop()

	allTools := []Tool{
		NewCalculateYieldMetricsTool(cfg, logger),
		NewIdentifyLowYieldStagesTool(cfg, logger),
		NewCalculateSPCMetricsTool(cfg, logger),
		NewIdentifyOutOfControlPointsTool(cfg, logger),
		NewDetectSimpleAnomaliesTool(cfg, logger),
		NewIdentifyFailurePatternsTool(cfg, logger),
		NewGuideRootCauseAnalysisTool(cfg, logger),
		NewAddActionItemTool(cfg, logger),
		NewListActionItemsTool(cfg, logger),
		NewUpdateActionItemStatusTool(cfg, logger),
		NewQueryKnowledgeBaseTool(cfg, logger),
		NewSuggestImprovementActionsTool(cfg, logger),
		NewReadCSVDataTool(cfg, logger),
		NewReadExcelDataTool(cfg, logger),
		NewGetSessionContextTool(cfg, logger),
	}

	seen := map[string]bool{}
	for _, tool := range allTools {
		assert.NotEmpty(t, tool.Name())
		assert.False(t, seen[tool.Name()], "duplicate tool name %s", tool.Name())
		seen[tool.Name()] = true

		assert.NotEmpty(t, tool.Description())
		require.NotNil(t, tool.Annotations())
		assert.NotEmpty(t, tool.Annotations().Title)

		schema, ok := tool.InputSchema().(map[string]interface{})
		require.True(t, ok, "%s schema must be an object", tool.Name())
		assert.Equal(t, "object", schema["type"])
		_, hasProps := schema["properties"]
		assert.True(t, hasProps, "%s schema must declare properties", tool.Name())
	}
}
