package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/prodsight/yield-mcp-server/internal/config"
)

// defaultSessionRecordLimit bounds how many recent records per topic the
// session-context tool returns
const defaultSessionRecordLimit = 10

// GetSessionContextTool exposes what has been recorded in the session so far
type GetSessionContextTool struct {
	*BaseTool
}

// NewGetSessionContextTool creates a new tool instance
func NewGetSessionContextTool(cfg *config.Config, logger *zap.Logger) *GetSessionContextTool {
	return &GetSessionContextTool{BaseTool: NewBaseTool(cfg, logger)}
}

// Name returns the tool name
func (t *GetSessionContextTool) Name() string {
	return "get_session_context"
}

// Annotations returns tool hints for LLMs
func (t *GetSessionContextTool) Annotations() *mcp.ToolAnnotations {
	return ReadOnlyAnnotations("Get Session Context")
}

// Description returns the tool description
func (t *GetSessionContextTool) Description() string {
	return `Review what has been analyzed so far in this conversation.

**When to use:**
- The user refers back to an earlier result ("that yield we calculated")
- To check which analyses have run before synthesizing suggestions

**Returns:** session statistics (topic record counts, tool calls, age) and
the most recent records per topic. Pass a topic to see only that topic's
records, or raise the limit for more history.`
}

// InputSchema returns the input schema
func (t *GetSessionContextTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"topic": map[string]interface{}{
				"type":        "string",
				"description": "Only return records for this topic (e.g. 'calculations', 'action_items')",
			},
			"limit": map[string]interface{}{
				"type":        "integer",
				"description": "Max recent records per topic (default 10)",
			},
		},
	}
}

// Execute executes the tool
func (t *GetSessionContextTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	st, err := SessionFromContext(ctx)
	if err != nil {
		return nil, err
	}

	topic, err := GetStringParam(arguments, "topic", false)
	if err != nil {
		return InvalidParamsResult(err), nil
	}
	limit, present, err := GetIntParam(arguments, "limit", false)
	if err != nil {
		return InvalidParamsResult(err), nil
	}
	if !present || limit <= 0 {
		limit = defaultSessionRecordLimit
	}

	topics := st.Topics()
	if topic != "" {
		topics = []string{topic}
	}

	recent := make(map[string]interface{}, len(topics))
	for _, name := range topics {
		records := st.Records(name)
		if len(records) > limit {
			records = records[len(records)-limit:]
		}
		recent[name] = records
	}

	return FormatJSONResult(map[string]interface{}{
		"stats":          st.Stats(),
		"recent_records": recent,
	})
}
