package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/prodsight/yield-mcp-server/internal/config"
	"github.com/prodsight/yield-mcp-server/internal/kb"
)

// QueryKnowledgeBaseTool searches the problem/cause/solution catalog
type QueryKnowledgeBaseTool struct {
	*BaseTool
}

// NewQueryKnowledgeBaseTool creates a new tool instance
func NewQueryKnowledgeBaseTool(cfg *config.Config, logger *zap.Logger) *QueryKnowledgeBaseTool {
	return &QueryKnowledgeBaseTool{BaseTool: NewBaseTool(cfg, logger)}
}

// Name returns the tool name
func (t *QueryKnowledgeBaseTool) Name() string {
	return "query_knowledge_base"
}

// Annotations returns tool hints for LLMs
func (t *QueryKnowledgeBaseTool) Annotations() *mcp.ToolAnnotations {
	return ReadOnlyAnnotations("Query Knowledge Base")
}

// Description returns the tool description
func (t *QueryKnowledgeBaseTool) Description() string {
	return `Search the manufacturing knowledge base for known problems, causes,
and solutions.

**When to use:**
- The user describes a symptom (e.g. "solder bridging", "contamination")
- Before or alongside a root cause analysis, to surface known causes

**Returns:** matching catalog entries (keywords, problem summary, causes,
solutions) in catalog order. Keywords match case-insensitively as
substrings. No matches is a valid result, not an error.`
}

// InputSchema returns the input schema
func (t *QueryKnowledgeBaseTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"keywords": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Search terms, e.g. [\"solder\", \"bridging\"]",
			},
		},
		"required": []string{"keywords"},
	}
}

// Execute executes the tool
func (t *QueryKnowledgeBaseTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	st, err := SessionFromContext(ctx)
	if err != nil {
		return nil, err
	}

	keywords, err := GetStringListParam(arguments, "keywords", true)
	if err != nil {
		return InvalidParamsResult(err), nil
	}

	result, err := kb.Query(st, t.cfg.KBPath, keywords)
	if err != nil {
		return ErrorResult(err), nil
	}
	return FormatJSONResult(result)
}
