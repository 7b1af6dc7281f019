package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/prodsight/yield-mcp-server/internal/analysis"
	"github.com/prodsight/yield-mcp-server/internal/config"
)

// AddActionItemTool records a new corrective action in the session ledger
type AddActionItemTool struct {
	*BaseTool
}

// NewAddActionItemTool creates a new tool instance
func NewAddActionItemTool(cfg *config.Config, logger *zap.Logger) *AddActionItemTool {
	return &AddActionItemTool{BaseTool: NewBaseTool(cfg, logger)}
}

// Name returns the tool name
func (t *AddActionItemTool) Name() string {
	return "add_action_item"
}

// Annotations returns tool hints for LLMs
func (t *AddActionItemTool) Annotations() *mcp.ToolAnnotations {
	return CreateAnnotations("Add Action Item")
}

// Description returns the tool description
func (t *AddActionItemTool) Description() string {
	return `Record a corrective action item in this conversation's ledger.

**When to use:**
- An analysis or root cause discussion has produced a concrete follow-up
- The user asks to track a task

**Returns:** the created item with its generated ID, status (default
"open"), and timestamps. Use the ID later with update_action_item_status.`
}

// InputSchema returns the input schema
func (t *AddActionItemTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"description": map[string]interface{}{
				"type":        "string",
				"description": "What needs to be done",
			},
			"owner": map[string]interface{}{
				"type":        "string",
				"description": "Optional person or team responsible",
			},
			"status": map[string]interface{}{
				"type":        "string",
				"description": "Initial status (default 'open')",
			},
		},
		"required": []string{"description"},
	}
}

// Execute executes the tool
func (t *AddActionItemTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	st, err := SessionFromContext(ctx)
	if err != nil {
		return nil, err
	}

	description, err := GetStringParam(arguments, "description", true)
	if err != nil {
		return InvalidParamsResult(err), nil
	}
	owner, err := GetStringParam(arguments, "owner", false)
	if err != nil {
		return InvalidParamsResult(err), nil
	}
	status, err := GetStringParam(arguments, "status", false)
	if err != nil {
		return InvalidParamsResult(err), nil
	}
	if _, present := arguments["status"]; !present {
		status = analysis.DefaultActionItemStatus
	}

	item, err := analysis.AddActionItem(st, description, owner, status)
	if err != nil {
		return ErrorResult(err), nil
	}
	return FormatJSONResult(item)
}

// ListActionItemsTool lists ledger entries with optional filters
type ListActionItemsTool struct {
	*BaseTool
}

// NewListActionItemsTool creates a new tool instance
func NewListActionItemsTool(cfg *config.Config, logger *zap.Logger) *ListActionItemsTool {
	return &ListActionItemsTool{BaseTool: NewBaseTool(cfg, logger)}
}

// Name returns the tool name
func (t *ListActionItemsTool) Name() string {
	return "list_action_items"
}

// Annotations returns tool hints for LLMs
func (t *ListActionItemsTool) Annotations() *mcp.ToolAnnotations {
	return ReadOnlyAnnotations("List Action Items")
}

// Description returns the tool description
func (t *ListActionItemsTool) Description() string {
	return `List the action items recorded in this conversation.

**When to use:**
- The user asks what's open, or wants to review tracked tasks
- Before updating a status, to find the item's ID

**Returns:** matching items in creation order. Both filters are optional
case-insensitive exact matches; with no filters every item is returned.
An empty list means nothing matched (or nothing was recorded).`
}

// InputSchema returns the input schema
func (t *ListActionItemsTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"status_filter": map[string]interface{}{
				"type":        "string",
				"description": "Only items with this status (e.g. 'open', 'done')",
			},
			"owner_filter": map[string]interface{}{
				"type":        "string",
				"description": "Only items with this owner",
			},
		},
	}
}

// Execute executes the tool
func (t *ListActionItemsTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	st, err := SessionFromContext(ctx)
	if err != nil {
		return nil, err
	}

	statusFilter, err := GetStringParam(arguments, "status_filter", false)
	if err != nil {
		return InvalidParamsResult(err), nil
	}
	ownerFilter, err := GetStringParam(arguments, "owner_filter", false)
	if err != nil {
		return InvalidParamsResult(err), nil
	}

	items, err := analysis.ListActionItems(st, statusFilter, ownerFilter)
	if err != nil {
		return ErrorResult(err), nil
	}
	return FormatJSONResult(map[string]interface{}{
		"action_items": items,
		"count":        len(items),
	})
}

// UpdateActionItemStatusTool changes the status of an existing action item
type UpdateActionItemStatusTool struct {
	*BaseTool
}

// NewUpdateActionItemStatusTool creates a new tool instance
func NewUpdateActionItemStatusTool(cfg *config.Config, logger *zap.Logger) *UpdateActionItemStatusTool {
	return &UpdateActionItemStatusTool{BaseTool: NewBaseTool(cfg, logger)}
}

// Name returns the tool name
func (t *UpdateActionItemStatusTool) Name() string {
	return "update_action_item_status"
}

// Annotations returns tool hints for LLMs
func (t *UpdateActionItemStatusTool) Annotations() *mcp.ToolAnnotations {
	return UpdateAnnotations("Update Action Item Status")
}

// Description returns the tool description
func (t *UpdateActionItemStatusTool) Description() string {
	return `Update the status of an action item by its ID.

**When to use:**
- The user reports progress on a tracked task ("mark X done", "that's in progress")

**Returns:** the updated item. Only status and updated_at change; the
description and owner are immutable. Use list_action_items first if you
don't have the ID.`
}

// InputSchema returns the input schema
func (t *UpdateActionItemStatusTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"action_id": map[string]interface{}{
				"type":        "string",
				"description": "ID returned by add_action_item",
			},
			"new_status": map[string]interface{}{
				"type":        "string",
				"description": "The new status (e.g. 'in_progress', 'done')",
			},
		},
		"required": []string{"action_id", "new_status"},
	}
}

// Execute executes the tool
func (t *UpdateActionItemStatusTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	st, err := SessionFromContext(ctx)
	if err != nil {
		return nil, err
	}

	actionID, err := GetStringParam(arguments, "action_id", true)
	if err != nil {
		return InvalidParamsResult(err), nil
	}
	newStatus, err := GetStringParam(arguments, "new_status", true)
	if err != nil {
		return InvalidParamsResult(err), nil
	}

	item, err := analysis.UpdateActionItemStatus(st, actionID, newStatus)
	if err != nil {
		return ErrorResult(err), nil
	}
	return FormatJSONResult(item)
}
