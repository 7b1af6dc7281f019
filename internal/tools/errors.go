package tools

import (
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	mcperrors "github.com/prodsight/yield-mcp-server/internal/errors"
)

// NewToolResultError creates a new tool result with an error message
func NewToolResultError(message string) *mcp.CallToolResult {
	if message == "" {
		message = "An unknown error occurred"
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{
				Text: message,
			},
		},
		IsError: true,
	}
}

// NewToolResultErrorWithSuggestion creates a tool result with an error and recovery guidance
func NewToolResultErrorWithSuggestion(message, suggestion string) *mcp.CallToolResult {
	fullMessage := fmt.Sprintf("%s\n\n💡 **Suggestion:** %s", message, suggestion)
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{
				Text: fullMessage,
			},
		},
		IsError: true,
	}
}

// ErrorResult converts an analysis error into a structured tool result the
// orchestrator can relay to the user. Structured errors are rendered as
// JSON (code, category, message, suggestion) so the orchestrator can
// branch on the code; plain errors fall back to their message.
func ErrorResult(err error) *mcp.CallToolResult {
	var se *mcperrors.StructuredError
	if errors.As(err, &se) {
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{
					Text: se.ToJSON(),
				},
			},
			IsError: true,
		}
	}
	return NewToolResultError(err.Error())
}

// InvalidParamsResult wraps a parameter extraction error as a validation
// failure result.
func InvalidParamsResult(err error) *mcp.CallToolResult {
	return ErrorResult(mcperrors.NewInvalidInput(err.Error()))
}
