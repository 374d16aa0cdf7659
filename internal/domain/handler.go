package domain

import (
	"context"
)

// ToolHandler processes requests for a single remote service.
// The JIRA and Bitbucket handlers each implement this interface.
type ToolHandler interface {
	// Handle processes an MCP tool call request.
	// Returns the tool response or an error if processing fails.
	Handle(ctx context.Context, req *ToolRequest) (*ToolResponse, error)

	// ListTools returns the tool definitions exposed by this handler.
	// Each tool represents a single remote operation (e.g., jira_get_issue).
	ListTools() []ToolDefinition

	// ToolName returns the identifier for this handler.
	// This is used for routing requests to the appropriate handler.
	ToolName() string
}
