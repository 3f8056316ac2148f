package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// GetArgument defines review request lookup parameters.
type GetArgument struct {
	RequestID int64 `json:"request_id" jsonschema_description:"Review request id"`
}

// GetHandler handles the review request detail MCP tool.
type GetHandler struct {
	service *Service
}

// NewGetHandler creates a new detail handler.
func NewGetHandler(service *Service) *GetHandler {
	return &GetHandler{service: service}
}

// Handle looks up one review request and returns its details.
func (h *GetHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args GetArgument) (*mcp.CallToolResult, any, error) {
	if args.RequestID <= 0 {
		return errorResult("request_id must be a positive integer"), nil, nil
	}

	request, err := h.service.GetRequest(ctx, args.RequestID)
	if err != nil {
		return errorResult(fmt.Sprintf("Lookup failed: %s", err)), nil, nil
	}
	if request == nil {
		return errorResult(fmt.Sprintf("Review request not found: %d", args.RequestID)), nil, nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Review request #%d: %s\n\n", request.ID, request.Summary))
	sb.WriteString(fmt.Sprintf("**Status**: %s\n", request.Status))
	sb.WriteString(fmt.Sprintf("**Submitter**: %s (%s)\n", request.SubmitterUsername, request.SubmitterFullName))
	if request.Changenum != 0 {
		sb.WriteString(fmt.Sprintf("**Change**: %d\n", request.Changenum))
	}
	if request.BugsClosed != "" {
		sb.WriteString(fmt.Sprintf("**Bugs**: %s\n", request.BugsClosed))
	}
	sb.WriteString(fmt.Sprintf("**Last updated**: %s\n", request.LastUpdated.Format("2006-01-02 15:04:05 MST")))

	if request.Description != "" {
		sb.WriteString("\n## Description\n\n")
		sb.WriteString(request.Description)
		sb.WriteString("\n")
	}
	if request.TestingDone != "" {
		sb.WriteString("\n## Testing done\n\n")
		sb.WriteString(request.TestingDone)
		sb.WriteString("\n")
	}

	return textResult(sb.String()), nil, nil
}

// GetToolDefinition returns the MCP tool definition.
func (h *GetHandler) GetToolDefinition() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_review_request",
		Description: "Fetch the details of one code review request by id",
	}
}

// RegisterGetTool registers the detail tool with an MCP server.
func RegisterGetTool(server *mcp.Server, service *Service) {
	handler := NewGetHandler(service)
	mcp.AddTool(server, handler.GetToolDefinition(), handler.Handle)
}
