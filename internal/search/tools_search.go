package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/revdex/revdex/internal/domain"
)

// SearchArgument defines search parameters.
type SearchArgument struct {
	Query    string `json:"query" jsonschema_description:"Search query (supports wildcards and phrases)"`
	Username string `json:"username,omitempty" jsonschema_description:"Filter by submitter username (exact match)"`
}

// SearchHandler handles the review search MCP tool.
type SearchHandler struct {
	service *Service
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(service *Service) *SearchHandler {
	return &SearchHandler{service: service}
}

// Handle executes the search and returns formatted results.
func (h *SearchHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args SearchArgument) (*mcp.CallToolResult, any, error) {
	if !h.service.IsReady() {
		return errorResult("Search is not available. Run the indexer first."), nil, nil
	}

	if strings.TrimSpace(args.Query) == "" {
		return errorResult("Query cannot be empty"), nil, nil
	}

	index, err := h.service.Index()
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to access index: %s", err)), nil, nil
	}

	searchReq := bleve.NewSearchRequest(h.buildQuery(args))
	searchReq.Size = h.service.MaxResults()
	searchReq.Fields = []string{domain.DocFieldID, domain.DocFieldSummary, domain.DocFieldUsername}
	searchReq.Highlight = bleve.NewHighlight()
	searchReq.Highlight.AddField(domain.DocFieldComment)

	results, err := index.Search(searchReq)
	if err != nil {
		return errorResult(fmt.Sprintf("Search failed: %s", err)), nil, nil
	}

	return h.formatResults(results, args.Query), nil, nil
}

// buildQuery constructs a Bleve query from search arguments.
func (h *SearchHandler) buildQuery(args SearchArgument) query.Query {
	// Catch-all text query, plus a boosted summary match so summary hits
	// rank first.
	textQuery := bleve.NewMatchQuery(args.Query)
	textQuery.SetField(domain.DocFieldText)

	summaryQuery := bleve.NewMatchQuery(args.Query)
	summaryQuery.SetField(domain.DocFieldSummary)
	summaryQuery.SetBoost(3.0)

	searchQuery := bleve.NewDisjunctionQuery(textQuery, summaryQuery)

	if args.Username == "" {
		return searchQuery
	}

	userQuery := bleve.NewTermQuery(args.Username)
	userQuery.SetField(domain.DocFieldUsername)
	return bleve.NewConjunctionQuery(searchQuery, userQuery)
}

// formatResults formats Bleve search results for the MCP response.
func (h *SearchHandler) formatResults(results *bleve.SearchResult, queryStr string) *mcp.CallToolResult {
	if results.Total == 0 {
		return textResult(fmt.Sprintf("No results found for query: %s", queryStr))
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d results for '%s':\n\n", results.Total, queryStr))

	for i, hit := range results.Hits {
		summary := ""
		username := ""
		if val, ok := hit.Fields[domain.DocFieldSummary].(string); ok {
			summary = val
		}
		if val, ok := hit.Fields[domain.DocFieldUsername].(string); ok {
			username = val
		}

		sb.WriteString(fmt.Sprintf("### %d. Review request #%s: %s\n", i+1, hit.ID, summary))
		sb.WriteString(fmt.Sprintf("**Submitter**: %s | **Score**: %.4f\n", username, hit.Score))

		if fragments, ok := hit.Fragments[domain.DocFieldComment]; ok && len(fragments) > 0 {
			sb.WriteString("\n")
			for _, fragment := range fragments {
				sb.WriteString("> ")
				sb.WriteString(fragment)
				sb.WriteString("\n")
			}
		}

		sb.WriteString("\n")
	}

	if results.Total > uint64(len(results.Hits)) {
		sb.WriteString(fmt.Sprintf("... and %d more results\n", results.Total-uint64(len(results.Hits))))
	}

	return textResult(sb.String())
}

// GetToolDefinition returns the MCP tool definition.
func (h *SearchHandler) GetToolDefinition() *mcp.Tool {
	return &mcp.Tool{
		Name:        "search_reviews",
		Description: "Search indexed code review requests using full-text search",
	}
}

// RegisterSearchTool registers the search tool with an MCP server.
func RegisterSearchTool(server *mcp.Server, service *Service) {
	handler := NewSearchHandler(service)
	mcp.AddTool(server, handler.GetToolDefinition(), handler.Handle)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}
