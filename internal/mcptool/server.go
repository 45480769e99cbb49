// Package mcptool exposes job search as an MCP tool over stdio.
package mcptool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/amishk599/jobfinder/internal/model"
)

// Searcher runs one search. *search.Service implements it.
type Searcher interface {
	Search(ctx context.Context, req model.SearchRequest) (*model.RankedResult, error)
}

// NewServer returns an MCP server with every tool registered.
func NewServer(searcher Searcher, version string) *server.MCPServer {
	s := server.NewMCPServer("jobfinder", version)
	registerSearchJobs(s, searcher)
	return s
}

// ServeStdio runs s on stdin/stdout until the client disconnects.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func registerSearchJobs(s *server.MCPServer, searcher Searcher) {
	tool := mcp.NewTool("search_jobs",
		mcp.WithDescription("Search LinkedIn, Indeed and Glassdoor for jobs matching a profile and return the most relevant ones, ranked by similarity (0-100)"),
	)
	tool.InputSchema = mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"position":         map[string]interface{}{"type": "string", "description": "Job title to search for"},
			"experience":       map[string]interface{}{"type": "string", "description": "Experience, e.g. \"2 years\""},
			"salary":           map[string]interface{}{"type": "string", "description": "Expected salary (optional)"},
			"jobNature":        map[string]interface{}{"type": "string", "description": "onsite, remote, hybrid, full-time..."},
			"location":         map[string]interface{}{"type": "string", "description": "Free-text location"},
			"country":          map[string]interface{}{"type": "string", "description": "Country (optional)"},
			"city":             map[string]interface{}{"type": "string", "description": "City (optional)"},
			"skills":           map[string]interface{}{"type": "string", "description": "Comma-separated skills"},
			"companies":        map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}, "description": "Only keep these companies (optional)"},
			"excludeCompanies": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}, "description": "Drop these companies (optional)"},
		},
		Required: []string{"position"},
	}
	s.AddTool(tool, searchJobsHandler(searcher))
}

func searchJobsHandler(searcher Searcher) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		req := model.SearchRequest{
			Position:         stringArg(args, "position"),
			Experience:       stringArg(args, "experience"),
			Salary:           stringArg(args, "salary"),
			JobNature:        stringArg(args, "jobNature"),
			Location:         stringArg(args, "location"),
			Country:          stringArg(args, "country"),
			City:             stringArg(args, "city"),
			Skills:           stringArg(args, "skills"),
			Companies:        stringsArg(args, "companies"),
			ExcludeCompanies: stringsArg(args, "excludeCompanies"),
		}

		res, err := searcher.Search(ctx, req)
		if err != nil {
			if errors.Is(err, model.ErrInvalidRequest) {
				return mcp.NewToolResultError(fmt.Sprintf("Invalid search: %v", err)), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("Search failed: %v", err)), nil
		}

		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to encode results: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

func stringArg(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// stringsArg accepts a JSON array of strings or a single comma-separated string.
func stringsArg(args map[string]interface{}, key string) []string {
	var out []string
	switch v := args[key].(type) {
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
	case string:
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
