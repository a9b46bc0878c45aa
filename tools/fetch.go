package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/athapong/notegraph/pkg/graph/processors"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const maxFetchBytes = 5 << 20

var fetchClient = &http.Client{Timeout: 30 * time.Second}

func RegisterFetchTool(s *server.MCPServer) {
	tool := mcp.NewTool("extract_web_entities",
		mcp.WithDescription("Fetches an HTTP/HTTPS page, such as a shared meeting note or profile, converts it to text and extracts entities from it. Returns the extraction result as JSON."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The complete HTTP/HTTPS URL to fetch content from (e.g., https://example.com)"),
		),
	)

	s.AddTool(tool, defaultEntityTools().fetchHandler)
}

func (t *entityTools) fetchHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, ok := request.Params.Arguments["url"].(string)
	if !ok {
		return mcp.NewToolResultError("url must be a string"), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid URL: %s", err)), nil
	}

	resp, err := fetchClient.Do(req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to fetch URL: %s", err)), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return mcp.NewToolResultError(fmt.Sprintf("failed to fetch URL: status %d", resp.StatusCode)), nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read response body: %s", err)), nil
	}

	text, err := processors.NewHTMLProcessor().Process(ctx, body)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to convert page: %v", err)), nil
	}

	result, err := t.cache.Extract(text)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to extract entities: %v", err)), nil
	}

	return jsonResult(result)
}
