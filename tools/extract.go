package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/athapong/notegraph/pkg/entity"
	"github.com/athapong/notegraph/pkg/extract"
	"github.com/athapong/notegraph/pkg/extract/cache"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/tidwall/gjson"
)

// entityTools serves the extraction tools. Deterministic passes go through
// the cache; hybrid passes depend on caller input and are not cached.
type entityTools struct {
	extractor *extract.Extractor
	cache     *cache.Cache
}

var defaultEntityTools = sync.OnceValue(func() *entityTools {
	size, _ := strconv.Atoi(os.Getenv("ENTITY_CACHE_SIZE"))
	ttl, _ := time.ParseDuration(os.Getenv("ENTITY_CACHE_TTL"))
	ex := extract.New()
	return &entityTools{
		extractor: ex,
		cache:     cache.New(ex, size, ttl),
	}
})

func RegisterEntityTools(s *server.MCPServer) {
	t := defaultEntityTools()

	extractTool := mcp.NewTool("extract_entities",
		mcp.WithDescription("Extracts people, companies, dates, locations, commitments, relationship signals, phone numbers and emails from a note. Commitments are linked to the deadline that follows them. Returns the full extraction result as JSON."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The note text to extract entities from"),
		),
		mcp.WithString("ai_entities",
			mcp.Description("Optional JSON array of entity strings suggested by a model, e.g. [\"Q3 budget\"]. Suggestions already found deterministically are dropped."),
		),
	)

	summarizeTool := mcp.NewTool("summarize_entities",
		mcp.WithDescription("Extracts entities from a note and returns per-category counts, highlights and actionable next steps as JSON."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The note text to summarize"),
		),
	)

	s.AddTool(extractTool, t.extractHandler)
	s.AddTool(summarizeTool, t.summarizeHandler)
}

func (t *entityTools) extractHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	arguments := request.Params.Arguments
	text, ok := arguments["text"].(string)
	if !ok {
		return mcp.NewToolResultError("text must be a string"), nil
	}

	aiEntities, err := aiEntitiesArgument(arguments["ai_entities"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result *entity.Result
	if len(aiEntities) == 0 {
		result, err = t.cache.Extract(text)
	} else {
		result, err = t.extractor.ExtractHybrid(text, aiEntities)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to extract entities: %v", err)), nil
	}

	return jsonResult(result)
}

func (t *entityTools) summarizeHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, ok := request.Params.Arguments["text"].(string)
	if !ok {
		return mcp.NewToolResultError("text must be a string"), nil
	}

	result, err := t.cache.Extract(text)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to extract entities: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"summary":         entity.Summarize(result.Structured),
		"actionableItems": entity.ActionableItems(result.Structured),
	})
}

// aiEntitiesArgument accepts a JSON array string or an array value
func aiEntitiesArgument(v interface{}) ([]string, error) {
	var list gjson.Result
	switch arg := v.(type) {
	case nil:
		return nil, nil
	case string:
		if arg == "" {
			return nil, nil
		}
		if !gjson.Valid(arg) {
			return nil, fmt.Errorf("ai_entities must be a JSON array of strings")
		}
		list = gjson.Parse(arg)
	case []interface{}:
		out := make([]string, 0, len(arg))
		for _, item := range arg {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("ai_entities must contain only strings")
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("ai_entities must be a JSON array of strings")
	}

	if !list.IsArray() {
		return nil, fmt.Errorf("ai_entities must be a JSON array of strings")
	}
	out := make([]string, 0)
	for _, item := range list.Array() {
		if item.Type != gjson.String {
			return nil, fmt.Errorf("ai_entities must contain only strings")
		}
		out = append(out, item.String())
	}
	return out, nil
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %v", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
