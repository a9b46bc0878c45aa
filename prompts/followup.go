package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/athapong/notegraph/pkg/entity"
	"github.com/athapong/notegraph/pkg/extract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type extractFunc func(text string) (*entity.Result, error)

func RegisterFollowUpPrompt(s *server.MCPServer) {
	prompt := mcp.NewPrompt("followup_draft",
		mcp.WithPromptDescription("Draft a follow-up message from a meeting or call note"),
		mcp.WithArgument("note",
			mcp.ArgumentDescription("The note to follow up on"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("tone", mcp.ArgumentDescription("Tone of the message, e.g. friendly or formal")),
	)
	s.AddPrompt(prompt, followUpHandler(extract.Extract))
}

func followUpHandler(extractNote extractFunc) server.PromptHandlerFunc {
	return func(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		note := request.Params.Arguments["note"]
		if strings.TrimSpace(note) == "" {
			return nil, fmt.Errorf("note is required")
		}
		tone := request.Params.Arguments["tone"]
		if tone == "" {
			tone = "friendly"
		}

		result, err := extractNote(note)
		if err != nil {
			return nil, fmt.Errorf("failed to extract entities: %v", err)
		}

		summary := entity.Summarize(result.Structured)
		items := entity.ActionableItems(result.Structured)

		var sb strings.Builder
		fmt.Fprintf(&sb, "Write a short, %s follow-up message based on this note.\n\n", tone)
		fmt.Fprintf(&sb, "Note:\n%s\n", note)

		if people := names(result.Structured.People); len(people) > 0 {
			fmt.Fprintf(&sb, "\nAddress it to: %s\n", strings.Join(people, ", "))
		}
		if len(summary.Highlights) > 0 {
			fmt.Fprintf(&sb, "\nContext: %s\n", strings.Join(summary.Highlights, "; "))
		}
		if len(items) > 0 {
			sb.WriteString("\nConfirm these next steps:\n")
			for _, item := range items {
				fmt.Fprintf(&sb, "- %s\n", item)
			}
		}

		return &mcp.GetPromptResult{
			Description: "Follow-up draft",
			Messages: []mcp.PromptMessage{
				{
					Role: mcp.RoleUser,
					Content: mcp.TextContent{
						Type: "text",
						Text: sb.String(),
					},
				},
			},
		}, nil
	}
}

func names(people []entity.ParsedEntity) []string {
	out := make([]string, 0, len(people))
	seen := make(map[string]bool)
	for _, p := range people {
		key := strings.ToLower(p.Value)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p.Value)
	}
	return out
}
