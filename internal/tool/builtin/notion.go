package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/deckhandai/deckhand-cli/internal/integrations"
	"github.com/deckhandai/deckhand-cli/internal/tool"
)

// NotionTool searches a Notion workspace and reads pages.
type NotionTool struct {
	client *integrations.NotionClient
}

// NewNotionTool creates the notion tool.
func NewNotionTool(client *integrations.NotionClient) *NotionTool {
	return &NotionTool{client: client}
}

func (t *NotionTool) Descriptor() tool.Descriptor {
	return tool.Descriptor{
		Name:        "notion",
		Description: "Search the connected Notion workspace or read a page's text.",
		InputSchema: tool.ObjectSchema(map[string]tool.Property{
			"operation": {
				Type:        "string",
				Description: "search=find pages by query, read=fetch a page's text",
				Enum:        []string{"search", "read"},
			},
			"query":   {Type: "string", Description: "Search query (search only)"},
			"page_id": {Type: "string", Description: "Page id (read only)"},
		}, "operation"),
	}
}

type notionArgs struct {
	Operation string `json:"operation"`
	Query     string `json:"query"`
	PageID    string `json:"page_id"`
}

func (t *NotionTool) Execute(ctx context.Context, input json.RawMessage) (*tool.Result, error) {
	var args notionArgs
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}

	switch args.Operation {
	case "search":
		if args.Query == "" {
			return tool.Errorf("query is required for operation=search"), nil
		}
		pages, err := t.client.Search(ctx, args.Query)
		if err != nil {
			return tool.Errorf("%v", err), nil
		}
		if len(pages) == 0 {
			return tool.Ok("(no matching pages)"), nil
		}
		var sb strings.Builder
		for _, p := range pages {
			fmt.Fprintf(&sb, "%s  %s  %s\n", p.ID, p.Title, p.URL)
		}
		return tool.Ok(strings.TrimRight(sb.String(), "\n")), nil

	case "read":
		if args.PageID == "" {
			return tool.Errorf("page_id is required for operation=read"), nil
		}
		text, err := t.client.PageText(ctx, args.PageID)
		if err != nil {
			return tool.Errorf("%v", err), nil
		}
		return tool.Ok(text), nil

	default:
		return tool.Errorf("unknown operation %q (use search/read)", args.Operation), nil
	}
}
