package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/deckhandai/deckhand-cli/internal/integrations"
	"github.com/deckhandai/deckhand-cli/internal/tool"
)

// WikiStructureTool lists a repository's DeepWiki documentation topics.
// Pure read: identical input with no upstream change yields identical output.
type WikiStructureTool struct {
	client *integrations.DeepWikiClient
}

// NewWikiStructureTool creates the read_wiki_structure tool.
func NewWikiStructureTool(client *integrations.DeepWikiClient) *WikiStructureTool {
	return &WikiStructureTool{client: client}
}

func (t *WikiStructureTool) Descriptor() tool.Descriptor {
	return tool.Descriptor{
		Name:        "read_wiki_structure",
		Description: "List the documentation topics available for a public repository (owner/repo).",
		InputSchema: tool.ObjectSchema(map[string]tool.Property{
			"repo": {Type: "string", Description: "Repository in owner/repo form"},
		}, "repo"),
	}
}

type wikiStructureArgs struct {
	Repo string `json:"repo"`
}

func (t *WikiStructureTool) Execute(ctx context.Context, input json.RawMessage) (*tool.Result, error) {
	var args wikiStructureArgs
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}

	topics, err := t.client.WikiStructure(ctx, args.Repo)
	if err != nil {
		return tool.Errorf("%v", err), nil
	}
	if len(topics) == 0 {
		return tool.Ok(fmt.Sprintf("%s: no documentation topics", args.Repo)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%d topics)\n", args.Repo, len(topics))
	for _, topic := range topics {
		fmt.Fprintf(&sb, "  %s: %s\n", topic.ID, topic.Title)
	}
	return tool.Ok(strings.TrimRight(sb.String(), "\n")), nil
}

// WikiContentsTool fetches one DeepWiki topic's documentation.
type WikiContentsTool struct {
	client *integrations.DeepWikiClient
}

// NewWikiContentsTool creates the read_wiki_contents tool.
func NewWikiContentsTool(client *integrations.DeepWikiClient) *WikiContentsTool {
	return &WikiContentsTool{client: client}
}

func (t *WikiContentsTool) Descriptor() tool.Descriptor {
	return tool.Descriptor{
		Name:        "read_wiki_contents",
		Description: "Read the documentation for one topic of a public repository.",
		InputSchema: tool.ObjectSchema(map[string]tool.Property{
			"repo":  {Type: "string", Description: "Repository in owner/repo form"},
			"topic": {Type: "string", Description: "Topic id from read_wiki_structure"},
		}, "repo", "topic"),
	}
}

type wikiContentsArgs struct {
	Repo  string `json:"repo"`
	Topic string `json:"topic"`
}

func (t *WikiContentsTool) Execute(ctx context.Context, input json.RawMessage) (*tool.Result, error) {
	var args wikiContentsArgs
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}

	content, err := t.client.WikiContents(ctx, args.Repo, args.Topic)
	if err != nil {
		return tool.Errorf("%v", err), nil
	}
	return tool.Ok(content), nil
}
