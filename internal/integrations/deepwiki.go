// Package integrations provides thin REST clients for the third-party
// services exposed to the model as tools (DeepWiki, Notion, Canvas).
package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const requestTimeout = 30 * time.Second

// DeepWikiClient reads AI-generated documentation for public repositories.
// All operations are pure reads.
type DeepWikiClient struct {
	baseURL string
	client  *http.Client
}

// NewDeepWiki creates a DeepWiki client.
func NewDeepWiki(baseURL string) *DeepWikiClient {
	return &DeepWikiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: requestTimeout},
	}
}

// WikiTopic is one entry in a repository's wiki structure.
type WikiTopic struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type wikiStructureResponse struct {
	Topics []WikiTopic `json:"topics"`
	Error  string      `json:"error,omitempty"`
}

// WikiStructure lists the documentation topics for a repository.
func (c *DeepWikiClient) WikiStructure(ctx context.Context, repo string) ([]WikiTopic, error) {
	var resp wikiStructureResponse
	if err := c.get(ctx, "/structure?repo="+url.QueryEscape(repo), &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("DeepWiki error: %s", resp.Error)
	}
	return resp.Topics, nil
}

type wikiContentsResponse struct {
	Content string `json:"content"`
	Error   string `json:"error,omitempty"`
}

// WikiContents fetches one topic's documentation.
func (c *DeepWikiClient) WikiContents(ctx context.Context, repo, topic string) (string, error) {
	var resp wikiContentsResponse
	path := "/contents?repo=" + url.QueryEscape(repo) + "&topic=" + url.QueryEscape(topic)
	if err := c.get(ctx, path, &resp); err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", fmt.Errorf("DeepWiki error: %s", resp.Error)
	}
	return resp.Content, nil
}

func (c *DeepWikiClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("DeepWiki returned %d: %s", resp.StatusCode, truncateBody(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func truncateBody(b []byte) string {
	s := string(b)
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
