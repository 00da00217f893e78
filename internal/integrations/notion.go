package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const notionBaseURL = "https://api.notion.com/v1"

// NotionClient wraps the Notion REST API for workspace search and page reads.
type NotionClient struct {
	token  string
	client *http.Client
}

// NewNotion creates a Notion client with an integration token.
func NewNotion(token string) *NotionClient {
	return &NotionClient{
		token:  token,
		client: &http.Client{Timeout: requestTimeout},
	}
}

// NotionPage is a search hit.
type NotionPage struct {
	ID    string
	Title string
	URL   string
}

type notionSearchResponse struct {
	Results []struct {
		ID         string `json:"id"`
		URL        string `json:"url"`
		Properties map[string]struct {
			Title []struct {
				PlainText string `json:"plain_text"`
			} `json:"title"`
		} `json:"properties"`
	} `json:"results"`
}

// Search finds pages matching a query.
func (c *NotionClient) Search(ctx context.Context, query string) ([]NotionPage, error) {
	reqBody, _ := json.Marshal(map[string]any{
		"query":     query,
		"page_size": 10,
	})

	var resp notionSearchResponse
	if err := c.do(ctx, "POST", "/search", reqBody, &resp); err != nil {
		return nil, err
	}

	pages := make([]NotionPage, 0, len(resp.Results))
	for _, r := range resp.Results {
		page := NotionPage{ID: r.ID, URL: r.URL}
		for _, prop := range r.Properties {
			if len(prop.Title) > 0 {
				page.Title = prop.Title[0].PlainText
				break
			}
		}
		pages = append(pages, page)
	}
	return pages, nil
}

type notionBlocksResponse struct {
	Results []json.RawMessage `json:"results"`
}

// PageText fetches a page's block children and flattens their plain text.
func (c *NotionClient) PageText(ctx context.Context, pageID string) (string, error) {
	var resp notionBlocksResponse
	if err := c.do(ctx, "GET", "/blocks/"+pageID+"/children?page_size=100", nil, &resp); err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, raw := range resp.Results {
		var block struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &block); err != nil {
			continue
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			continue
		}
		var content struct {
			RichText []struct {
				PlainText string `json:"plain_text"`
			} `json:"rich_text"`
		}
		if err := json.Unmarshal(fields[block.Type], &content); err != nil {
			continue
		}
		for _, rt := range content.RichText {
			sb.WriteString(rt.PlainText)
		}
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String()), nil
}

func (c *NotionClient) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, notionBaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", "2022-06-28")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("Notion returned %d: %s", resp.StatusCode, truncateBody(respBody))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
