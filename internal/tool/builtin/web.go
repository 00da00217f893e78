package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/deckhandai/deckhand-cli/internal/tool"
)

const (
	httpTimeout = 20 * time.Second
	maxRespSize = 512 * 1024 // 512 KB
)

// ── http_fetch ────────────────────────────────────────────────────────────────

// HTTPFetchTool fetches a URL and returns the response body.
// Supports GET and POST. Always runs in-process, no shell.
type HTTPFetchTool struct {
	client *http.Client
}

// NewHTTPFetchTool creates the http_fetch tool with a 20-second timeout.
func NewHTTPFetchTool() *HTTPFetchTool {
	return &HTTPFetchTool{client: &http.Client{Timeout: httpTimeout}}
}

func (t *HTTPFetchTool) Descriptor() tool.Descriptor {
	return tool.Descriptor{
		Name:        "http_fetch",
		Description: "HTTP GET or POST a URL. Use for web pages, JSON APIs, or any remote resource. Returns the response body. Max 512KB.",
		InputSchema: tool.ObjectSchema(map[string]tool.Property{
			"url":    {Type: "string", Description: "Full URL (http:// or https://)"},
			"method": {Type: "string", Enum: []string{"GET", "POST"}},
			"body":   {Type: "string", Description: "Request body (POST only)"},
		}, "url"),
	}
}

type httpFetchArgs struct {
	URL    string `json:"url"`
	Method string `json:"method"`
	Body   string `json:"body"`
}

func (t *HTTPFetchTool) Execute(ctx context.Context, input json.RawMessage) (*tool.Result, error) {
	var args httpFetchArgs
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}
	if !strings.HasPrefix(args.URL, "http://") && !strings.HasPrefix(args.URL, "https://") {
		return tool.Errorf("url must start with http:// or https://"), nil
	}
	method := args.Method
	if method == "" {
		method = "GET"
	}

	var body io.Reader
	if method == "POST" && args.Body != "" {
		body = strings.NewReader(args.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, args.URL, body)
	if err != nil {
		return tool.Errorf("create request: %v", err), nil
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return tool.Errorf("request failed: %v", err), nil
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRespSize))
	if err != nil {
		return tool.Errorf("read response: %v", err), nil
	}
	return tool.Ok(fmt.Sprintf("HTTP %d\n%s", resp.StatusCode, strings.TrimSpace(string(data)))), nil
}

// ── web_search ────────────────────────────────────────────────────────────────

const searchBaseURL = "https://api.duckduckgo.com"

// WebSearchTool answers queries via the DuckDuckGo instant-answer API.
// No API key required; results are abstract/definition style.
type WebSearchTool struct {
	baseURL string
	client  *http.Client
}

// NewWebSearchTool creates the web_search tool.
func NewWebSearchTool() *WebSearchTool {
	return &WebSearchTool{baseURL: searchBaseURL, client: &http.Client{Timeout: httpTimeout}}
}

func (t *WebSearchTool) Descriptor() tool.Descriptor {
	return tool.Descriptor{
		Name:        "web_search",
		Description: "Search the web for a short factual answer. Returns an abstract and related topics.",
		InputSchema: tool.ObjectSchema(map[string]tool.Property{
			"query": {Type: "string", Description: "Search query"},
		}, "query"),
	}
}

type searchArgs struct {
	Query string `json:"query"`
}

type searchResponse struct {
	AbstractText  string `json:"AbstractText"`
	AbstractURL   string `json:"AbstractURL"`
	Answer        string `json:"Answer"`
	RelatedTopics []struct {
		Text     string `json:"Text"`
		FirstURL string `json:"FirstURL"`
	} `json:"RelatedTopics"`
}

func (t *WebSearchTool) Execute(ctx context.Context, input json.RawMessage) (*tool.Result, error) {
	var args searchArgs
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}
	if strings.TrimSpace(args.Query) == "" {
		return tool.Errorf("query is required"), nil
	}

	u := t.baseURL + "/?format=json&no_html=1&q=" + url.QueryEscape(args.Query)
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return tool.Errorf("create request: %v", err), nil
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return tool.Errorf("request failed: %v", err), nil
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRespSize))
	if err != nil {
		return tool.Errorf("read response: %v", err), nil
	}
	var sr searchResponse
	if err := json.Unmarshal(data, &sr); err != nil {
		return tool.Errorf("parse response: %v", err), nil
	}

	var sb strings.Builder
	if sr.Answer != "" {
		sb.WriteString(sr.Answer + "\n")
	}
	if sr.AbstractText != "" {
		sb.WriteString(sr.AbstractText)
		if sr.AbstractURL != "" {
			sb.WriteString("\n(" + sr.AbstractURL + ")")
		}
		sb.WriteString("\n")
	}
	count := 0
	for _, rt := range sr.RelatedTopics {
		if rt.Text == "" || count >= 5 {
			continue
		}
		fmt.Fprintf(&sb, "- %s (%s)\n", rt.Text, rt.FirstURL)
		count++
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return tool.Ok("(no results)"), nil
	}
	return tool.Ok(out), nil
}
