package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultAnthropicURL = "https://api.anthropic.com"

// AnthropicClient implements Client for the Anthropic Messages API.
type AnthropicClient struct {
	baseURL   string
	apiKey    string
	model     string
	maxTokens int
	client    *http.Client
}

// NewAnthropic creates a new Anthropic client.
// baseURL may be empty to use the public endpoint.
func NewAnthropic(baseURL, apiKey, model string, maxTokens int) *AnthropicClient {
	if baseURL == "" {
		baseURL = defaultAnthropicURL
	}
	return &AnthropicClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
		client:    &http.Client{Timeout: 120 * time.Second},
	}
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
	Tools     []ToolSpec         `json:"tools,omitempty"`
}

type anthropicMessage struct {
	Role    string           `json:"role"`
	Content []anthropicBlock `json:"content"`
}

type anthropicBlock struct {
	Type string `json:"type"`

	Text string `json:"text,omitempty"`

	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`

	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   string `json:"content,omitempty"`
	IsError   bool   `json:"is_error,omitempty"`
}

type anthropicResponse struct {
	Content    []anthropicBlock `json:"content"`
	StopReason string           `json:"stop_reason"`
	Error      *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *AnthropicClient) CreateMessage(ctx context.Context, req Request) (*Response, error) {
	reqBody := anthropicRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    req.System,
		Messages:  make([]anthropicMessage, 0, len(req.Messages)),
		Tools:     req.Tools,
	}
	for _, m := range req.Messages {
		reqBody.Messages = append(reqBody.Messages, toAnthropicMessage(m))
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("Anthropic returned %d: %s", resp.StatusCode, truncateStr(string(respBody), 200))
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if apiResp.Error != nil {
		return nil, fmt.Errorf("Anthropic error: %s", apiResp.Error.Message)
	}
	if len(apiResp.Content) == 0 {
		return nil, fmt.Errorf("Anthropic returned empty content")
	}

	out := &Response{StopReason: apiResp.StopReason}
	for _, b := range apiResp.Content {
		switch b.Type {
		case BlockText:
			out.Blocks = append(out.Blocks, TextBlock(b.Text))
		case BlockToolUse:
			out.Blocks = append(out.Blocks, ContentBlock{
				Type:  BlockToolUse,
				ID:    b.ID,
				Name:  b.Name,
				Input: b.Input,
			})
		}
	}
	return out, nil
}

// toAnthropicMessage converts the neutral message shape to the wire format.
func toAnthropicMessage(m Message) anthropicMessage {
	msg := anthropicMessage{Role: string(m.Role), Content: make([]anthropicBlock, 0, len(m.Blocks))}
	for _, b := range m.Blocks {
		switch b.Type {
		case BlockText:
			msg.Content = append(msg.Content, anthropicBlock{Type: BlockText, Text: b.Text})
		case BlockToolUse:
			msg.Content = append(msg.Content, anthropicBlock{
				Type: BlockToolUse, ID: b.ID, Name: b.Name, Input: b.Input,
			})
		case BlockToolResult:
			msg.Content = append(msg.Content, anthropicBlock{
				Type: BlockToolResult, ToolUseID: b.ToolUseID, Content: b.Content, IsError: b.IsError,
			})
		}
	}
	return msg
}

func (c *AnthropicClient) Name() string {
	return fmt.Sprintf("anthropic (%s)", c.model)
}

func truncateStr(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
