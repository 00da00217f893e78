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

// OpenAIClient implements Client for any OpenAI-compatible chat-completions API
// with tool calling (OpenAI, Kimi, Groq, Together AI, Ollama, vLLM, etc.).
type OpenAIClient struct {
	baseURL   string
	apiKey    string
	model     string
	maxTokens int
	client    *http.Client
}

// NewOpenAI creates a new OpenAI-compatible client.
func NewOpenAI(baseURL, apiKey, model string, maxTokens int) *OpenAIClient {
	return &OpenAIClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
		client:    &http.Client{Timeout: 120 * time.Second},
	}
}

type oaRequest struct {
	Model     string      `json:"model"`
	Messages  []oaMessage `json:"messages"`
	MaxTokens int         `json:"max_tokens,omitempty"`
	Tools     []oaTool    `json:"tools,omitempty"`
}

type oaMessage struct {
	Role       string       `json:"role"`
	Content    string       `json:"content,omitempty"`
	ToolCallID string       `json:"tool_call_id,omitempty"`
	ToolCalls  []oaToolCall `json:"tool_calls,omitempty"`
}

type oaTool struct {
	Type     string     `json:"type"` // always "function"
	Function oaFunction `json:"function"`
}

type oaFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

type oaToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type oaResponse struct {
	Choices []struct {
		Message      oaMessage `json:"message"`
		FinishReason string    `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *OpenAIClient) CreateMessage(ctx context.Context, req Request) (*Response, error) {
	reqBody := oaRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
	}
	if req.System != "" {
		reqBody.Messages = append(reqBody.Messages, oaMessage{Role: "system", Content: req.System})
	}
	for _, m := range req.Messages {
		reqBody.Messages = append(reqBody.Messages, toOpenAIMessages(m)...)
	}
	for _, t := range req.Tools {
		reqBody.Tools = append(reqBody.Tools, oaTool{
			Type: "function",
			Function: oaFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.InputSchema,
			},
		})
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

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
		return nil, fmt.Errorf("LLM returned %d: %s", resp.StatusCode, truncateStr(string(respBody), 200))
	}

	var apiResp oaResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if apiResp.Error != nil {
		return nil, fmt.Errorf("LLM error: %s", apiResp.Error.Message)
	}
	if len(apiResp.Choices) == 0 {
		return nil, fmt.Errorf("LLM returned empty choices")
	}

	choice := apiResp.Choices[0]
	out := &Response{StopReason: StopEndTurn}
	if text := strings.TrimSpace(choice.Message.Content); text != "" {
		out.Blocks = append(out.Blocks, TextBlock(text))
	}
	for _, call := range choice.Message.ToolCalls {
		out.Blocks = append(out.Blocks, ContentBlock{
			Type:  BlockToolUse,
			ID:    call.ID,
			Name:  call.Function.Name,
			Input: json.RawMessage(call.Function.Arguments),
		})
	}
	switch choice.FinishReason {
	case "tool_calls":
		out.StopReason = StopToolUse
	case "length":
		out.StopReason = StopMaxTokens
	}
	return out, nil
}

// toOpenAIMessages flattens one neutral message into the wire format.
// An assistant turn with tool_use blocks becomes a single assistant message
// with tool_calls; tool_result blocks each become a role=tool message.
func toOpenAIMessages(m Message) []oaMessage {
	var text strings.Builder
	var calls []oaToolCall
	var results []oaMessage

	for _, b := range m.Blocks {
		switch b.Type {
		case BlockText:
			if text.Len() > 0 {
				text.WriteString("\n")
			}
			text.WriteString(b.Text)
		case BlockToolUse:
			call := oaToolCall{ID: b.ID, Type: "function"}
			call.Function.Name = b.Name
			call.Function.Arguments = string(b.Input)
			calls = append(calls, call)
		case BlockToolResult:
			content := b.Content
			if b.IsError {
				content = "error: " + content
			}
			results = append(results, oaMessage{
				Role:       "tool",
				ToolCallID: b.ToolUseID,
				Content:    content,
			})
		}
	}

	if len(results) > 0 {
		return results
	}
	msg := oaMessage{Role: string(m.Role), Content: text.String(), ToolCalls: calls}
	return []oaMessage{msg}
}

func (c *OpenAIClient) Name() string {
	return fmt.Sprintf("openai-compat (%s)", c.model)
}
