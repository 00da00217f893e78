// Package llm provides clients for hosted chat-completion APIs with tool calling.
package llm

import (
	"context"
	"encoding/json"
)

// Role identifies who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Block types within a message.
const (
	BlockText       = "text"
	BlockToolUse    = "tool_use"
	BlockToolResult = "tool_result"
)

// Stop reasons returned by the model endpoint.
const (
	StopEndTurn   = "end_turn"  // model finished its reply
	StopToolUse   = "tool_use"  // model wants tools executed
	StopMaxTokens = "max_tokens"
)

// ContentBlock is one typed block of message content.
// Exactly the fields matching Type are meaningful.
type ContentBlock struct {
	Type string

	// Type == "text"
	Text string

	// Type == "tool_use"
	ID    string // correlation id, echoed back in the matching tool_result
	Name  string
	Input json.RawMessage

	// Type == "tool_result"
	ToolUseID string
	Content   string
	IsError   bool
}

// TextBlock builds a text content block.
func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: BlockText, Text: text}
}

// ToolResultBlock builds a tool_result block correlated to a tool_use id.
func ToolResultBlock(toolUseID, content string, isError bool) ContentBlock {
	return ContentBlock{Type: BlockToolResult, ToolUseID: toolUseID, Content: content, IsError: isError}
}

// Message is one conversation turn sent to or received from the model.
type Message struct {
	Role   Role
	Blocks []ContentBlock
}

// UserMessage builds a plain-text user message.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Blocks: []ContentBlock{TextBlock(text)}}
}

// ToolResultMessage builds the user-role turn carrying tool results back to the model.
func ToolResultMessage(results []ContentBlock) Message {
	return Message{Role: RoleUser, Blocks: results}
}

// ToolSpec is a tool definition in the shape the model endpoint expects.
type ToolSpec struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema"`
}

// Request is one outbound call to the model endpoint: the static system
// instructions, the full ordered turn history, and the tool schema list.
type Request struct {
	System   string
	Messages []Message
	Tools    []ToolSpec
}

// Response is the model's reply: typed content blocks plus a stop indicator.
type Response struct {
	Blocks     []ContentBlock
	StopReason string
}

// ToolUses returns the tool_use blocks in the order received.
func (r *Response) ToolUses() []ContentBlock {
	var uses []ContentBlock
	for _, b := range r.Blocks {
		if b.Type == BlockToolUse {
			uses = append(uses, b)
		}
	}
	return uses
}

// Client is a hosted model endpoint that supports the tool-calling protocol.
type Client interface {
	// CreateMessage sends one request and returns the full assistant response.
	CreateMessage(ctx context.Context, req Request) (*Response, error)
	// Name returns the provider name for display.
	Name() string
}
