package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenAICreateMessage(t *testing.T) {
	var gotReq oaRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"message": map[string]any{
					"role":    "assistant",
					"content": "",
					"tool_calls": []map[string]any{{
						"id":   "call_1",
						"type": "function",
						"function": map[string]any{
							"name":      "bash",
							"arguments": `{"command":"ls"}`,
						},
					}},
				},
				"finish_reason": "tool_calls",
			}},
		})
	}))
	defer srv.Close()

	c := NewOpenAI(srv.URL+"/v1", "test-key", "gpt-4o", 4096)
	resp, err := c.CreateMessage(context.Background(), Request{
		System:   "be terse",
		Messages: []Message{UserMessage("list files")},
		Tools: []ToolSpec{{
			Name:        "bash",
			Description: "runs commands",
			InputSchema: json.RawMessage(`{"type":"object"}`),
		}},
	})
	require.NoError(t, err)

	// System prompt goes in as the first message; tools as function defs.
	require.Equal(t, "system", gotReq.Messages[0].Role)
	require.Equal(t, "be terse", gotReq.Messages[0].Content)
	require.Len(t, gotReq.Tools, 1)
	require.Equal(t, "function", gotReq.Tools[0].Type)
	require.Equal(t, "bash", gotReq.Tools[0].Function.Name)

	require.Equal(t, StopToolUse, resp.StopReason)
	uses := resp.ToolUses()
	require.Len(t, uses, 1)
	require.Equal(t, "call_1", uses[0].ID)
	require.JSONEq(t, `{"command":"ls"}`, string(uses[0].Input))
}

func TestOpenAIToolResultsBecomeToolMessages(t *testing.T) {
	var gotReq oaRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"message":       map[string]any{"role": "assistant", "content": "saw it"},
				"finish_reason": "stop",
			}},
		})
	}))
	defer srv.Close()

	c := NewOpenAI(srv.URL, "k", "m", 1024)
	resp, err := c.CreateMessage(context.Background(), Request{
		Messages: []Message{
			UserMessage("run ls"),
			{Role: RoleAssistant, Blocks: []ContentBlock{
				{Type: BlockToolUse, ID: "call_7", Name: "bash", Input: json.RawMessage(`{"command":"ls"}`)},
			}},
			ToolResultMessage([]ContentBlock{
				ToolResultBlock("call_7", "file.txt", false),
				ToolResultBlock("call_8", "boom", true),
			}),
		},
	})
	require.NoError(t, err)
	require.Equal(t, StopEndTurn, resp.StopReason)

	// user, assistant-with-tool_calls, then one role=tool message per result.
	require.Len(t, gotReq.Messages, 4)

	asst := gotReq.Messages[1]
	require.Equal(t, "assistant", asst.Role)
	require.Len(t, asst.ToolCalls, 1)
	require.Equal(t, "call_7", asst.ToolCalls[0].ID)

	require.Equal(t, "tool", gotReq.Messages[2].Role)
	require.Equal(t, "call_7", gotReq.Messages[2].ToolCallID)
	require.Equal(t, "file.txt", gotReq.Messages[2].Content)

	// Failed results carry an error prefix.
	require.Equal(t, "error: boom", gotReq.Messages[3].Content)
}

func TestOpenAIFinishReasonLength(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"message":       map[string]any{"role": "assistant", "content": "truncat"},
				"finish_reason": "length",
			}},
		})
	}))
	defer srv.Close()

	c := NewOpenAI(srv.URL, "k", "m", 16)
	resp, err := c.CreateMessage(context.Background(), Request{Messages: []Message{UserMessage("hi")}})
	require.NoError(t, err)
	require.Equal(t, StopMaxTokens, resp.StopReason)
}

func TestOpenAINoAuthHeaderWithoutKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Empty(t, r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"message":       map[string]any{"role": "assistant", "content": "local"},
				"finish_reason": "stop",
			}},
		})
	}))
	defer srv.Close()

	c := NewOpenAI(srv.URL, "", "llama3.2", 1024)
	_, err := c.CreateMessage(context.Background(), Request{Messages: []Message{UserMessage("hi")}})
	require.NoError(t, err)
}

func TestOpenAIEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewOpenAI(srv.URL, "k", "m", 1024)
	_, err := c.CreateMessage(context.Background(), Request{Messages: []Message{UserMessage("hi")}})
	require.Error(t, err)
}
