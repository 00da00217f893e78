package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deckhandai/deckhand-cli/internal/llm"
	"github.com/deckhandai/deckhand-cli/internal/tool"
)

// fakeClient replays a scripted sequence of responses and records every
// request it receives.
type fakeClient struct {
	responses []*llm.Response
	errs      []error
	requests  []llm.Request
	calls     int
}

func (f *fakeClient) CreateMessage(_ context.Context, req llm.Request) (*llm.Response, error) {
	f.requests = append(f.requests, req)
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i >= len(f.responses) {
		return &llm.Response{
			Blocks:     []llm.ContentBlock{llm.TextBlock("done")},
			StopReason: llm.StopEndTurn,
		}, nil
	}
	return f.responses[i], nil
}

func (f *fakeClient) Name() string { return "fake" }

// echoTool returns its "msg" argument, or fails when "fail" is true.
type echoTool struct{}

func (echoTool) Descriptor() tool.Descriptor {
	return tool.Descriptor{
		Name:        "echo",
		Description: "echoes input",
		InputSchema: tool.ObjectSchema(map[string]tool.Property{
			"msg":  {Type: "string"},
			"fail": {Type: "boolean"},
		}),
	}
}

func (echoTool) Execute(_ context.Context, input json.RawMessage) (*tool.Result, error) {
	var args struct {
		Msg  string `json:"msg"`
		Fail bool   `json:"fail"`
	}
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, err
	}
	if args.Fail {
		return tool.Errorf("echo failed on purpose"), nil
	}
	return tool.Ok("echo: " + args.Msg), nil
}

func newTestRegistry(t *testing.T) *tool.Registry {
	t.Helper()
	reg := tool.NewRegistry(nil)
	require.NoError(t, reg.Register(echoTool{}))
	return reg
}

func toolUse(id, name, input string) llm.ContentBlock {
	return llm.ContentBlock{Type: llm.BlockToolUse, ID: id, Name: name, Input: json.RawMessage(input)}
}

func collect(t *testing.T, ch <-chan Event) []Event {
	t.Helper()
	var events []Event
	for ev := range ch {
		events = append(events, ev)
	}
	return events
}

func TestRunPlainReply(t *testing.T) {
	client := &fakeClient{responses: []*llm.Response{
		{Blocks: []llm.ContentBlock{llm.TextBlock("hi there")}, StopReason: llm.StopEndTurn},
	}}
	ctrl := New(client, newTestRegistry(t), "system", Options{})

	events := collect(t, ctrl.Run(context.Background(), "hello"))

	require.Len(t, events, 2)
	require.Equal(t, EventContent, events[0].Kind)
	require.Equal(t, "hi there", events[0].Text)
	require.Equal(t, EventDone, events[1].Kind)
	require.Equal(t, DoneComplete, events[1].Reason)

	// user turn + assistant turn
	require.Equal(t, 2, ctrl.Conversation().Len())
}

func TestRunSingleToolRound(t *testing.T) {
	client := &fakeClient{responses: []*llm.Response{
		{
			Blocks: []llm.ContentBlock{
				llm.TextBlock("let me check"),
				toolUse("tu_1", "echo", `{"msg":"ping"}`),
			},
			StopReason: llm.StopToolUse,
		},
		{Blocks: []llm.ContentBlock{llm.TextBlock("it said ping")}, StopReason: llm.StopEndTurn},
	}}
	ctrl := New(client, newTestRegistry(t), "system", Options{})

	events := collect(t, ctrl.Run(context.Background(), "ping the echo tool"))

	var kinds []EventKind
	for _, ev := range events {
		kinds = append(kinds, ev.Kind)
	}
	require.Equal(t, []EventKind{EventContent, EventToolUse, EventToolResult, EventContent, EventDone}, kinds)

	require.Equal(t, "echo", events[1].Tool)
	require.Equal(t, "echo: ping", events[2].Text)
	require.False(t, events[2].IsError)
	require.Equal(t, DoneComplete, events[4].Reason)

	// Second request must carry: user, assistant, tool-result turns.
	require.Len(t, client.requests, 2)
	msgs := client.requests[1].Messages
	require.Len(t, msgs, 3)
	require.Equal(t, llm.RoleUser, msgs[2].Role)
	require.Len(t, msgs[2].Blocks, 1)
	require.Equal(t, llm.BlockToolResult, msgs[2].Blocks[0].Type)
	require.Equal(t, "tu_1", msgs[2].Blocks[0].ToolUseID)
}

func TestRunParallelToolUsesOneResultTurn(t *testing.T) {
	client := &fakeClient{responses: []*llm.Response{
		{
			Blocks: []llm.ContentBlock{
				toolUse("tu_a", "echo", `{"msg":"a"}`),
				toolUse("tu_b", "echo", `{"msg":"b"}`),
				toolUse("tu_c", "echo", `{"msg":"c"}`),
			},
			StopReason: llm.StopToolUse,
		},
		{Blocks: []llm.ContentBlock{llm.TextBlock("done")}, StopReason: llm.StopEndTurn},
	}}
	ctrl := New(client, newTestRegistry(t), "system", Options{})

	collect(t, ctrl.Run(context.Background(), "three echoes"))

	// All three results land in one user turn, correlated in request order.
	msgs := client.requests[1].Messages
	results := msgs[len(msgs)-1]
	require.Equal(t, llm.RoleUser, results.Role)
	require.Len(t, results.Blocks, 3)
	require.Equal(t, "tu_a", results.Blocks[0].ToolUseID)
	require.Equal(t, "tu_b", results.Blocks[1].ToolUseID)
	require.Equal(t, "tu_c", results.Blocks[2].ToolUseID)
	require.Equal(t, "echo: b", results.Blocks[1].Content)
}

func TestRunToolFailureContinues(t *testing.T) {
	client := &fakeClient{responses: []*llm.Response{
		{
			Blocks:     []llm.ContentBlock{toolUse("tu_1", "echo", `{"fail":true}`)},
			StopReason: llm.StopToolUse,
		},
		{Blocks: []llm.ContentBlock{llm.TextBlock("the tool failed")}, StopReason: llm.StopEndTurn},
	}}
	ctrl := New(client, newTestRegistry(t), "system", Options{})

	events := collect(t, ctrl.Run(context.Background(), "break it"))

	var result *Event
	for i := range events {
		if events[i].Kind == EventToolResult {
			result = &events[i]
		}
	}
	require.NotNil(t, result)
	require.True(t, result.IsError)
	require.Contains(t, result.Text, "echo failed on purpose")

	// Loop continued: the failure went back as an is_error result.
	msgs := client.requests[1].Messages
	require.True(t, msgs[len(msgs)-1].Blocks[0].IsError)
	require.Equal(t, DoneComplete, events[len(events)-1].Reason)
}

func TestRunUnknownToolContinues(t *testing.T) {
	client := &fakeClient{responses: []*llm.Response{
		{
			Blocks:     []llm.ContentBlock{toolUse("tu_1", "no_such_tool", `{}`)},
			StopReason: llm.StopToolUse,
		},
		{Blocks: []llm.ContentBlock{llm.TextBlock("sorry")}, StopReason: llm.StopEndTurn},
	}}
	ctrl := New(client, newTestRegistry(t), "system", Options{})

	events := collect(t, ctrl.Run(context.Background(), "use a fake tool"))

	require.Len(t, client.requests, 2)
	msgs := client.requests[1].Messages
	block := msgs[len(msgs)-1].Blocks[0]
	require.True(t, block.IsError)
	require.Contains(t, block.Content, "unknown tool")
	require.Equal(t, DoneComplete, events[len(events)-1].Reason)
}

func TestRunEndpointErrorFatal(t *testing.T) {
	client := &fakeClient{errs: []error{errors.New("502 bad gateway")}}
	ctrl := New(client, newTestRegistry(t), "system", Options{})

	events := collect(t, ctrl.Run(context.Background(), "hello"))

	require.Len(t, events, 1)
	require.Equal(t, EventError, events[0].Kind)
	require.Contains(t, events[0].Text, "502")

	// The user turn stays; no rollback.
	require.Equal(t, 1, ctrl.Conversation().Len())
}

func TestRunRoundLimit(t *testing.T) {
	// The model asks for a tool on every round, forever.
	var responses []*llm.Response
	for i := 0; i < 20; i++ {
		responses = append(responses, &llm.Response{
			Blocks:     []llm.ContentBlock{toolUse(fmt.Sprintf("tu_%d", i), "echo", `{"msg":"again"}`)},
			StopReason: llm.StopToolUse,
		})
	}
	client := &fakeClient{responses: responses}
	ctrl := New(client, newTestRegistry(t), "system", Options{MaxRounds: 3})

	events := collect(t, ctrl.Run(context.Background(), "loop"))

	require.Equal(t, 3, client.calls)
	last := events[len(events)-1]
	require.Equal(t, EventDone, last.Kind)
	require.Equal(t, DoneRoundLimit, last.Reason)
}

func TestRunNoToolUseBlocksEndsTurn(t *testing.T) {
	// Stop reason says tool_use but no tool_use blocks came back. The absence
	// of blocks alone ends the loop.
	client := &fakeClient{responses: []*llm.Response{
		{Blocks: []llm.ContentBlock{llm.TextBlock("thinking out loud")}, StopReason: llm.StopToolUse},
	}}
	ctrl := New(client, newTestRegistry(t), "system", Options{})

	events := collect(t, ctrl.Run(context.Background(), "hm"))

	require.Equal(t, 1, client.calls)
	require.Equal(t, EventDone, events[len(events)-1].Kind)
	require.Equal(t, DoneComplete, events[len(events)-1].Reason)
}

func TestRunGeneratedCorrelationID(t *testing.T) {
	// Providers that omit tool ids still get correlated results.
	client := &fakeClient{responses: []*llm.Response{
		{
			Blocks:     []llm.ContentBlock{toolUse("", "echo", `{"msg":"x"}`)},
			StopReason: llm.StopToolUse,
		},
		{Blocks: []llm.ContentBlock{llm.TextBlock("ok")}, StopReason: llm.StopEndTurn},
	}}
	ctrl := New(client, newTestRegistry(t), "system", Options{})

	collect(t, ctrl.Run(context.Background(), "no id"))

	msgs := client.requests[1].Messages
	require.NotEmpty(t, msgs[len(msgs)-1].Blocks[0].ToolUseID)
}

func TestReset(t *testing.T) {
	client := &fakeClient{responses: []*llm.Response{
		{Blocks: []llm.ContentBlock{llm.TextBlock("hi")}, StopReason: llm.StopEndTurn},
	}}
	ctrl := New(client, newTestRegistry(t), "system", Options{})

	collect(t, ctrl.Run(context.Background(), "hello"))
	require.NotZero(t, ctrl.Conversation().Len())

	ctrl.Reset()
	require.Zero(t, ctrl.Conversation().Len())
	require.Zero(t, ctrl.Conversation().EstimateTokens())
}

func TestRunContextCancelled(t *testing.T) {
	client := &fakeClient{responses: []*llm.Response{
		{Blocks: []llm.ContentBlock{llm.TextBlock("hi")}, StopReason: llm.StopEndTurn},
	}}
	ctrl := New(client, newTestRegistry(t), "system", Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ch := ctrl.Run(ctx, "hello")
	// The channel must close even though nobody reads the events.
	for range ch {
	}
}

func TestRunSendsSystemAndTools(t *testing.T) {
	client := &fakeClient{responses: []*llm.Response{
		{Blocks: []llm.ContentBlock{llm.TextBlock("hi")}, StopReason: llm.StopEndTurn},
	}}
	ctrl := New(client, newTestRegistry(t), "be helpful", Options{})

	collect(t, ctrl.Run(context.Background(), "hello"))

	require.Len(t, client.requests, 1)
	req := client.requests[0]
	require.Equal(t, "be helpful", req.System)
	require.Len(t, req.Tools, 1)
	require.Equal(t, "echo", req.Tools[0].Name)
}
