// Package agent drives the agentic tool-use loop: model request, tool
// invocation, tool results, repeat, until the model stops asking for tools.
package agent

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/deckhandai/deckhand-cli/internal/conv"
	"github.com/deckhandai/deckhand-cli/internal/llm"
	"github.com/deckhandai/deckhand-cli/internal/tool"
)

// DefaultMaxRounds caps model→tool→model cycles per user message. A safety
// valve against runaway tool chains, not a performance tactic.
const DefaultMaxRounds = 10

// Options configures a Controller.
type Options struct {
	// MaxRounds overrides DefaultMaxRounds when positive.
	MaxRounds int
	Logger    *zap.Logger
}

// Controller turns one user message into a finished assistant reply,
// performing as many tool round-trips as the model requests. One Controller
// per conversation; the loop is strictly sequential.
type Controller struct {
	client    llm.Client
	registry  *tool.Registry
	log       *conv.Log
	system    string
	maxRounds int
	logger    *zap.Logger
}

// New creates a controller with an empty conversation.
func New(client llm.Client, registry *tool.Registry, system string, opts Options) *Controller {
	maxRounds := opts.MaxRounds
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		client:    client,
		registry:  registry,
		log:       conv.New(),
		system:    system,
		maxRounds: maxRounds,
		logger:    logger,
	}
}

// Conversation exposes the underlying log (turn count, token estimate).
func (c *Controller) Conversation() *conv.Log {
	return c.log
}

// Reset empties the conversation state and its token counters.
func (c *Controller) Reset() {
	c.log.Reset()
}

// Run processes one user message and returns the event stream. The channel is
// closed when the turn finishes, errors out, or the context is cancelled; on
// cancellation the conversation is left at its last fully-appended turn.
func (c *Controller) Run(ctx context.Context, userMsg string) <-chan Event {
	events := make(chan Event)
	go func() {
		defer close(events)
		c.run(ctx, userMsg, events)
	}()
	return events
}

func (c *Controller) run(ctx context.Context, userMsg string, events chan<- Event) {
	emit := func(e Event) bool {
		select {
		case events <- e:
			return true
		case <-ctx.Done():
			return false
		}
	}

	c.log.Append(llm.UserMessage(userMsg))

	for round := 0; round < c.maxRounds; round++ {
		resp, err := c.client.CreateMessage(ctx, llm.Request{
			System:   c.system,
			Messages: c.log.Snapshot(),
			Tools:    c.registry.Specs(),
		})
		if err != nil {
			// Endpoint errors are fatal to the turn. Completed turns stay.
			c.logger.Error("model request failed", zap.Error(err))
			emit(Event{Kind: EventError, Text: err.Error()})
			return
		}

		for _, b := range resp.Blocks {
			if b.Type == llm.BlockText && b.Text != "" {
				if !emit(Event{Kind: EventContent, Text: b.Text}) {
					return
				}
			}
		}

		c.log.Append(llm.Message{Role: llm.RoleAssistant, Blocks: resp.Blocks})

		uses := resp.ToolUses()
		// The explicit stop indicator and the absence of tool_use blocks are
		// independent termination conditions; either alone ends the loop.
		if resp.StopReason != llm.StopToolUse || len(uses) == 0 {
			emit(Event{Kind: EventDone, Reason: DoneComplete})
			return
		}

		results := make([]llm.ContentBlock, 0, len(uses))
		for _, use := range uses {
			if !emit(Event{Kind: EventToolUse, Tool: use.Name, Input: use.Input}) {
				return
			}

			id := use.ID
			if id == "" {
				id = uuid.NewString()
			}

			c.logger.Debug("dispatching tool", zap.String("tool", use.Name), zap.Int("round", round))
			result := c.registry.Dispatch(ctx, use.Name, use.Input)

			if !emit(Event{Kind: EventToolResult, Tool: use.Name, Text: result.Text(), IsError: !result.Success}) {
				return
			}
			results = append(results, llm.ToolResultBlock(id, result.Text(), !result.Success))
		}

		// All tool results for this round land in a single turn before the
		// next model request.
		c.log.Append(llm.ToolResultMessage(results))
	}

	c.logger.Warn("round cap reached with tool calls still pending", zap.Int("max_rounds", c.maxRounds))
	emit(Event{Kind: EventDone, Reason: DoneRoundLimit})
}
