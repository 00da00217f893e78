package agent

import "encoding/json"

// EventKind discriminates the events streamed to the presentation layer.
type EventKind string

const (
	EventContent    EventKind = "content"     // assistant text for this round
	EventToolUse    EventKind = "tool_use"    // model requested a tool
	EventToolResult EventKind = "tool_result" // tool finished (ok or error)
	EventError      EventKind = "error"       // endpoint failure, turn aborted
	EventDone       EventKind = "done"        // loop finished
)

// DoneReason distinguishes clean completion from the round-cap safety valve.
type DoneReason string

const (
	DoneComplete   DoneReason = "complete"
	DoneRoundLimit DoneReason = "round_limit"
)

// Event is one entry in the controller's output stream. No other channel
// carries information out of the loop.
type Event struct {
	Kind EventKind

	// content / error / tool_result payload
	Text string

	// tool_use and tool_result
	Tool  string
	Input json.RawMessage

	// tool_result: payload is an error message
	IsError bool

	// done
	Reason DoneReason
}
