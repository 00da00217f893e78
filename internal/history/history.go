// Package history persists session statistics and an append-only action log,
// so users can see what the agent did across sessions.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// State tracks usage totals across sessions.
type State struct {
	TotalSessions     int       `json:"total_sessions"`
	TotalMessages     int       `json:"total_messages"`
	TotalToolCalls    int       `json:"total_tool_calls"`
	TotalToolFailures int       `json:"total_tool_failures"`
	LastSessionAt     time.Time `json:"last_session_at,omitempty"`

	path string
}

// LoadState reads state from dir, returning a fresh state if not found.
func LoadState(dir string) *State {
	s := &State{path: filepath.Join(dir, "state.json")}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return s
	}
	_ = json.Unmarshal(data, s)
	return s
}

// Save persists the state to disk.
func (s *State) Save() error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}

// Action is one logged agent action.
type Action struct {
	Time    time.Time `json:"time"`
	Session string    `json:"session"`
	Kind    string    `json:"kind"` // "message" or "tool_call"
	Tool    string    `json:"tool,omitempty"`
	Success bool      `json:"success"`
}

// Recorder appends actions for one session to the JSONL action log and keeps
// the state counters current.
type Recorder struct {
	sessionID string
	file      *os.File
	state     *State
}

// NewRecorder opens the action log in dir and starts a new session.
func NewRecorder(dir string, state *State) (*Recorder, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "actions.jsonl"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("open action log: %w", err)
	}

	state.TotalSessions++
	state.LastSessionAt = time.Now()

	return &Recorder{
		sessionID: uuid.NewString(),
		file:      f,
		state:     state,
	}, nil
}

// SessionID returns this session's id.
func (r *Recorder) SessionID() string {
	return r.sessionID
}

// Message records one user message.
func (r *Recorder) Message() {
	r.state.TotalMessages++
	r.append(Action{Time: time.Now(), Session: r.sessionID, Kind: "message", Success: true})
}

// ToolCall records one tool invocation and its outcome.
func (r *Recorder) ToolCall(tool string, success bool) {
	r.state.TotalToolCalls++
	if !success {
		r.state.TotalToolFailures++
	}
	r.append(Action{Time: time.Now(), Session: r.sessionID, Kind: "tool_call", Tool: tool, Success: success})
}

func (r *Recorder) append(a Action) {
	data, err := json.Marshal(a)
	if err != nil {
		return
	}
	// Best effort; a failed log write never blocks the conversation.
	_, _ = r.file.Write(append(data, '\n'))
}

// Close saves the state and closes the log.
func (r *Recorder) Close() error {
	if err := r.state.Save(); err != nil {
		return err
	}
	return r.file.Close()
}
