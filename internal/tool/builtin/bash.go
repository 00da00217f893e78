package builtin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/deckhandai/deckhand-cli/internal/tool"
)

const (
	shellTimeout   = 30 * time.Second
	maxShellOutput = 16 * 1024 // 16 KB
)

// BashTool executes a shell command on the local machine.
// On Unix/macOS it uses sh -c; on Windows cmd /c.
type BashTool struct {
	baseDir string
}

// NewBashTool creates the bash tool with baseDir as the default working directory.
func NewBashTool(baseDir string) *BashTool { return &BashTool{baseDir: baseDir} }

func (t *BashTool) Descriptor() tool.Descriptor {
	return tool.Descriptor{
		Name:        "bash",
		Description: "Execute a shell command (sh -c on Unix, cmd /c on Windows). Use for git, grep, build tools, or any CLI. Timeout 30s, max output 16KB.",
		InputSchema: tool.ObjectSchema(map[string]tool.Property{
			"command": {Type: "string", Description: "Shell command to execute"},
			"workdir": {Type: "string", Description: "Working directory (optional, defaults to the workspace)"},
		}, "command"),
	}
}

type bashArgs struct {
	Command string `json:"command"`
	WorkDir string `json:"workdir"`
}

func (t *BashTool) Execute(ctx context.Context, input json.RawMessage) (*tool.Result, error) {
	var args bashArgs
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}
	if strings.TrimSpace(args.Command) == "" {
		return tool.Errorf("command is required"), nil
	}

	ctx, cancel := context.WithTimeout(ctx, shellTimeout)
	defer cancel()

	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "cmd", "/c", args.Command)
	} else {
		cmd = exec.CommandContext(ctx, "sh", "-c", args.Command)
	}

	cmd.Dir = args.WorkDir
	if cmd.Dir == "" {
		cmd.Dir = t.baseDir
	}

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out // merge stderr into stdout, same as shell 2>&1

	err := cmd.Run()

	result := out.String()
	if len(result) > maxShellOutput {
		result = result[:maxShellOutput] + "\n[output truncated at 16KB]"
	}
	result = strings.TrimRight(result, "\n")

	if err != nil {
		code := -1
		if cmd.ProcessState != nil {
			code = cmd.ProcessState.ExitCode()
		}
		if result == "" {
			return tool.Errorf("exit %d: %v", code, err), nil
		}
		// Include output even on non-zero exit; tools often write useful
		// information to stderr.
		return tool.Errorf("[exit %d]\n%s", code, result), nil
	}

	if result == "" {
		return tool.Ok("(command completed with no output)"), nil
	}
	return tool.Ok(result), nil
}
