// Package builtin provides the built-in tools the model can invoke: file I/O,
// shell execution, web search, patch application, and service integrations.
package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/deckhandai/deckhand-cli/internal/tool"
)

const (
	maxReadSize    = 256 * 1024  // 256 KB
	maxWriteSize   = 1024 * 1024 // 1 MB
	maxListEntries = 200
)

// blockedPrefixes lists path prefixes that writes are never allowed to touch.
var blockedPrefixes = []string{
	"/bin", "/sbin", "/usr/bin", "/usr/sbin",
	"/etc", "/lib", "/lib64",
	"/System", "/Library/System", "/private/etc",
	"/Windows", "C:\\Windows",
}

func isBlockedPath(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return true
	}
	for _, prefix := range blockedPrefixes {
		if strings.HasPrefix(abs, prefix) {
			return true
		}
	}
	return false
}

// resolve joins a tool-supplied path with the workspace base directory.
func resolve(baseDir, path string) string {
	if filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}

// ── read_file ─────────────────────────────────────────────────────────────────

// ReadFileTool reads a file's contents, truncated at 256KB.
type ReadFileTool struct {
	baseDir string
}

// NewReadFileTool creates the read_file tool rooted at baseDir.
func NewReadFileTool(baseDir string) *ReadFileTool { return &ReadFileTool{baseDir: baseDir} }

func (t *ReadFileTool) Descriptor() tool.Descriptor {
	return tool.Descriptor{
		Name:        "read_file",
		Description: "Read a file and return its contents as text. Large files are truncated at 256KB.",
		InputSchema: tool.ObjectSchema(map[string]tool.Property{
			"path": {Type: "string", Description: "File path, relative to the workspace or absolute"},
		}, "path"),
	}
}

type pathArgs struct {
	Path string `json:"path"`
}

func (t *ReadFileTool) Execute(_ context.Context, input json.RawMessage) (*tool.Result, error) {
	var args pathArgs
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}
	path := resolve(t.baseDir, args.Path)

	info, err := os.Stat(path)
	if err != nil {
		return tool.Errorf("%v", err), nil
	}
	if info.IsDir() {
		return tool.Errorf("%q is a directory — use list_files to browse it", args.Path), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return tool.Errorf("%v", err), nil
	}
	defer f.Close()

	buf := make([]byte, maxReadSize)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		return tool.Errorf("read: %v", err), nil
	}
	out := string(buf[:n])
	if info.Size() > maxReadSize {
		out += fmt.Sprintf("\n[truncated: showed %dKB of %dKB]", maxReadSize/1024, info.Size()/1024)
	}
	return tool.Ok(out), nil
}

// ── write_file ────────────────────────────────────────────────────────────────

// WriteFileTool creates or overwrites a file. System paths are blocked.
type WriteFileTool struct {
	baseDir string
}

// NewWriteFileTool creates the write_file tool rooted at baseDir.
func NewWriteFileTool(baseDir string) *WriteFileTool { return &WriteFileTool{baseDir: baseDir} }

func (t *WriteFileTool) Descriptor() tool.Descriptor {
	return tool.Descriptor{
		Name:        "write_file",
		Description: "Create or overwrite a file with the given content. Parent directories are created. Writes to system paths (/etc, /bin, etc.) are blocked. Max 1MB.",
		InputSchema: tool.ObjectSchema(map[string]tool.Property{
			"path":    {Type: "string", Description: "File path, relative to the workspace or absolute"},
			"content": {Type: "string", Description: "Full file content"},
		}, "path", "content"),
	}
}

type writeArgs struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

func (t *WriteFileTool) Execute(_ context.Context, input json.RawMessage) (*tool.Result, error) {
	var args writeArgs
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}
	path := resolve(t.baseDir, args.Path)

	if isBlockedPath(path) {
		return tool.Errorf("writing to %q is not allowed (system path)", args.Path), nil
	}
	if len(args.Content) > maxWriteSize {
		return tool.Errorf("content too large (%dKB, max 1MB)", len(args.Content)/1024), nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return tool.Errorf("create parent dirs: %v", err), nil
		}
	}
	if err := os.WriteFile(path, []byte(args.Content), 0644); err != nil {
		return tool.Errorf("write: %v", err), nil
	}
	abs, _ := filepath.Abs(path)
	return tool.Ok(fmt.Sprintf("wrote %d bytes to %s", len(args.Content), abs)), nil
}

// ── list_files ────────────────────────────────────────────────────────────────

// ListFilesTool lists a directory's entries with type and size.
type ListFilesTool struct {
	baseDir string
}

// NewListFilesTool creates the list_files tool rooted at baseDir.
func NewListFilesTool(baseDir string) *ListFilesTool { return &ListFilesTool{baseDir: baseDir} }

func (t *ListFilesTool) Descriptor() tool.Descriptor {
	return tool.Descriptor{
		Name:        "list_files",
		Description: "List the entries of a directory (name, type, size). Defaults to the workspace root.",
		InputSchema: tool.ObjectSchema(map[string]tool.Property{
			"path": {Type: "string", Description: "Directory path (optional, defaults to workspace root)"},
		}),
	}
}

func (t *ListFilesTool) Execute(_ context.Context, input json.RawMessage) (*tool.Result, error) {
	var args pathArgs
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}
	path := resolve(t.baseDir, args.Path)
	if args.Path == "" {
		path = t.baseDir
		if path == "" {
			var err error
			path, err = os.Getwd()
			if err != nil {
				return tool.Errorf("get cwd: %v", err), nil
			}
		}
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return tool.Errorf("%v", err), nil
	}
	abs, _ := filepath.Abs(path)
	if len(entries) == 0 {
		return tool.Ok(abs + "  (empty)"), nil
	}

	var sb strings.Builder
	sb.WriteString(abs + "\n")
	for i, e := range entries {
		if i >= maxListEntries {
			fmt.Fprintf(&sb, "  ... (%d more)\n", len(entries)-maxListEntries)
			break
		}
		kind := "file"
		extra := ""
		if e.IsDir() {
			kind = "dir "
		} else if info, _ := e.Info(); info != nil {
			sz := info.Size()
			switch {
			case sz >= 1<<20:
				extra = fmt.Sprintf(" (%dMB)", sz>>20)
			case sz >= 1<<10:
				extra = fmt.Sprintf(" (%dKB)", sz>>10)
			default:
				extra = fmt.Sprintf(" (%dB)", sz)
			}
		}
		fmt.Fprintf(&sb, "  [%s] %s%s\n", kind, e.Name(), extra)
	}
	return tool.Ok(strings.TrimRight(sb.String(), "\n")), nil
}
