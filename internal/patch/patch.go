// Package patch parses unified diffs and applies them with fuzzy hunk
// matching, tolerating drift between the patch's recorded positions and the
// file's current contents.
package patch

import (
	"fmt"
	"strings"
)

// LineKind classifies one line inside a hunk.
type LineKind int

const (
	LineContext LineKind = iota // unchanged line, present in old and new
	LineAdded                   // present only in new
	LineRemoved                 // present only in old
)

// Line is a single hunk line.
type Line struct {
	Kind LineKind
	Text string
}

// Hunk is one contiguous block of changes at an expected old-file position.
type Hunk struct {
	OldStart int // 1-based expected starting line in the old file
	OldCount int
	NewStart int
	NewCount int
	Lines    []Line
}

// oldLines returns the hunk's old-side lines (context + removed) in order.
func (h *Hunk) oldLines() []Line {
	out := make([]Line, 0, len(h.Lines))
	for _, l := range h.Lines {
		if l.Kind != LineAdded {
			out = append(out, l)
		}
	}
	return out
}

// newLines returns the hunk's new-side lines (context + added) in order.
func (h *Hunk) newLines() []string {
	out := make([]string, 0, len(h.Lines))
	for _, l := range h.Lines {
		if l.Kind != LineRemoved {
			out = append(out, l.Text)
		}
	}
	return out
}

// FileDiff holds all hunks targeting a single file.
type FileDiff struct {
	Path  string
	Hunks []Hunk
}

// Patch is a parsed unified diff covering one or more files.
type Patch struct {
	Files []FileDiff
}

// Parse reads unified-diff text into per-file hunks.
// "diff --git" and "index" lines are tolerated and skipped; paths come from
// the +++ header (or --- when the file is being deleted).
func Parse(text string) (*Patch, error) {
	p := &Patch{}
	var file *FileDiff
	var hunk *Hunk

	flushHunk := func() {
		if hunk != nil && file != nil {
			file.Hunks = append(file.Hunks, *hunk)
		}
		hunk = nil
	}
	flushFile := func() {
		flushHunk()
		if file != nil {
			p.Files = append(p.Files, *file)
		}
		file = nil
	}

	lines := strings.Split(text, "\n")
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		switch {
		case strings.HasPrefix(line, "--- "):
			flushFile()
			file = &FileDiff{Path: parsePath(line[4:])}
		case strings.HasPrefix(line, "+++ "):
			if file == nil {
				return nil, fmt.Errorf("line %d: +++ without ---", i+1)
			}
			if path := parsePath(line[4:]); path != "" {
				file.Path = path
			}
		case strings.HasPrefix(line, "@@ "):
			if file == nil {
				return nil, fmt.Errorf("line %d: hunk header outside a file section", i+1)
			}
			flushHunk()
			h, err := parseHunkHeader(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", i+1, err)
			}
			hunk = h
		case hunk != nil && strings.HasPrefix(line, " "):
			hunk.Lines = append(hunk.Lines, Line{Kind: LineContext, Text: line[1:]})
		case hunk != nil && strings.HasPrefix(line, "+"):
			hunk.Lines = append(hunk.Lines, Line{Kind: LineAdded, Text: line[1:]})
		case hunk != nil && strings.HasPrefix(line, "-"):
			hunk.Lines = append(hunk.Lines, Line{Kind: LineRemoved, Text: line[1:]})
		case hunk != nil && line == "":
			// Trailing blank inside a hunk is an empty context line unless the
			// hunk is already complete.
			if hunkComplete(hunk) {
				flushHunk()
			} else {
				hunk.Lines = append(hunk.Lines, Line{Kind: LineContext, Text: ""})
			}
		case strings.HasPrefix(line, `\ No newline`):
			// Marker only; the assembled content handles newlines itself.
		default:
			// diff --git, index, mode lines, or junk between files.
			flushHunk()
		}
	}
	flushFile()

	if len(p.Files) == 0 {
		return nil, fmt.Errorf("no file diffs found in patch text")
	}
	return p, nil
}

// parsePath strips the a/ or b/ prefix and timestamp suffix from a header path.
func parsePath(s string) string {
	if i := strings.IndexByte(s, '\t'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	if s == "/dev/null" {
		return ""
	}
	if strings.HasPrefix(s, "a/") || strings.HasPrefix(s, "b/") {
		return s[2:]
	}
	return s
}

// parseHunkHeader parses "@@ -l,s +l,s @@ optional section".
func parseHunkHeader(line string) (*Hunk, error) {
	rest := strings.TrimPrefix(line, "@@ ")
	end := strings.Index(rest, " @@")
	if end < 0 {
		return nil, fmt.Errorf("malformed hunk header %q", line)
	}
	var h Hunk
	parts := strings.Fields(rest[:end])
	if len(parts) != 2 || !strings.HasPrefix(parts[0], "-") || !strings.HasPrefix(parts[1], "+") {
		return nil, fmt.Errorf("malformed hunk header %q", line)
	}
	var err error
	h.OldStart, h.OldCount, err = parseRange(parts[0][1:])
	if err != nil {
		return nil, fmt.Errorf("malformed old range in %q", line)
	}
	h.NewStart, h.NewCount, err = parseRange(parts[1][1:])
	if err != nil {
		return nil, fmt.Errorf("malformed new range in %q", line)
	}
	return &h, nil
}

func parseRange(s string) (start, count int, err error) {
	count = 1
	if i := strings.IndexByte(s, ','); i >= 0 {
		if _, err = fmt.Sscanf(s[i+1:], "%d", &count); err != nil {
			return 0, 0, err
		}
		s = s[:i]
	}
	if _, err = fmt.Sscanf(s, "%d", &start); err != nil {
		return 0, 0, err
	}
	return start, count, nil
}

// hunkComplete reports whether the hunk already holds the line counts its
// header declared.
func hunkComplete(h *Hunk) bool {
	old, new := 0, 0
	for _, l := range h.Lines {
		switch l.Kind {
		case LineContext:
			old++
			new++
		case LineAdded:
			new++
		case LineRemoved:
			old++
		}
	}
	return old >= h.OldCount && new >= h.NewCount
}
