package patch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultSearchRadius bounds the fuzzy search: how far (in lines) from the
// declared position a hunk window may be found.
const DefaultSearchRadius = 250

// Options controls patch application.
type Options struct {
	// DryRun reports the would-be changes without touching disk.
	DryRun bool
	// Backup writes <file>.orig with the original content before overwriting.
	Backup bool
	// SearchRadius overrides DefaultSearchRadius when positive.
	SearchRadius int
}

// HunkResult records the outcome of one hunk.
type HunkResult struct {
	Index    int // 0-based hunk index within the file
	OldStart int // declared 1-based position
	Offset   int // lines away from the declared position where it applied
	Applied  bool
	Reason   string // failure explanation when !Applied
}

// FileResult records the outcome for one file. A failed hunk never blocks the
// remaining hunks or files.
type FileResult struct {
	Path    string
	Err     string // file-level error (unreadable, not writable)
	Hunks   []HunkResult
	Applied int
	Failed  int
	Diff    string // would-be unified diff (dry-run only)
}

// Report is the per-file, per-hunk outcome of applying a patch.
type Report struct {
	Files []FileResult
}

// AllApplied reports whether every hunk of every file applied cleanly.
func (r *Report) AllApplied() bool {
	for _, f := range r.Files {
		if f.Err != "" || f.Failed > 0 {
			return false
		}
	}
	return true
}

// Summary formats the report for display and for feeding back to the model.
func (r *Report) Summary() string {
	var sb strings.Builder
	for _, f := range r.Files {
		if f.Err != "" {
			fmt.Fprintf(&sb, "%s: error: %s\n", f.Path, f.Err)
			continue
		}
		fmt.Fprintf(&sb, "%s: %d/%d hunks applied\n", f.Path, f.Applied, f.Applied+f.Failed)
		for _, h := range f.Hunks {
			switch {
			case h.Applied && h.Offset != 0:
				fmt.Fprintf(&sb, "  hunk %d @ line %d: applied at offset %+d\n", h.Index+1, h.OldStart, h.Offset)
			case !h.Applied:
				fmt.Fprintf(&sb, "  hunk %d @ line %d: FAILED: %s\n", h.Index+1, h.OldStart, h.Reason)
			}
		}
		if f.Diff != "" {
			sb.WriteString(f.Diff)
			if !strings.HasSuffix(f.Diff, "\n") {
				sb.WriteString("\n")
			}
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Apply applies a parsed patch against files under dir. Files are processed
// independently; one file's failure does not block the others.
func Apply(p *Patch, dir string, opts Options) *Report {
	report := &Report{}
	for _, file := range p.Files {
		report.Files = append(report.Files, applyFile(&file, dir, opts))
	}
	return report
}

func applyFile(f *FileDiff, dir string, opts Options) FileResult {
	res := FileResult{Path: f.Path}
	full := filepath.Join(dir, f.Path)

	content, mode, err := readTarget(full, f)
	if err != nil {
		res.Err = err.Error()
		return res
	}

	lines, trailingNewline := splitLines(content)

	radius := opts.SearchRadius
	if radius <= 0 {
		radius = DefaultSearchRadius
	}

	// Locate every hunk against the original line array first, then apply in
	// descending file position so earlier edits don't shift the positions of
	// later ones.
	type placed struct {
		hunk *Hunk
		pos  int
		idx  int
	}
	var toApply []placed
	for i := range f.Hunks {
		h := &f.Hunks[i]
		hr := HunkResult{Index: i, OldStart: h.OldStart}
		pos, reason := locate(lines, h, radius)
		if reason != "" {
			hr.Reason = reason
			res.Failed++
			res.Hunks = append(res.Hunks, hr)
			continue
		}
		hr.Applied = true
		hr.Offset = pos - (h.OldStart - 1)
		if len(h.oldLines()) == 0 {
			// Insertions measure offset against the insert index instead.
			hr.Offset = pos - h.OldStart
		}
		res.Applied++
		res.Hunks = append(res.Hunks, hr)
		toApply = append(toApply, placed{hunk: h, pos: pos, idx: i})
	}

	sort.Slice(toApply, func(i, j int) bool { return toApply[i].pos > toApply[j].pos })
	for _, pl := range toApply {
		lines = splice(lines, pl.pos, pl.hunk)
	}

	newContent := joinLines(lines, trailingNewline)
	if newContent == content {
		return res
	}

	if opts.DryRun {
		res.Diff = Generate(f.Path, content, newContent)
		return res
	}

	if opts.Backup {
		if err := os.WriteFile(full+".orig", []byte(content), mode); err != nil {
			res.Err = fmt.Sprintf("write backup: %v", err)
			return res
		}
	}
	if dir := filepath.Dir(full); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			res.Err = fmt.Sprintf("create parent dirs: %v", err)
			return res
		}
	}
	if err := os.WriteFile(full, []byte(newContent), mode); err != nil {
		res.Err = fmt.Sprintf("write: %v", err)
	}
	return res
}

// readTarget reads the file under patch. A missing file is fine when the
// patch only adds lines (file creation); anything else is a file-level error.
func readTarget(path string, f *FileDiff) (string, os.FileMode, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		mode := os.FileMode(0644)
		if info, statErr := os.Stat(path); statErr == nil {
			mode = info.Mode().Perm()
		}
		return string(data), mode, nil
	}
	if os.IsNotExist(err) && isCreation(f) {
		return "", 0644, nil
	}
	return "", 0, fmt.Errorf("read: %w", err)
}

func isCreation(f *FileDiff) bool {
	for _, h := range f.Hunks {
		if len(h.oldLines()) > 0 {
			return false
		}
	}
	return true
}

// locate finds the position where a hunk's old-side lines sit in the file.
//
// First attempt: verbatim match at the declared line. Fallback: scan outward
// from the declared line (offset 0, -1, +1, -2, +2, ...) up to radius,
// accepting the nearest window where every removed line matches exactly and
// at least two thirds of the context lines match exactly. Ties prefer the
// earlier (negative) offset. Deterministic by construction.
func locate(lines []string, h *Hunk, radius int) (int, string) {
	want := h.oldLines()
	if len(want) == 0 {
		// Pure insertion: OldStart names the line after which to insert.
		pos := h.OldStart
		if pos > len(lines) {
			pos = len(lines)
		}
		if pos < 0 {
			pos = 0
		}
		return pos, ""
	}

	maxPos := len(lines) - len(want)
	if maxPos < 0 {
		return 0, fmt.Sprintf("file has %d lines, hunk needs %d", len(lines), len(want))
	}

	declared := h.OldStart - 1
	if declared < 0 {
		declared = 0
	}
	if declared > maxPos {
		declared = maxPos
	}

	if matchWindow(lines, declared, want, true) {
		return declared, ""
	}

	for d := 0; d <= radius; d++ {
		for _, pos := range []int{declared - d, declared + d} {
			if pos < 0 || pos > maxPos {
				continue
			}
			if matchWindow(lines, pos, want, false) {
				return pos, ""
			}
			if d == 0 {
				break // same position twice
			}
		}
	}
	return 0, fmt.Sprintf("no acceptable window within %d lines of line %d", radius, h.OldStart)
}

// matchWindow checks a candidate window. Exact mode requires every line to
// match; fuzzy mode requires removed lines to match exactly and >= 2/3 of
// context lines to match exactly.
func matchWindow(lines []string, pos int, want []Line, exact bool) bool {
	contextTotal, contextMatched := 0, 0
	for i, w := range want {
		got := lines[pos+i]
		switch w.Kind {
		case LineRemoved:
			if got != w.Text {
				return false
			}
		case LineContext:
			contextTotal++
			if got == w.Text {
				contextMatched++
			} else if exact {
				return false
			}
		}
	}
	if exact || contextTotal == 0 {
		return true
	}
	return contextMatched*3 >= contextTotal*2
}

// splice replaces the hunk's old-side window at pos with its new-side lines.
func splice(lines []string, pos int, h *Hunk) []string {
	oldLen := len(h.oldLines())
	newSide := h.newLines()

	out := make([]string, 0, len(lines)-oldLen+len(newSide))
	out = append(out, lines[:pos]...)
	out = append(out, newSide...)
	out = append(out, lines[pos+oldLen:]...)
	return out
}

// splitLines splits content into lines without newline terminators,
// remembering whether the content ended with one.
func splitLines(content string) ([]string, bool) {
	if content == "" {
		return nil, true
	}
	trailing := strings.HasSuffix(content, "\n")
	if trailing {
		content = content[:len(content)-1]
	}
	return strings.Split(content, "\n"), trailing
}

func joinLines(lines []string, trailingNewline bool) string {
	if len(lines) == 0 {
		return ""
	}
	s := strings.Join(lines, "\n")
	if trailingNewline {
		s += "\n"
	}
	return s
}
