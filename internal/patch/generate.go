package patch

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// contextLines is the number of unchanged lines kept around each change when
// generating a unified diff.
const contextLines = 3

type lineOp struct {
	kind LineKind
	text string
}

// Generate produces a unified diff between two versions of a file. Returns
// the empty string when the contents are identical. Applying the result to
// oldContent reproduces newContent.
func Generate(path, oldContent, newContent string) string {
	if oldContent == newContent {
		return ""
	}

	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(oldContent, newContent)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	ops := diffsToOps(diffs)
	hunks := groupOps(ops, contextLines)
	if len(hunks) == 0 {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- a/%s\n", path)
	fmt.Fprintf(&sb, "+++ b/%s\n", path)
	for _, h := range hunks {
		oldStart := h.OldStart
		if h.OldCount == 0 {
			oldStart--
		}
		newStart := h.NewStart
		if h.NewCount == 0 {
			newStart--
		}
		fmt.Fprintf(&sb, "@@ -%d,%d +%d,%d @@\n", oldStart, h.OldCount, newStart, h.NewCount)
		for _, l := range h.Lines {
			switch l.Kind {
			case LineContext:
				sb.WriteString(" ")
			case LineAdded:
				sb.WriteString("+")
			case LineRemoved:
				sb.WriteString("-")
			}
			sb.WriteString(l.Text)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// diffsToOps flattens line-mode diffs into one op per line.
func diffsToOps(diffs []diffmatchpatch.Diff) []lineOp {
	var ops []lineOp
	for _, d := range diffs {
		var kind LineKind
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			kind = LineContext
		case diffmatchpatch.DiffInsert:
			kind = LineAdded
		case diffmatchpatch.DiffDelete:
			kind = LineRemoved
		}
		text := d.Text
		if strings.HasSuffix(text, "\n") {
			text = text[:len(text)-1]
		}
		if text == "" && d.Text == "" {
			continue
		}
		for _, line := range strings.Split(text, "\n") {
			ops = append(ops, lineOp{kind: kind, text: line})
		}
	}
	return ops
}

// groupOps clusters change runs into hunks, keeping ctx unchanged lines of
// surrounding context and merging runs closer than 2*ctx lines.
func groupOps(ops []lineOp, ctx int) []Hunk {
	// Change blocks as half-open index ranges into ops.
	type block struct{ start, end int }
	var blocks []block
	for i := 0; i < len(ops); i++ {
		if ops[i].kind == LineContext {
			continue
		}
		j := i
		for j < len(ops) && ops[j].kind != LineContext {
			j++
		}
		blocks = append(blocks, block{i, j})
		i = j
	}
	if len(blocks) == 0 {
		return nil
	}

	// Merge blocks whose gap fits inside shared context.
	merged := []block{blocks[0]}
	for _, b := range blocks[1:] {
		last := &merged[len(merged)-1]
		if b.start-last.end <= 2*ctx {
			last.end = b.end
		} else {
			merged = append(merged, b)
		}
	}

	// Old/new line numbers (1-based) at each op index.
	oldAt := make([]int, len(ops)+1)
	newAt := make([]int, len(ops)+1)
	oldN, newN := 1, 1
	for i, op := range ops {
		oldAt[i], newAt[i] = oldN, newN
		switch op.kind {
		case LineContext:
			oldN++
			newN++
		case LineAdded:
			newN++
		case LineRemoved:
			oldN++
		}
	}
	oldAt[len(ops)], newAt[len(ops)] = oldN, newN

	var hunks []Hunk
	for _, b := range merged {
		start := b.start - ctx
		if start < 0 {
			start = 0
		}
		end := b.end + ctx
		if end > len(ops) {
			end = len(ops)
		}

		h := Hunk{OldStart: oldAt[start], NewStart: newAt[start]}
		for _, op := range ops[start:end] {
			h.Lines = append(h.Lines, Line{Kind: op.kind, Text: op.text})
			switch op.kind {
			case LineContext:
				h.OldCount++
				h.NewCount++
			case LineAdded:
				h.NewCount++
			case LineRemoved:
				h.OldCount++
			}
		}
		hunks = append(hunks, h)
	}
	return hunks
}
