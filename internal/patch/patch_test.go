package patch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSingleFile(t *testing.T) {
	p, err := Parse(`--- a/hello.go
+++ b/hello.go
@@ -2,3 +2,3 @@
 import "fmt"
-func main() {
+func main() { // entry
 	fmt.Println("hi")
`)
	require.NoError(t, err)
	require.Len(t, p.Files, 1)
	require.Equal(t, "hello.go", p.Files[0].Path)
	require.Len(t, p.Files[0].Hunks, 1)

	h := p.Files[0].Hunks[0]
	require.Equal(t, 2, h.OldStart)
	require.Equal(t, 3, h.OldCount)
	require.Equal(t, 2, h.NewStart)
	require.Equal(t, 3, h.NewCount)
	require.Len(t, h.Lines, 4)
	require.Equal(t, LineContext, h.Lines[0].Kind)
	require.Equal(t, LineRemoved, h.Lines[1].Kind)
	require.Equal(t, LineAdded, h.Lines[2].Kind)
}

func TestParseGitStyleHeaders(t *testing.T) {
	p, err := Parse(`diff --git a/pkg/x.go b/pkg/x.go
index 3f1a2b..9c8d7e 100644
--- a/pkg/x.go
+++ b/pkg/x.go
@@ -1 +1 @@
-old
+new
`)
	require.NoError(t, err)
	require.Len(t, p.Files, 1)
	require.Equal(t, "pkg/x.go", p.Files[0].Path)
}

func TestParseMultipleFiles(t *testing.T) {
	p, err := Parse(`--- a/one.txt
+++ b/one.txt
@@ -1 +1 @@
-a
+A
--- a/two.txt
+++ b/two.txt
@@ -1 +1 @@
-b
+B
`)
	require.NoError(t, err)
	require.Len(t, p.Files, 2)
	require.Equal(t, "one.txt", p.Files[0].Path)
	require.Equal(t, "two.txt", p.Files[1].Path)
}

func TestParseCreation(t *testing.T) {
	p, err := Parse(`--- /dev/null
+++ b/fresh.txt
@@ -0,0 +1,2 @@
+hello
+world
`)
	require.NoError(t, err)
	require.Equal(t, "fresh.txt", p.Files[0].Path)
	h := p.Files[0].Hunks[0]
	require.Equal(t, 0, h.OldCount)
	require.Len(t, h.Lines, 2)
	require.Equal(t, LineAdded, h.Lines[0].Kind)
}

func TestParseRangeWithoutCount(t *testing.T) {
	// "@@ -3 +3 @@" means a single line on each side.
	p, err := Parse(`--- a/f
+++ b/f
@@ -3 +3 @@
-x
+y
`)
	require.NoError(t, err)
	h := p.Files[0].Hunks[0]
	require.Equal(t, 3, h.OldStart)
	require.Equal(t, 1, h.OldCount)
	require.Equal(t, 1, h.NewCount)
}

func TestParseNoNewlineMarker(t *testing.T) {
	p, err := Parse(`--- a/f
+++ b/f
@@ -1 +1 @@
-old
+new
\ No newline at end of file
`)
	require.NoError(t, err)
	require.Len(t, p.Files[0].Hunks[0].Lines, 2)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("")
	require.Error(t, err)

	_, err = Parse("just some prose\nwith no diff in it\n")
	require.Error(t, err)

	_, err = Parse("+++ b/f\n@@ -1 +1 @@\n-x\n+y\n")
	require.Error(t, err)
	require.Contains(t, err.Error(), "+++ without ---")

	_, err = Parse("--- a/f\n+++ b/f\n@@ bogus @@\n")
	require.Error(t, err)
}

func TestOldAndNewLines(t *testing.T) {
	h := Hunk{Lines: []Line{
		{Kind: LineContext, Text: "keep"},
		{Kind: LineRemoved, Text: "gone"},
		{Kind: LineAdded, Text: "fresh"},
		{Kind: LineContext, Text: "tail"},
	}}
	old := h.oldLines()
	require.Len(t, old, 3)
	require.Equal(t, "gone", old[1].Text)

	require.Equal(t, []string{"keep", "fresh", "tail"}, h.newLines())
}
