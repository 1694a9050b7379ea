package scan

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanText(t *testing.T, text string) Result {
	t.Helper()
	return Scan(strings.Split(text, "\n"))
}

// kinds extracts the segment kind sequence for compact assertions.
func kinds(segs []Segment) []SegmentKind {
	out := make([]SegmentKind, len(segs))
	for i, s := range segs {
		out[i] = s.Kind
	}
	return out
}

func TestScan_ProseOnly(t *testing.T) {
	res := scanText(t, "Hello\n\nWorld")
	require.Len(t, res.Segments, 1)
	assert.Equal(t, Prose, res.Segments[0].Kind)
	assert.Equal(t, 1, res.Segments[0].StartLine)
	assert.Equal(t, 3, res.Segments[0].EndLine)
	assert.Empty(t, res.Warnings)
}

func TestScan_BacktickFence(t *testing.T) {
	res := scanText(t, "Intro\n```python\nimport os\nx=1\n```\nMore")
	require.Equal(t, []SegmentKind{Prose, Fence, Code, Fence, Prose}, kinds(res.Segments))

	code := res.Segments[2]
	assert.Equal(t, "python", code.Language)
	assert.False(t, code.Exempt)
	assert.Equal(t, 3, code.StartLine)
	assert.Equal(t, 4, code.EndLine)
	assert.Equal(t, []string{"import os", "x=1"}, code.Content)
}

func TestScan_TildeFence(t *testing.T) {
	res := scanText(t, "~~~cpp\nint x;\n~~~")
	require.Equal(t, []SegmentKind{Fence, Code, Fence}, kinds(res.Segments))
	assert.Equal(t, "cpp", res.Segments[1].Language)
}

func TestScan_LongerDelimiterRuns(t *testing.T) {
	res := scanText(t, "````python\nx = 1\n`````")
	require.Equal(t, []SegmentKind{Fence, Code, Fence}, kinds(res.Segments))
}

func TestScan_MismatchedFamilyDoesNotClose(t *testing.T) {
	// A tilde fence cannot close a backtick fence; with no backtick close
	// the whole block falls back to prose.
	res := scanText(t, "```python\nx = 1\n~~~")
	require.Len(t, res.Segments, 1)
	assert.Equal(t, Prose, res.Segments[0].Kind)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, 1, res.Warnings[0].Line)
}

func TestScan_NolintModifier(t *testing.T) {
	res := scanText(t, "```python nolint\nx=1\n```")
	code := res.Segments[1]
	require.Equal(t, Code, code.Kind)
	assert.Equal(t, "python", code.Language)
	assert.True(t, code.Exempt)
}

func TestScan_BareNolintTag(t *testing.T) {
	res := scanText(t, "```nolint\nanything\n```")
	code := res.Segments[1]
	require.Equal(t, Code, code.Kind)
	assert.Equal(t, "", code.Language)
	assert.True(t, code.Exempt)
}

func TestScan_UntaggedFence(t *testing.T) {
	res := scanText(t, "```\nplain\n```")
	code := res.Segments[1]
	require.Equal(t, Code, code.Kind)
	assert.Equal(t, "", code.Language)
	assert.False(t, code.Exempt)
}

func TestScan_IndentedFenceStripsIndent(t *testing.T) {
	res := scanText(t, "- item\n  ```python\n  x = 1\n  if x:\n      pass\n  ```\ndone")
	require.Equal(t, []SegmentKind{Prose, Fence, Code, Fence, Prose}, kinds(res.Segments))

	code := res.Segments[2]
	assert.Equal(t, []string{"x = 1", "if x:", "    pass"}, code.Content)
	// Original lines are preserved alongside the dedented content.
	assert.Equal(t, []string{"  x = 1", "  if x:", "      pass"}, code.Lines)
}

func TestScan_NonConformingIndentPassesThrough(t *testing.T) {
	res := scanText(t, "  ```python\nno indent\n  ```")
	code := res.Segments[1]
	require.Equal(t, Code, code.Kind)
	assert.Equal(t, []string{"no indent"}, code.Content)
}

func TestScan_CloseRequiresSameIndentLength(t *testing.T) {
	// The close fence must share the open fence's indent length; an
	// indented ``` inside the block is content.
	res := scanText(t, "```python\n  ```\nx = 1\n```")
	require.Equal(t, []SegmentKind{Fence, Code, Fence}, kinds(res.Segments))
	assert.Equal(t, []string{"  ```", "x = 1"}, res.Segments[1].Content)
}

func TestScan_TaggedDelimiterLineIsContent(t *testing.T) {
	// Inside a fence, a delimiter line carrying a tag does not close.
	res := scanText(t, "```python\n```python\nx = 1\n```")
	require.Equal(t, []SegmentKind{Fence, Code, Fence}, kinds(res.Segments))
	assert.Equal(t, []string{"```python", "x = 1"}, res.Segments[1].Content)
}

func TestScan_EmptyBlockHasNoCodeSegment(t *testing.T) {
	res := scanText(t, "```python\n```\nafter")
	require.Equal(t, []SegmentKind{Fence, Fence, Prose}, kinds(res.Segments))
}

func TestScan_UnterminatedFenceFoldsRemainderIntoProse(t *testing.T) {
	res := scanText(t, "Intro\n```python\nx = 1\nmore text")
	require.Len(t, res.Segments, 1)
	assert.Equal(t, Prose, res.Segments[0].Kind)
	assert.Equal(t, 1, res.Segments[0].StartLine)
	assert.Equal(t, 4, res.Segments[0].EndLine)

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, 2, res.Warnings[0].Line)
	assert.Contains(t, res.Warnings[0].Message, "unterminated")
}

func TestScan_MultipleBlocks(t *testing.T) {
	res := scanText(t, "a\n```python\nx=1\n```\nb\n~~~cpp\nint y;\n~~~\nc")
	require.Equal(t,
		[]SegmentKind{Prose, Fence, Code, Fence, Prose, Fence, Code, Fence, Prose},
		kinds(res.Segments))
	assert.Equal(t, "python", res.Segments[2].Language)
	assert.Equal(t, "cpp", res.Segments[6].Language)
}

func TestScan_TwoFencesDoNotNestAcrossFamilies(t *testing.T) {
	// A backtick fence inside a tilde fence is content, not a new block.
	res := scanText(t, "~~~python\n```\nx = 1\n```\n~~~")
	require.Equal(t, []SegmentKind{Fence, Code, Fence}, kinds(res.Segments))
	assert.Equal(t, []string{"```", "x = 1", "```"}, res.Segments[1].Content)
}

// Segments must tile the document: concatenating every segment's original
// lines reproduces the input exactly, and line spans are contiguous.
func TestScan_SegmentsTileDocument(t *testing.T) {
	docs := []string{
		"Intro\n```python\nimport os\nx=1\n```\nMore",
		"```\na\n```",
		"only prose",
		"- x\n  ~~~py nolint\n  y\n  ~~~\ntail",
		"start\n```python\nunterminated",
		"",
	}
	for _, doc := range docs {
		lines := strings.Split(doc, "\n")
		res := Scan(lines)

		var rebuilt []string
		next := 1
		for _, seg := range res.Segments {
			require.Equal(t, next, seg.StartLine, "doc %q", doc)
			require.Equal(t, seg.EndLine-seg.StartLine+1, len(seg.Lines), "doc %q", doc)
			if seg.Kind == Code {
				require.Equal(t, len(seg.Lines), len(seg.Content), "doc %q", doc)
			}
			rebuilt = append(rebuilt, seg.Lines...)
			next = seg.EndLine + 1
		}
		require.Equal(t, len(lines)+1, next, "doc %q", doc)
		assert.Equal(t, lines, rebuilt, "doc %q", doc)
	}
}

func TestParseFence(t *testing.T) {
	tests := []struct {
		line   string
		ok     bool
		char   byte
		tag    string
		exempt bool
		indent int
	}{
		{line: "```", ok: true, char: '`'},
		{line: "~~~~", ok: true, char: '~'},
		{line: "```python", ok: true, char: '`', tag: "python"},
		{line: "``` Python ", ok: true, char: '`', tag: "python"},
		{line: "```python nolint", ok: true, char: '`', tag: "python", exempt: true},
		{line: "```nolint", ok: true, char: '`', tag: "", exempt: true},
		{line: "  ```py", ok: true, char: '`', tag: "py", indent: 2},
		{line: "``", ok: false},
		{line: "~~ not a fence", ok: false},
		{line: "text", ok: false},
		{line: "", ok: false},
		{line: "   ", ok: false},
	}
	for _, tt := range tests {
		f, ok := parseFence(tt.line)
		require.Equal(t, tt.ok, ok, "line %q", tt.line)
		if !ok {
			continue
		}
		assert.Equal(t, tt.char, f.char, "line %q", tt.line)
		assert.Equal(t, tt.tag, f.tag, "line %q", tt.line)
		assert.Equal(t, tt.exempt, f.exempt, "line %q", tt.line)
		assert.Len(t, f.indent, tt.indent, "line %q", tt.line)
	}
}
