// Package scan tokenizes a markdown document into an ordered sequence of
// prose, fence, and code segments using an explicit line-scanning state
// machine. The scanner tracks the opening delimiter family and indentation,
// which removes the ambiguity a single-regex matcher has around nested
// fences of different families and unterminated blocks.
package scan

import (
	"strings"
)

// SegmentKind classifies a segment of a document.
type SegmentKind int

const (
	// Prose is text outside any fenced code block.
	Prose SegmentKind = iota
	// Fence is a single fence delimiter line (open or close).
	Fence
	// Code is the content strictly between an open and close fence.
	Code
)

func (k SegmentKind) String() string {
	switch k {
	case Prose:
		return "prose"
	case Fence:
		return "fence"
	case Code:
		return "code"
	}
	return "unknown"
}

// NolintTag is the fence modifier that exempts a code block from analysis.
const NolintTag = "nolint"

// Segment is a contiguous run of document lines. Segments are produced in
// document order, are non-overlapping, and tile the document exactly:
// concatenating every segment's Lines reproduces the input line for line.
type Segment struct {
	Kind SegmentKind

	// StartLine and EndLine are 1-based inclusive document line numbers.
	StartLine int
	EndLine   int

	// Lines holds the original, unmodified document lines of the segment.
	Lines []string

	// Language is the normalized fence tag for Code segments ("" when the
	// fence was untagged). The nolint modifier is stripped.
	Language string
	// Exempt marks a Code segment whose fence carried the nolint modifier.
	Exempt bool
	// Content holds the Code segment's lines with the fence's own
	// indentation stripped. Same length as Lines. Lines that do not carry
	// the fence's indentation pass through unmodified.
	Content []string
}

// Warning records a non-fatal parse irregularity at a document line.
type Warning struct {
	Line    int // 1-based
	Message string
}

// Result is the output of a document scan.
type Result struct {
	Segments []Segment
	Warnings []Warning
}

// fence describes a parsed fence delimiter line.
type fence struct {
	indent string // leading whitespace of the fence line
	char   byte   // '`' or '~'
	count  int    // number of delimiter characters, >= 3
	tag    string // normalized language tag, nolint modifier stripped
	exempt bool
}

// parseFence parses a line as a fence delimiter. A fence line is optional
// leading whitespace followed by three or more identical backticks or
// tildes, optionally followed by a language tag and the nolint modifier.
func parseFence(line string) (fence, bool) {
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" {
		return fence{}, false
	}
	ch := trimmed[0]
	if ch != '`' && ch != '~' {
		return fence{}, false
	}
	count := 0
	for count < len(trimmed) && trimmed[count] == ch {
		count++
	}
	if count < 3 {
		return fence{}, false
	}

	f := fence{
		indent: line[:len(line)-len(trimmed)],
		char:   ch,
		count:  count,
	}

	fields := strings.Fields(trimmed[count:])
	if len(fields) > 0 {
		f.tag = strings.ToLower(fields[0])
	}
	// "```nolint" exempts an untagged block; "```python nolint" exempts a
	// tagged one. Either way the modifier is not part of the language tag.
	if f.tag == NolintTag {
		f.tag = ""
		f.exempt = true
	} else if len(fields) > 1 && strings.ToLower(fields[1]) == NolintTag {
		f.exempt = true
	}
	return f, true
}

// closes reports whether a line closes the fence f: same delimiter family,
// three or more repeats, the same leading-whitespace length, and nothing
// but whitespace after the delimiter run. A delimiter line carrying a tag
// is treated as block content, not a close.
func (f fence) closes(line string) bool {
	g, ok := parseFence(line)
	if !ok {
		return false
	}
	return g.char == f.char && len(g.indent) == len(f.indent) &&
		g.tag == "" && !g.exempt
}

// dedent strips the fence's own indentation from a content line. Lines that
// do not start with the fence's indent pass through unmodified, tolerating
// inconsistent indentation inside the block.
func (f fence) dedent(line string) string {
	if f.indent == "" {
		return line
	}
	return strings.TrimPrefix(line, f.indent)
}

// Scan tokenizes document lines into segments. An unterminated fence is
// folded back into prose and recorded as a warning at the open-fence line.
func Scan(lines []string) Result {
	var res Result

	proseStart := -1 // 0-based index of the current prose run, -1 if none
	flushProse := func(end int) {
		// end is exclusive, 0-based.
		if proseStart < 0 {
			return
		}
		res.Segments = append(res.Segments, Segment{
			Kind:      Prose,
			StartLine: proseStart + 1,
			EndLine:   end,
			Lines:     lines[proseStart:end],
		})
		proseStart = -1
	}

	i := 0
	for i < len(lines) {
		f, ok := parseFence(lines[i])
		if !ok {
			if proseStart < 0 {
				proseStart = i
			}
			i++
			continue
		}

		// Look ahead for the matching close fence.
		closeAt := -1
		for j := i + 1; j < len(lines); j++ {
			if f.closes(lines[j]) {
				closeAt = j
				break
			}
		}
		if closeAt < 0 {
			// Unterminated: the would-be fence line and the remainder of
			// the document stay prose.
			res.Warnings = append(res.Warnings, Warning{
				Line:    i + 1,
				Message: "unterminated code fence",
			})
			if proseStart < 0 {
				proseStart = i
			}
			break
		}

		flushProse(i)
		res.Segments = append(res.Segments, Segment{
			Kind:      Fence,
			StartLine: i + 1,
			EndLine:   i + 1,
			Lines:     lines[i : i+1],
		})
		if closeAt > i+1 {
			content := make([]string, 0, closeAt-i-1)
			for _, l := range lines[i+1 : closeAt] {
				content = append(content, f.dedent(l))
			}
			res.Segments = append(res.Segments, Segment{
				Kind:      Code,
				StartLine: i + 2,
				EndLine:   closeAt,
				Lines:     lines[i+1 : closeAt],
				Language:  f.tag,
				Exempt:    f.exempt,
				Content:   content,
			})
		}
		res.Segments = append(res.Segments, Segment{
			Kind:      Fence,
			StartLine: closeAt + 1,
			EndLine:   closeAt + 1,
			Lines:     lines[closeAt : closeAt+1],
		})
		i = closeAt + 1
	}
	flushProse(len(lines))

	return res
}
