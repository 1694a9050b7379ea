// Package buffer reconstructs a synthetic, line-count-preserving source
// buffer from a scanned document. Every document line maps to exactly one
// buffer line at the same ordinal position, so analyzer diagnostics against
// the buffer need no coordinate translation back to the document.
package buffer

import (
	"strings"

	"github.com/OxfordRSE/lint-md-codeblocks/internal/lang"
	"github.com/OxfordRSE/lint-md-codeblocks/internal/scan"
)

// Reconstruct builds the synthetic buffer for one target language from a
// segment sequence. Per original document line:
//
//   - prose line: comment-prefixed copy
//   - fence delimiter line: bare comment prefix (numbering placeholder)
//   - code line in the target language, not exempt: verbatim dedented line
//   - any other code line: comment-prefixed copy
//
// The second return value reports whether any non-exempt code matched the
// target language; when false the buffer has no applicable content and the
// document should be skipped without invoking an analyzer.
func Reconstruct(segments []scan.Segment, target lang.Language) (string, bool) {
	var out []string
	applicable := false

	for _, seg := range segments {
		switch seg.Kind {
		case scan.Prose:
			for _, line := range seg.Lines {
				out = append(out, commentLine(target.CommentPrefix, line))
			}
		case scan.Fence:
			out = append(out, target.CommentPrefix)
		case scan.Code:
			if !seg.Exempt && target.MatchesTag(seg.Language) {
				applicable = true
				out = append(out, seg.Content...)
			} else {
				for _, line := range seg.Lines {
					out = append(out, commentLine(target.CommentPrefix, line))
				}
			}
		}
	}

	return strings.Join(out, "\n"), applicable
}

// SplitLines splits document text into lines, dropping the final empty
// element a trailing newline produces. The second return value reports
// whether the text ended with a newline, so callers can restore it after
// reconstruction.
func SplitLines(text string) ([]string, bool) {
	trailing := strings.HasSuffix(text, "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil, trailing
	}
	return strings.Split(text, "\n"), trailing
}

func commentLine(prefix, line string) string {
	if line == "" {
		return prefix
	}
	return prefix + " " + line
}
