// Package analyzer defines the pluggable analyzer contract and the concrete
// analyzer families: external processes (flake8-style and gcc-style output),
// the built-in tree-sitter syntax checker, and Risor-scripted checks. All
// analyzers consume a synthetic source buffer and report diagnostics in that
// buffer's coordinates.
package analyzer

import (
	"context"

	"github.com/OxfordRSE/lint-md-codeblocks/internal/lang"
)

// Severity classifies a diagnostic.
type Severity int

const (
	SeverityNote Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityNote:
		return "note"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	}
	return "unknown"
}

// Diagnostic is one analyzer finding in synthetic buffer coordinates.
// Line and Col are 1-based; Code is the analyzer's rule identifier when the
// family has one (e.g. flake8's E225), otherwise empty.
type Diagnostic struct {
	Line     int
	Col      int
	Code     string
	Severity Severity
	Message  string
}

// Analyzer checks a synthetic source buffer and returns diagnostics in
// buffer coordinates. A non-nil error means the analyzer itself failed to
// run (missing binary, crash, timeout); findings are never errors.
type Analyzer interface {
	Name() string
	Check(ctx context.Context, language lang.Language, source string) ([]Diagnostic, error)
}
