package mdlint

import (
	"github.com/OxfordRSE/lint-md-codeblocks/internal/analyzer"
	"github.com/OxfordRSE/lint-md-codeblocks/internal/lang"
	"github.com/OxfordRSE/lint-md-codeblocks/internal/store"
)

// Public type aliases for internal types used in the Engine API. Aliases
// are identical to the internal types at compile time, so no conversion is
// needed when implementing Analyzer or consuming results.

type Analyzer = analyzer.Analyzer
type Diagnostic = analyzer.Diagnostic
type Severity = analyzer.Severity

const (
	SeverityNote    = analyzer.SeverityNote
	SeverityWarning = analyzer.SeverityWarning
	SeverityError   = analyzer.SeverityError
)

// History store types, exposed for the history CLI.

type Store = store.Store
type Run = store.Run
type DocumentRecord = store.DocumentRecord
type DiagnosticRecord = store.DiagnosticRecord

// Analyzer families and the stock collaborators, re-exported so library
// consumers outside this module can construct them.

type Family = lang.Family

const (
	FamilyFlake8 = lang.FamilyFlake8
	FamilyGCC    = lang.FamilyGCC
	FamilySyntax = lang.FamilySyntax
	FamilyScript = lang.FamilyScript
)

type ExecAnalyzer = analyzer.ExecAnalyzer
type SyntaxAnalyzer = analyzer.SyntaxAnalyzer
type ScriptAnalyzer = analyzer.ScriptAnalyzer

// NewSyntaxAnalyzer returns the built-in tree-sitter syntax checker.
func NewSyntaxAnalyzer() *SyntaxAnalyzer {
	return analyzer.NewSyntax()
}

// NewExecAnalyzer returns an external-process analyzer whose output is
// parsed per the given family.
func NewExecAnalyzer(command string, family Family, args ...string) *ExecAnalyzer {
	return analyzer.NewExec(command, family, args...)
}

// NewScriptAnalyzer returns a Risor script analyzer for a script file.
func NewScriptAnalyzer(path string) *ScriptAnalyzer {
	return analyzer.NewScript(path)
}
