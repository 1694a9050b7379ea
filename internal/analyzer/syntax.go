package analyzer

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/OxfordRSE/lint-md-codeblocks/internal/lang"
)

// SyntaxAnalyzer parses the synthetic buffer with the target language's
// tree-sitter grammar and reports parse errors as diagnostics. It needs no
// external binary, which makes it the cheapest way to keep embedded
// snippets honest.
type SyntaxAnalyzer struct{}

// NewSyntax returns the built-in tree-sitter syntax checker.
func NewSyntax() *SyntaxAnalyzer {
	return &SyntaxAnalyzer{}
}

func (a *SyntaxAnalyzer) Name() string {
	return "syntax"
}

func (a *SyntaxAnalyzer) Check(ctx context.Context, language lang.Language, source string) ([]Diagnostic, error) {
	grammar, ok := lang.Grammar(language.Name)
	if !ok {
		return nil, fmt.Errorf("no grammar for language %q", language.Name)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(grammar)
	tree, err := parser.ParseCtx(ctx, nil, []byte(source))
	if err != nil {
		return nil, fmt.Errorf("parse %s buffer: %w", language.Name, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return nil, nil
	}

	var diags []Diagnostic
	collectErrors(root, &diags)
	return diags, nil
}

// collectErrors walks the subtrees that contain errors and emits one
// diagnostic per ERROR or missing node. Error subtrees are not descended
// into, so a single broken statement yields a single diagnostic.
func collectErrors(node *sitter.Node, diags *[]Diagnostic) {
	if node.IsMissing() {
		pt := node.StartPoint()
		*diags = append(*diags, Diagnostic{
			Line:     int(pt.Row) + 1,
			Col:      int(pt.Column) + 1,
			Severity: SeverityError,
			Message:  fmt.Sprintf("syntax error: missing %s", node.Type()),
		})
		return
	}
	if node.Type() == "ERROR" {
		pt := node.StartPoint()
		*diags = append(*diags, Diagnostic{
			Line:     int(pt.Row) + 1,
			Col:      int(pt.Column) + 1,
			Severity: SeverityError,
			Message:  "syntax error",
		})
		return
	}
	if !node.HasError() {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		collectErrors(node.Child(i), diags)
	}
}
