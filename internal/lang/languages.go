// Package lang is the capability table for supported content languages.
// Each entry carries everything the pipeline needs to know about a language:
// which fence tags select it, its comment syntax, the staging file extension
// for external analyzers, the default analyzer family, and the tree-sitter
// grammar used by the built-in syntax checker. Adding a language is a data
// addition, not a control-flow change.
package lang

import (
	"sort"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/python"
)

// Family identifies an analyzer family: how an analyzer is invoked and how
// its raw output is parsed into diagnostics.
type Family string

const (
	// FamilyFlake8 is the flake8-style exec family: diagnostics on stdout
	// as "path:line:col: CODE message".
	FamilyFlake8 Family = "flake8"
	// FamilyGCC is the gcc-style exec family: diagnostics on stderr as
	// "path:line:col: severity: message".
	FamilyGCC Family = "gcc"
	// FamilySyntax is the built-in tree-sitter syntax checker.
	FamilySyntax Family = "syntax"
	// FamilyScript is the built-in Risor script analyzer.
	FamilyScript Family = "script"
)

// KnownFamily reports whether f is a recognized analyzer family.
func KnownFamily(f Family) bool {
	switch f {
	case FamilyFlake8, FamilyGCC, FamilySyntax, FamilyScript:
		return true
	}
	return false
}

// Language describes one supported content language.
type Language struct {
	// Name is the canonical language identifier used in configuration.
	Name string
	// Tags are the fence info-string tags that select this language.
	Tags []string
	// CommentPrefix is the line-comment prefix used when rewriting prose
	// and non-target code lines in the synthetic buffer.
	CommentPrefix string
	// StagingExt is the file extension for analyzer staging files.
	StagingExt string
	// DefaultFamily is the analyzer family used when none is configured.
	DefaultFamily Family
	// DefaultCommand is the analyzer binary for the default exec family.
	DefaultCommand string
}

var languages = map[string]Language{
	"python": {
		Name:           "python",
		Tags:           []string{"python", "py", "python3"},
		CommentPrefix:  "#",
		StagingExt:     ".py",
		DefaultFamily:  FamilyFlake8,
		DefaultCommand: "flake8",
	},
	"cpp": {
		Name:           "cpp",
		Tags:           []string{"cpp", "c++", "cxx", "cc"},
		CommentPrefix:  "//",
		StagingExt:     ".cpp",
		DefaultFamily:  FamilyGCC,
		DefaultCommand: "g++",
	},
	"go": {
		// No widely deployed go linter emits the gcc diagnostic shape,
		// so the in-process syntax checker is the default.
		Name:          "go",
		Tags:          []string{"go", "golang"},
		CommentPrefix: "//",
		StagingExt:    ".go",
		DefaultFamily: FamilySyntax,
	},
}

// Lookup returns the Language for a canonical name.
// Returns (zero, false) if the name is not supported.
func Lookup(name string) (Language, bool) {
	l, ok := languages[strings.ToLower(strings.TrimSpace(name))]
	return l, ok
}

// Names returns the canonical names of all supported languages, sorted.
func Names() []string {
	names := make([]string, 0, len(languages))
	for name := range languages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MatchesTag reports whether a fence tag selects this language.
// Matching is case-insensitive; an empty tag never matches.
func (l Language) MatchesTag(tag string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return false
	}
	for _, t := range l.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// langToGrammar maps language names to tree-sitter Language objects.
// Lazily initialized on first call via sync.Once.
var (
	langToGrammar map[string]*sitter.Language
	grammarsOnce  sync.Once
)

func initGrammars() {
	grammarsOnce.Do(func() {
		langToGrammar = map[string]*sitter.Language{
			"python": python.GetLanguage(),
			"cpp":    cpp.GetLanguage(),
			"go":     golang.GetLanguage(),
		}
	})
}

// Grammar returns the tree-sitter grammar for a canonical language name.
// Returns (nil, false) if no grammar is available.
func Grammar(name string) (*sitter.Language, bool) {
	initGrammars()
	g, ok := langToGrammar[name]
	return g, ok
}
