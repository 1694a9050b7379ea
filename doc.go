// Package mdlint lints fenced code blocks embedded in markdown documents.
// It extracts the blocks, reconstructs a syntactically valid per-language
// source buffer that preserves the document's line numbering, hands the
// buffer to a static analyzer, and maps diagnostics back onto the document's
// path and lines.
//
// # Pipeline
//
// For each document the Engine runs four stages:
//
//  1. Scan: tokenize the document into prose, fence, and code segments with
//     a line-scanning state machine (internal/scan).
//
//  2. Reconstruct: build a synthetic buffer for the target language. Prose
//     and foreign or exempt code become comment lines, fence delimiters
//     become placeholder comments, and matching code is kept verbatim, so
//     every document line maps 1:1 to a buffer line (internal/buffer).
//
//  3. Analyze: run the configured analyzer over the buffer. Analyzers are
//     pluggable (internal/analyzer): external processes with flake8-style
//     or gcc-style output, the built-in tree-sitter syntax checker, or a
//     Risor script.
//
//  4. Map: remap diagnostics onto the document. Under the line-preserving
//     invariant the line numbers are identical; only the path is
//     substituted and the offending source line attached.
//
// # Usage
//
// Create an Engine, lint a directory, and inspect the result:
//
//	e, err := mdlint.New("python", mdlint.NewSyntaxAnalyzer())
//	if err != nil { ... }
//	defer e.Close()
//
//	run, err := e.LintDirectory(context.Background(), "docs")
//	if run.Failed() { ... }
//
// Documents are independent: the Engine lints them either sequentially or
// with a worker pool ([WithParallel], the default). Results come back in
// input order either way. A code block fenced as "<lang> nolint" keeps its
// place in the numbering but is never linted, and a document with no code
// for the target language is skipped without invoking the analyzer.
package mdlint
