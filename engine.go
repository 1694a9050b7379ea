package mdlint

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gobwas/glob"

	"github.com/OxfordRSE/lint-md-codeblocks/internal/analyzer"
	"github.com/OxfordRSE/lint-md-codeblocks/internal/buffer"
	"github.com/OxfordRSE/lint-md-codeblocks/internal/lang"
	"github.com/OxfordRSE/lint-md-codeblocks/internal/logger"
	"github.com/OxfordRSE/lint-md-codeblocks/internal/scan"
	"github.com/OxfordRSE/lint-md-codeblocks/internal/store"
)

// DocStatus is the outcome of linting one document.
type DocStatus string

const (
	// StatusClean means the document was linted and produced no diagnostics.
	StatusClean DocStatus = "clean"
	// StatusSkipped means the document had no applicable code for the
	// target language; no analyzer was invoked.
	StatusSkipped DocStatus = "skipped"
	// StatusFailed means the document produced one or more diagnostics.
	StatusFailed DocStatus = "failed"
)

// MappedDiagnostic is an analyzer finding rewritten onto the originating
// document: its path, 1-based line and column, and the literal source line
// for display. Line 0 marks a document-level finding with no specific line,
// such as an analyzer invocation failure.
type MappedDiagnostic struct {
	Path       string
	Line       int
	Col        int
	Code       string
	Severity   Severity
	Message    string
	SourceLine string
}

// String renders the diagnostic in path:line:col form.
func (d MappedDiagnostic) String() string {
	if d.Line == 0 {
		return fmt.Sprintf("%s: %s", d.Path, d.Message)
	}
	if d.Code != "" {
		return fmt.Sprintf("%s:%d:%d: %s %s", d.Path, d.Line, d.Col, d.Code, d.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s", d.Path, d.Line, d.Col, d.Message)
}

// DocumentResult is the outcome of one document's pipeline run.
type DocumentResult struct {
	Path        string
	Status      DocStatus
	Diagnostics []MappedDiagnostic
}

// RunResult aggregates a whole run. Documents appear in input order.
type RunResult struct {
	StartedAt time.Time
	Language  string
	Analyzer  string
	Documents []DocumentResult
}

// Failed reports whether at least one document produced diagnostics.
// Skipped documents never contribute.
func (r *RunResult) Failed() bool {
	for _, d := range r.Documents {
		if d.Status == StatusFailed {
			return true
		}
	}
	return false
}

// DiagnosticCount returns the total number of mapped diagnostics in the run.
func (r *RunResult) DiagnosticCount() int {
	n := 0
	for _, d := range r.Documents {
		n += len(d.Diagnostics)
	}
	return n
}

// Engine orchestrates the pipeline: document discovery, fence scanning,
// buffer reconstruction, analyzer invocation, and diagnostic remapping.
// Documents are processed independently; the Engine holds no per-document
// state between runs.
type Engine struct {
	language lang.Language
	analyzer analyzer.Analyzer

	excludePatterns []string
	excludes        []glob.Glob

	// store, when set, records each run for the history command.
	store       *store.Store
	historyPath string

	// useParallel enables the worker-pool scheduler.
	useParallel bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithParallel controls the document scheduler. When true (default), LintFiles
// uses a worker pool with one task per document; results are still returned
// in input order. Set to false for strictly sequential processing.
func WithParallel(parallel bool) Option {
	return func(e *Engine) {
		e.useParallel = parallel
	}
}

// WithExcludes sets glob patterns (matched against slash-separated paths
// relative to the scanned directory) for documents that must never reach
// the scanner.
func WithExcludes(patterns ...string) Option {
	return func(e *Engine) {
		e.excludePatterns = patterns
	}
}

// WithHistory enables run-history recording to a SQLite database at dbPath.
func WithHistory(dbPath string) Option {
	return func(e *Engine) {
		e.historyPath = dbPath
	}
}

// New creates an Engine for one target content language and analyzer.
// Unsupported languages and malformed exclude patterns are configuration
// errors: they fail here, before any document is processed.
func New(language string, a analyzer.Analyzer, opts ...Option) (*Engine, error) {
	l, ok := lang.Lookup(language)
	if !ok {
		return nil, fmt.Errorf("mdlint: unsupported language %q (supported: %s)",
			language, strings.Join(lang.Names(), ", "))
	}
	if a == nil {
		return nil, fmt.Errorf("mdlint: nil analyzer")
	}

	e := &Engine{
		language:    l,
		analyzer:    a,
		useParallel: true, // default to the worker pool
	}
	for _, opt := range opts {
		opt(e)
	}

	for _, pat := range e.excludePatterns {
		g, err := glob.Compile(pat, '/')
		if err != nil {
			return nil, fmt.Errorf("mdlint: exclude pattern %q: %w", pat, err)
		}
		e.excludes = append(e.excludes, g)
	}

	if e.historyPath != "" {
		s, err := store.NewStore(e.historyPath)
		if err != nil {
			return nil, fmt.Errorf("mdlint: open history: %w", err)
		}
		if err := s.Migrate(); err != nil {
			s.Close()
			return nil, fmt.Errorf("mdlint: migrate history: %w", err)
		}
		e.store = s
	}

	return e, nil
}

// Close releases the Engine's history store, if any.
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// Language returns the canonical target language name.
func (e *Engine) Language() string {
	return e.language.Name
}

// excluded reports whether a slash-separated relative path matches any
// exclude pattern.
func (e *Engine) excluded(rel string) bool {
	for _, g := range e.excludes {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// DiscoverDocuments walks root and returns the markdown files to lint,
// sorted, with hidden directories and excluded paths pruned. Exclusion
// happens here: an excluded path is never read and never scanned.
func (e *Engine) DiscoverDocuments(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if e.excluded(rel) || e.excluded(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}
		if e.excluded(rel) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// FilterDocuments drops paths whose position relative to root matches an
// exclude pattern. Paths outside root pass through unchanged.
func (e *Engine) FilterDocuments(root string, paths []string) []string {
	kept := make([]string, 0, len(paths))
	for _, path := range paths {
		rel, err := filepath.Rel(root, path)
		if err == nil && e.excluded(filepath.ToSlash(rel)) {
			continue
		}
		kept = append(kept, path)
	}
	return kept
}

// LintDirectory discovers markdown documents under root and lints them.
func (e *Engine) LintDirectory(ctx context.Context, root string) (*RunResult, error) {
	paths, err := e.DiscoverDocuments(root)
	if err != nil {
		return nil, err
	}
	return e.LintFiles(ctx, paths)
}

// document is one file's path and content, split into lines.
type document struct {
	path     string
	lines    []string
	trailing bool // content ended with a newline
}

// line returns the 1-based source line, or "" when out of range.
func (d document) line(n int) string {
	if n < 1 || n > len(d.lines) {
		return ""
	}
	return d.lines[n-1]
}

// LintFiles lints the given documents through the full pipeline and
// aggregates the outcome. Unreadable files are errors; everything else
// degrades to per-document results. When history recording is enabled the
// run is persisted before returning.
func (e *Engine) LintFiles(ctx context.Context, paths []string) (*RunResult, error) {
	run := &RunResult{
		StartedAt: time.Now(),
		Language:  e.language.Name,
		Analyzer:  e.analyzer.Name(),
	}

	docs := make([]document, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		lines, trailing := buffer.SplitLines(string(content))
		docs = append(docs, document{path: path, lines: lines, trailing: trailing})
	}

	if e.useParallel {
		run.Documents = e.lintParallel(ctx, docs)
	} else {
		run.Documents = make([]DocumentResult, len(docs))
		for i, doc := range docs {
			run.Documents[i] = e.lintDocument(ctx, doc)
		}
	}

	if e.store != nil {
		if err := e.recordRun(run); err != nil {
			return run, fmt.Errorf("record history: %w", err)
		}
	}
	return run, nil
}

// lintDocument runs one document through the full pipeline: scan,
// reconstruct, analyze, remap.
func (e *Engine) lintDocument(ctx context.Context, doc document) DocumentResult {
	res := DocumentResult{Path: doc.path}

	scanned := scan.Scan(doc.lines)
	logger.Debug("%s: %d segments, %d scan warnings",
		doc.path, len(scanned.Segments), len(scanned.Warnings))

	// Scan irregularities become warning diagnostics at their own lines.
	for _, w := range scanned.Warnings {
		res.Diagnostics = append(res.Diagnostics, MappedDiagnostic{
			Path:       doc.path,
			Line:       w.Line,
			Col:        1,
			Severity:   SeverityWarning,
			Message:    w.Message,
			SourceLine: doc.line(w.Line),
		})
	}

	buf, applicable := buffer.Reconstruct(scanned.Segments, e.language)
	if !applicable {
		logger.Debug("%s: no %s code, skipping analyzer", doc.path, e.language.Name)
		if len(res.Diagnostics) == 0 {
			res.Status = StatusSkipped
		} else {
			res.Status = StatusFailed
		}
		return res
	}
	if doc.trailing {
		buf += "\n"
	}

	diags, err := e.analyzer.Check(ctx, e.language, buf)
	if err != nil {
		// Tool failure: attributed to the whole document, run continues.
		res.Diagnostics = append(res.Diagnostics, MappedDiagnostic{
			Path:     doc.path,
			Severity: SeverityError,
			Message:  fmt.Sprintf("analyzer %s failed: %v", e.analyzer.Name(), err),
		})
		res.Status = StatusFailed
		return res
	}

	for _, d := range diags {
		res.Diagnostics = append(res.Diagnostics, MappedDiagnostic{
			Path:       doc.path,
			Line:       d.Line,
			Col:        d.Col,
			Code:       d.Code,
			Severity:   d.Severity,
			Message:    d.Message,
			SourceLine: doc.line(d.Line),
		})
	}

	if len(res.Diagnostics) > 0 {
		res.Status = StatusFailed
	} else {
		res.Status = StatusClean
	}
	return res
}

// recordRun persists a run and its documents to the history store.
func (e *Engine) recordRun(run *RunResult) error {
	runID, err := e.store.InsertRun(&store.Run{
		StartedAt:       run.StartedAt,
		Language:        run.Language,
		Analyzer:        run.Analyzer,
		Failed:          run.Failed(),
		DocumentCount:   len(run.Documents),
		DiagnosticCount: run.DiagnosticCount(),
	})
	if err != nil {
		return err
	}
	for _, doc := range run.Documents {
		docID, err := e.store.InsertDocument(&store.DocumentRecord{
			RunID:           runID,
			Path:            doc.Path,
			Status:          string(doc.Status),
			DiagnosticCount: len(doc.Diagnostics),
		})
		if err != nil {
			return err
		}
		for _, d := range doc.Diagnostics {
			if _, err := e.store.InsertDiagnostic(&store.DiagnosticRecord{
				DocumentID: docID,
				Line:       d.Line,
				Col:        d.Col,
				Severity:   d.Severity.String(),
				Code:       d.Code,
				Message:    d.Message,
				SourceLine: d.SourceLine,
			}); err != nil {
				return err
			}
		}
	}
	return nil
}
