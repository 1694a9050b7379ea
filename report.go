package mdlint

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Reporter writes mapped diagnostics to a sink. Per failing line it emits a
// two-line unit: the diagnostic in path:line:col form, then an indented
// copy of the offending source line. With verbose enabled, clean and
// skipped documents get one-line markers too.
type Reporter struct {
	w       io.Writer
	verbose bool
}

// NewReporter creates a Reporter writing to w.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// SetVerbose enables per-document success and skip markers.
func (r *Reporter) SetVerbose(v bool) {
	r.verbose = v
}

var severityColors = map[Severity]*color.Color{
	SeverityError:   color.New(color.FgRed, color.Bold),
	SeverityWarning: color.New(color.FgYellow),
	SeverityNote:    color.New(color.FgCyan),
}

// Document reports one document's outcome.
func (r *Reporter) Document(res DocumentResult) {
	switch res.Status {
	case StatusClean:
		if r.verbose {
			fmt.Fprintf(r.w, "ok    %s\n", res.Path)
		}
	case StatusSkipped:
		if r.verbose {
			fmt.Fprintf(r.w, "skip  %s (no applicable code)\n", res.Path)
		}
	case StatusFailed:
		for _, d := range res.Diagnostics {
			c, ok := severityColors[d.Severity]
			if !ok {
				c = severityColors[SeverityError]
			}
			fmt.Fprintln(r.w, c.Sprint(d.String()))
			if d.Line > 0 {
				fmt.Fprintf(r.w, "    %s\n", d.SourceLine)
			}
		}
	}
}

// Summary reports the aggregate outcome of a run.
func (r *Reporter) Summary(run *RunResult) {
	linted, skipped, failed := 0, 0, 0
	for _, d := range run.Documents {
		switch d.Status {
		case StatusSkipped:
			skipped++
		case StatusFailed:
			linted++
			failed++
		default:
			linted++
		}
	}
	if run.Failed() {
		fmt.Fprintf(r.w, "FAIL: %d diagnostic(s) in %d of %d document(s) (%d skipped)\n",
			run.DiagnosticCount(), failed, linted, skipped)
		return
	}
	fmt.Fprintf(r.w, "PASS: %d document(s) linted, %d skipped\n", linted, skipped)
}
