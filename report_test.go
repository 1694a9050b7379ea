package mdlint

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func withPlainColor(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

func TestReporter_FailedDocumentTwoLineUnits(t *testing.T) {
	withPlainColor(t)
	var buf bytes.Buffer
	r := NewReporter(&buf)

	r.Document(DocumentResult{
		Path:   "guide.md",
		Status: StatusFailed,
		Diagnostics: []MappedDiagnostic{
			{
				Path: "guide.md", Line: 12, Col: 5, Code: "F821",
				Severity: SeverityError, Message: "undefined name 'foo'",
				SourceLine: "print(foo)",
			},
		},
	})

	assert.Equal(t,
		"guide.md:12:5: F821 undefined name 'foo'\n"+
			"    print(foo)\n",
		buf.String())
}

func TestReporter_ToolFailureSingleLine(t *testing.T) {
	withPlainColor(t)
	var buf bytes.Buffer
	r := NewReporter(&buf)

	r.Document(DocumentResult{
		Path:   "guide.md",
		Status: StatusFailed,
		Diagnostics: []MappedDiagnostic{
			{Path: "guide.md", Severity: SeverityError, Message: "analyzer flake8 failed: executable not found"},
		},
	})

	// Line 0 findings have no source line to echo.
	assert.Equal(t, "guide.md: analyzer flake8 failed: executable not found\n", buf.String())
}

func TestReporter_QuietOnCleanAndSkipped(t *testing.T) {
	withPlainColor(t)
	var buf bytes.Buffer
	r := NewReporter(&buf)

	r.Document(DocumentResult{Path: "a.md", Status: StatusClean})
	r.Document(DocumentResult{Path: "b.md", Status: StatusSkipped})
	assert.Empty(t, buf.String())
}

func TestReporter_VerboseMarkers(t *testing.T) {
	withPlainColor(t)
	var buf bytes.Buffer
	r := NewReporter(&buf)
	r.SetVerbose(true)

	r.Document(DocumentResult{Path: "a.md", Status: StatusClean})
	r.Document(DocumentResult{Path: "b.md", Status: StatusSkipped})

	assert.Equal(t, "ok    a.md\nskip  b.md (no applicable code)\n", buf.String())
}

func TestReporter_Summary(t *testing.T) {
	withPlainColor(t)

	run := &RunResult{
		StartedAt: time.Now(),
		Language:  "python",
		Analyzer:  "flake8",
		Documents: []DocumentResult{
			{Path: "a.md", Status: StatusClean},
			{Path: "b.md", Status: StatusSkipped},
			{Path: "c.md", Status: StatusFailed, Diagnostics: []MappedDiagnostic{
				{Line: 3, Severity: SeverityError, Message: "bad"},
				{Line: 7, Severity: SeverityWarning, Message: "meh"},
			}},
		},
	}

	var buf bytes.Buffer
	NewReporter(&buf).Summary(run)
	assert.Equal(t, "FAIL: 2 diagnostic(s) in 1 of 2 document(s) (1 skipped)\n", buf.String())

	buf.Reset()
	run.Documents = run.Documents[:2]
	NewReporter(&buf).Summary(run)
	assert.Equal(t, "PASS: 1 document(s) linted, 1 skipped\n", buf.String())
}
