package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "check.risor")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestScriptAnalyzer_Report(t *testing.T) {
	path := writeScript(t, `report(3, 1, "tabs are forbidden")`)
	a := NewScript(path)

	diags, err := a.Check(context.Background(), testLang(t, "python"), "x = 1\n")
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, 3, diags[0].Line)
	assert.Equal(t, 1, diags[0].Col)
	assert.Equal(t, SeverityError, diags[0].Severity)
	assert.Equal(t, "tabs are forbidden", diags[0].Message)
}

func TestScriptAnalyzer_ReportWithSeverity(t *testing.T) {
	path := writeScript(t, `report(1, 2, "warning", "long line")`)
	a := NewScript(path)

	diags, err := a.Check(context.Background(), testLang(t, "python"), "x = 1\n")
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, SeverityWarning, diags[0].Severity)
}

func TestScriptAnalyzer_SeesBufferGlobals(t *testing.T) {
	script := `
for i, line := range lines {
    if strings.contains(line, "TODO") {
        report(i + 1, 1, "warning", "unresolved TODO in " + language + " snippet")
    }
}
`
	path := writeScript(t, script)
	a := NewScript(path)

	diags, err := a.Check(context.Background(), testLang(t, "python"),
		"x = 1\n# TODO fix\ny = 2")
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, 2, diags[0].Line)
	assert.Contains(t, diags[0].Message, "python")
}

func TestScriptAnalyzer_EmptyReportIsClean(t *testing.T) {
	path := writeScript(t, `x := len(source)`)
	a := NewScript(path)

	diags, err := a.Check(context.Background(), testLang(t, "python"), "x = 1\n")
	require.NoError(t, err)
	assert.Empty(t, diags)
}

func TestScriptAnalyzer_ScriptErrorIsToolFailure(t *testing.T) {
	path := writeScript(t, `this is not risor (`)
	a := NewScript(path)

	_, err := a.Check(context.Background(), testLang(t, "python"), "x = 1\n")
	require.Error(t, err)
}

func TestScriptAnalyzer_MissingScript(t *testing.T) {
	a := NewScript(filepath.Join(t.TempDir(), "absent.risor"))
	_, err := a.Check(context.Background(), testLang(t, "python"), "x = 1\n")
	require.Error(t, err)
}

func TestScriptAnalyzer_BadSeverityRejected(t *testing.T) {
	path := writeScript(t, `report(1, 1, "fatal", "boom")`)
	a := NewScript(path)

	_, err := a.Check(context.Background(), testLang(t, "python"), "x = 1\n")
	require.Error(t, err)
}
