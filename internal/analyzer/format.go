package analyzer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/OxfordRSE/lint-md-codeblocks/internal/lang"
)

// outputFormat is the extraction rule for one analyzer family's raw output:
// a pattern that yields (line, col, code, severity, message) from a single
// output line. Lines that do not match are dropped silently.
type outputFormat struct {
	pattern *regexp.Regexp
	build   func(groups []string) Diagnostic
}

// flake8 lines look like "file.py:4:3: E225 missing whitespace around
// operator". Codes starting with W or C are stylistic warnings, everything
// else is an error.
var flake8Format = outputFormat{
	pattern: regexp.MustCompile(`^(.*?):(\d+):(\d+):\s+([A-Z]+\d+)\s+(.*)$`),
	build: func(g []string) Diagnostic {
		sev := SeverityError
		switch g[4][0] {
		case 'W', 'C':
			sev = SeverityWarning
		}
		return Diagnostic{
			Line:     atoi(g[2]),
			Col:      atoi(g[3]),
			Code:     g[4],
			Severity: sev,
			Message:  g[5],
		}
	},
}

// gcc lines look like "file.cpp:4:3: error: expected ';'" with a severity
// vocabulary of error/warning/note.
var gccFormat = outputFormat{
	pattern: regexp.MustCompile(`^(.*?):(\d+):(\d+):\s+(fatal error|error|warning|note):\s+(.*)$`),
	build: func(g []string) Diagnostic {
		sev := SeverityError
		switch g[4] {
		case "warning":
			sev = SeverityWarning
		case "note":
			sev = SeverityNote
		}
		return Diagnostic{
			Line:     atoi(g[2]),
			Col:      atoi(g[3]),
			Severity: sev,
			Message:  g[5],
		}
	},
}

var formats = map[lang.Family]outputFormat{
	lang.FamilyFlake8: flake8Format,
	lang.FamilyGCC:    gccFormat,
}

// ParseOutput applies a family's extraction rule to raw analyzer output.
// Unparseable lines are dropped; an empty result is a clean run. The file
// path in the raw output is ignored; the caller substitutes the document
// path, since buffer and document line numbers are identical.
func ParseOutput(family lang.Family, raw string) []Diagnostic {
	format, ok := formats[family]
	if !ok {
		return nil
	}
	var diags []Diagnostic
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		groups := format.pattern.FindStringSubmatch(line)
		if groups == nil {
			continue
		}
		d := format.build(groups)
		if d.Line < 1 {
			continue
		}
		diags = append(diags, d)
	}
	return diags
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
