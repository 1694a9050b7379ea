package analyzer

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/object"

	"github.com/OxfordRSE/lint-md-codeblocks/internal/lang"
)

// ScriptAnalyzer evaluates a Risor script against the synthetic buffer,
// enabling custom checks without an external tool. The script sees the
// globals:
//
//	source:   the whole buffer as a string
//	lines:    the buffer split into lines
//	language: the canonical target language name
//	report:   report(line, col, message) or
//	          report(line, col, severity, message) with severity one of
//	          "note", "warning", "error" (default "error")
type ScriptAnalyzer struct {
	// Path is the .risor script file.
	Path string
	// Timeout aborts a runaway script. Zero means DefaultTimeout.
	Timeout time.Duration
}

// NewScript returns a ScriptAnalyzer for a script file.
func NewScript(path string) *ScriptAnalyzer {
	return &ScriptAnalyzer{Path: path}
}

func (a *ScriptAnalyzer) Name() string {
	return "script:" + a.Path
}

func (a *ScriptAnalyzer) Check(ctx context.Context, language lang.Language, source string) ([]Diagnostic, error) {
	src, err := os.ReadFile(a.Path)
	if err != nil {
		return nil, fmt.Errorf("load script: %w", err)
	}

	timeout := a.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	sink := &diagnosticSink{}

	opts := []risor.Option{
		risor.WithGlobal("source", source),
		risor.WithGlobal("lines", strings.Split(source, "\n")),
		risor.WithGlobal("language", language.Name),
		risor.WithGlobal("report", makeReportFn(sink)),
	}
	if _, err := risor.Eval(ctx, string(src), opts...); err != nil {
		return nil, fmt.Errorf("script %s: %w", a.Path, err)
	}
	return sink.diagnostics(), nil
}

// diagnosticSink collects diagnostics reported by a script. Guarded by a
// mutex in case the script spawns goroutines.
type diagnosticSink struct {
	mu    sync.Mutex
	diags []Diagnostic
}

func (s *diagnosticSink) add(d Diagnostic) {
	s.mu.Lock()
	s.diags = append(s.diags, d)
	s.mu.Unlock()
}

func (s *diagnosticSink) diagnostics() []Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.diags
}

// makeReportFn creates the "report" host function.
//
// report(line, col, message) | report(line, col, severity, message)
func makeReportFn(sink *diagnosticSink) *object.Builtin {
	return object.NewBuiltin("report", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 3 && len(args) != 4 {
			return object.NewArgsRangeError("report", 3, 4, len(args))
		}

		line, err := toInt(args[0])
		if err != nil {
			return object.Errorf("report: line: %v", err)
		}
		col, err := toInt(args[1])
		if err != nil {
			return object.Errorf("report: col: %v", err)
		}

		severity := SeverityError
		msgArg := args[2]
		if len(args) == 4 {
			sevStr, err := toStr(args[2])
			if err != nil {
				return object.Errorf("report: severity: %v", err)
			}
			switch sevStr {
			case "note":
				severity = SeverityNote
			case "warning":
				severity = SeverityWarning
			case "error":
				severity = SeverityError
			default:
				return object.Errorf("report: unknown severity %q", sevStr)
			}
			msgArg = args[3]
		}
		msg, err := toStr(msgArg)
		if err != nil {
			return object.Errorf("report: message: %v", err)
		}

		sink.add(Diagnostic{Line: line, Col: col, Severity: severity, Message: msg})
		return object.Nil
	})
}

func toInt(obj object.Object) (int, error) {
	if i, ok := obj.(*object.Int); ok {
		return int(i.Value()), nil
	}
	if f, ok := obj.(*object.Float); ok {
		return int(f.Value()), nil
	}
	return 0, fmt.Errorf("expected int, got %s", obj.Type())
}

func toStr(obj object.Object) (string, error) {
	if s, ok := obj.(*object.String); ok {
		return s.Value(), nil
	}
	return "", fmt.Errorf("expected string, got %s", obj.Type())
}
