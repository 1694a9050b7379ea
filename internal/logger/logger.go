// Package logger is the mdlint CLI's stderr event log. Debug and Info only
// print in verbose mode; Warn always prints, so degraded runs (a watcher
// error, a failed re-lint) stay visible without -v. The report itself goes
// to stdout and never through this package.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	sink    io.Writer = os.Stderr
)

// SetVerbose toggles Debug and Info output.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose reports whether verbose output is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput redirects the event log, for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	sink = w
}

func emit(gated bool, tag, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if gated && !verbose {
		return
	}
	fmt.Fprintf(sink, tag+": "+format+"\n", args...)
}

// Debug traces pipeline internals per document.
func Debug(format string, args ...any) {
	emit(true, "debug", format, args...)
}

// Info reports run-level progress.
func Info(format string, args ...any) {
	emit(true, "info", format, args...)
}

// Warn reports recoverable problems. Not gated on verbose mode.
func Warn(format string, args ...any) {
	emit(false, "warning", format, args...)
}
