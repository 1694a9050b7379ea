package analyzer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/OxfordRSE/lint-md-codeblocks/internal/lang"
)

// DefaultTimeout bounds a single external analyzer invocation.
const DefaultTimeout = 30 * time.Second

// ExecAnalyzer invokes an external linter process against the synthetic
// buffer. The buffer is handed over either on standard input or through a
// staging file whose name is unique per invocation, so concurrent documents
// never collide.
type ExecAnalyzer struct {
	// Command is the analyzer binary, e.g. "flake8" or "g++".
	Command string
	// Args precede the input argument.
	Args []string
	// Family selects the output extraction rule.
	Family lang.Family
	// UseStdin pipes the buffer to the process ("-" is appended to Args)
	// instead of staging it in a temporary file.
	UseStdin bool
	// Timeout aborts a stuck invocation. Zero means DefaultTimeout.
	Timeout time.Duration
}

// NewExec returns an ExecAnalyzer for a command and output family.
func NewExec(command string, family lang.Family, args ...string) *ExecAnalyzer {
	return &ExecAnalyzer{Command: command, Args: args, Family: family}
}

func (a *ExecAnalyzer) Name() string {
	return a.Command
}

// Check runs the external analyzer and parses its output. The analyzer
// exiting non-zero is normal when it has findings; only spawn failures,
// crashes without output, and timeouts are errors.
func (a *ExecAnalyzer) Check(ctx context.Context, language lang.Language, source string) ([]Diagnostic, error) {
	timeout := a.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append([]string(nil), a.Args...)
	var stdin *strings.Reader
	if a.UseStdin {
		args = append(args, "-")
		stdin = strings.NewReader(source)
	} else {
		staging, err := a.writeStaging(language, source)
		if err != nil {
			return nil, err
		}
		defer os.Remove(staging)
		args = append(args, staging)
	}

	cmd := exec.CommandContext(ctx, a.Command, args...)
	// Cancellation kills only the direct child. A subprocess it spawned can
	// survive holding the output pipes, and Wait would block on them
	// indefinitely; WaitDelay caps that wait so a stuck analyzer cannot
	// hang the document past its deadline.
	cmd.WaitDelay = time.Second
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if stdin != nil {
		cmd.Stdin = stdin
	}

	runErr := cmd.Run()
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return nil, fmt.Errorf("%s timed out after %s", a.Command, timeout)
	case ctx.Err() != nil:
		// The caller's context ended for its own reason (interrupt,
		// shutdown), not our deadline.
		return nil, fmt.Errorf("run %s: %w", a.Command, ctx.Err())
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(runErr, &exitErr):
			// Exited non-zero: expected when the analyzer found problems.
		case errors.Is(runErr, exec.ErrWaitDelay):
			// The analyzer itself finished but an orphaned subprocess kept
			// the pipes open past WaitDelay. The captured output is intact.
		default:
			return nil, fmt.Errorf("run %s: %w", a.Command, runErr)
		}
	}

	// Parse both streams: flake8 reports on stdout, gcc on stderr. The
	// extraction rule drops whatever does not match.
	diags := ParseOutput(a.Family, stdout.String())
	diags = append(diags, ParseOutput(a.Family, stderr.String())...)
	return diags, nil
}

// writeStaging writes the buffer to a uniquely named temporary file and
// returns its path. The caller removes it.
func (a *ExecAnalyzer) writeStaging(language lang.Language, source string) (string, error) {
	name := fmt.Sprintf("mdlint-%s%s", uuid.NewString(), language.StagingExt)
	path := filepath.Join(os.TempDir(), name)
	if err := os.WriteFile(path, []byte(source), 0o600); err != nil {
		return "", fmt.Errorf("write staging file: %w", err)
	}
	return path, nil
}
