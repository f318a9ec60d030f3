package doveadm

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/dovecot-archive/internal/instrumentation"
)

const waitDelay = 5 * time.Second

// Runner executes a doveadm argument vector and returns its standard output.
// argv[0] is the binary.
type Runner interface {
	Run(ctx context.Context, argv []string) ([]byte, error)
}

// ExecRunner runs commands as child processes.
type ExecRunner struct{}

// Run executes argv and waits for it. A nonzero exit yields a *CommandError
// carrying the exit code and standard error.
func (ExecRunner) Run(ctx context.Context, argv []string) ([]byte, error) {
	if len(argv) == 0 {
		return nil, errors.New("empty command")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	// Grandchildren holding the output pipes must not block a cancelled run.
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		cmdErr := &CommandError{
			Args:     argv,
			ExitCode: -1,
			Stderr:   strings.TrimSpace(stderr.String()),
			Err:      err,
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			cmdErr.Err = ctxErr
		} else {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				cmdErr.ExitCode = exitErr.ExitCode()
			}
		}
		return stdout.Bytes(), cmdErr
	}

	return stdout.Bytes(), nil
}

// InstrumentedRunner records a client span and command metrics around each
// invocation of the wrapped Runner.
type InstrumentedRunner struct {
	Runner  Runner
	Metrics *instrumentation.Metrics
}

// Run implements Runner.
func (r *InstrumentedRunner) Run(ctx context.Context, argv []string) ([]byte, error) {
	command := Subcommand(argv)

	ctx, span := instrumentation.StartCommandSpan(ctx, command)
	defer span.End()

	start := time.Now()
	out, err := r.Runner.Run(ctx, argv)
	duration := time.Since(start)

	status := commandStatus(command, err)
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		span.SetAttributes(attribute.Int(instrumentation.SpanAttrExitCode, cmdErr.ExitCode))
	} else if err == nil {
		span.SetAttributes(attribute.Int(instrumentation.SpanAttrExitCode, 0))
	}
	if status == instrumentation.StatusError {
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}

	r.Metrics.RecordCommand(ctx, command, status, duration)
	return out, err
}

// commandStatus classifies the outcome of command. A mailbox status that
// exits nonzero answers "absent", the same reading MailboxExists applies.
func commandStatus(command string, err error) string {
	if err == nil {
		return instrumentation.StatusSuccess
	}
	var cmdErr *CommandError
	if command == "mailbox status" && errors.As(err, &cmdErr) && cmdErr.ExitCode > 0 {
		return instrumentation.StatusAbsent
	}
	return instrumentation.StatusError
}

// Subcommand names the doveadm command in argv for metrics and spans, e.g.
// "search" or "mailbox list". Global flags before the command are skipped.
func Subcommand(argv []string) string {
	if len(argv) < 2 {
		return "unknown"
	}
	rest := argv[1:]
	for len(rest) > 0 && strings.HasPrefix(rest[0], "-") {
		rest = rest[1:]
	}
	if len(rest) == 0 {
		return "unknown"
	}
	if rest[0] == "mailbox" && len(rest) > 1 {
		return rest[0] + " " + rest[1]
	}
	return rest[0]
}
