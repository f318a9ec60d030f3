package doveadm

import (
	"fmt"
	"strings"
)

// DefaultBinary is the doveadm executable looked up in PATH.
const DefaultBinary = "doveadm"

// CommandError represents a doveadm invocation that did not exit cleanly.
type CommandError struct {
	// Args is the full argument vector, binary first.
	Args []string

	// ExitCode is the process exit code, or -1 when the process did not
	// start or was killed.
	ExitCode int

	// Stderr is the trimmed standard error output of the command.
	Stderr string

	// Err is the underlying error
	Err error
}

// Error implements the error interface
func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s: exit code %d", strings.Join(e.Args, " "), e.ExitCode)
	if e.Stderr != "" {
		msg += " (stderr: " + e.Stderr + ")"
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap implements the errors.Unwrap interface
func (e *CommandError) Unwrap() error {
	return e.Err
}

// Query restricts a search, move or copy to messages received in a window.
// Both bounds are doveadm date arguments (ISO date, IMAP date or Unix
// timestamp). An empty bound is open.
type Query struct {
	Since  string
	Before string
}

// Args returns the doveadm search query arguments. A query without bounds
// matches all messages.
func (q Query) Args() []string {
	var args []string
	if q.Since != "" {
		args = append(args, "since", q.Since)
	}
	if q.Before != "" {
		args = append(args, "before", q.Before)
	}
	if len(args) == 0 {
		args = append(args, "all")
	}
	return args
}

// String describes the window for log messages.
func (q Query) String() string {
	since, before := q.Since, q.Before
	if since == "" {
		since = "the beginning of time"
	}
	if before == "" {
		before = "now"
	}
	return "between " + since + " and " + before
}

// Transfer describes one move or copy of the messages matching Query from a
// folder of User to DstFolder of DstUser.
type Transfer struct {
	User      string
	Folder    string
	DstUser   string
	DstFolder string
	Query     Query

	// Copy keeps the messages in the source folder.
	Copy bool
}

// Verb returns "copy" or "move".
func (t Transfer) Verb() string {
	if t.Copy {
		return "copy"
	}
	return "move"
}
