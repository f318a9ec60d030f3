// Package doveadm provides a client for Dovecot's doveadm command-line tool.
//
// The client builds the argument vectors for the handful of doveadm commands
// an archive run needs and hands them to a Runner:
//   - mailbox list, to expand a folder into itself and its subfolders
//   - mailbox status, to check whether a folder exists
//   - mailbox create and mailbox subscribe
//   - search, to check whether a folder holds mail in a date window
//   - move and copy
//
// ExecRunner executes doveadm as a child process bound to a context, so
// cancelling the context kills the running command. InstrumentedRunner wraps
// any Runner with a span and metrics per invocation.
//
// In dry-run mode the mutating commands (create, subscribe, move, copy) are
// written to an io.Writer as shell-quoted lines instead of being executed.
// Read-only commands still run so the printed plan reflects the mail store.
//
// Example usage:
//
//	client := doveadm.NewClient(doveadm.ExecRunner{}, doveadm.Options{
//	    Verbosity: 2,
//	})
//
//	folders, err := client.ListMailboxes(ctx, "jane", "INBOX")
//	if err != nil {
//	    return err
//	}
//
//	err = client.Transfer(ctx, doveadm.Transfer{
//	    User:      "jane",
//	    Folder:    "INBOX",
//	    DstUser:   "jane",
//	    DstFolder: "Archive/INBOX",
//	    Query:     doveadm.Query{Before: "2021-06-01"},
//	})
package doveadm
