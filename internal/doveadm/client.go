package doveadm

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/teemow/dovecot-archive/internal/logging"
	"github.com/teemow/dovecot-archive/internal/mailbox"
)

// Options configures a Client.
type Options struct {
	// Binary is the doveadm executable (default: doveadm)
	Binary string

	// Verbosity forwards the CLI verbosity: 2 adds doveadm's -v, 3 adds -D.
	Verbosity int

	// DryRun, when set, receives the mutating commands instead of running them.
	DryRun io.Writer

	// Logger receives debug output for every command (default: discard)
	Logger logging.Logger
}

// Client builds and runs doveadm commands.
type Client struct {
	runner Runner
	binary string
	global []string
	dryRun io.Writer
	logger logging.Logger
}

// NewClient creates a Client that executes commands through runner.
func NewClient(runner Runner, opts Options) *Client {
	if opts.Binary == "" {
		opts.Binary = DefaultBinary
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	var global []string
	if opts.Verbosity >= 2 {
		global = append(global, "-v")
	}
	if opts.Verbosity >= 3 {
		global = append(global, "-D")
	}

	return &Client{
		runner: runner,
		binary: opts.Binary,
		global: global,
		dryRun: opts.DryRun,
		logger: opts.Logger,
	}
}

// DryRun reports whether mutating commands are printed instead of run.
func (c *Client) DryRun() bool {
	return c.dryRun != nil
}

// command prefixes args with the binary and global flags.
func (c *Client) command(args ...string) []string {
	argv := make([]string, 0, 1+len(c.global)+len(args))
	argv = append(argv, c.binary)
	argv = append(argv, c.global...)
	return append(argv, args...)
}

// run executes a read-only command.
func (c *Client) run(ctx context.Context, argv []string) ([]byte, error) {
	c.logger.Debug("running doveadm", logging.Command(argv))
	return c.runner.Run(ctx, argv)
}

// mutate executes a command that changes the mail store, or prints it in
// dry-run mode.
func (c *Client) mutate(ctx context.Context, argv []string) error {
	if c.dryRun != nil {
		_, err := fmt.Fprintln(c.dryRun, shellquote.Join(argv...))
		return err
	}
	_, err := c.run(ctx, argv)
	return err
}

// ListMailboxes returns folder and all of its subfolders for user. An empty
// folder lists every mailbox.
func (c *Client) ListMailboxes(ctx context.Context, user, folder string) ([]string, error) {
	argv := c.command("mailbox", "list", "-u", user, mailbox.ListPattern(folder))
	out, err := c.run(ctx, argv)
	if err != nil {
		return nil, fmt.Errorf("failed to list mailboxes of %q: %w", folder, err)
	}

	var folders []string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		if line := strings.TrimRight(scanner.Text(), "\r"); line != "" {
			folders = append(folders, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read mailbox list: %w", err)
	}
	return folders, nil
}

// MailboxExists reports whether folder exists for user. doveadm exiting
// with a nonzero code means the folder is absent; other failures are errors.
func (c *Client) MailboxExists(ctx context.Context, user, folder string) (bool, error) {
	argv := c.command("mailbox", "status", "-u", user, "messages", folder)
	_, err := c.run(ctx, argv)
	if err == nil {
		return true, nil
	}

	var cmdErr *CommandError
	if errors.As(err, &cmdErr) && cmdErr.ExitCode > 0 {
		return false, nil
	}
	return false, fmt.Errorf("failed to check mailbox %q: %w", folder, err)
}

// CreateMailbox creates folder for user and subscribes the user to it.
func (c *Client) CreateMailbox(ctx context.Context, user, folder string) error {
	if err := c.mutate(ctx, c.command("mailbox", "create", "-u", user, folder)); err != nil {
		return fmt.Errorf("failed to create mailbox %q: %w", folder, err)
	}
	if err := c.mutate(ctx, c.command("mailbox", "subscribe", "-u", user, folder)); err != nil {
		return fmt.Errorf("failed to subscribe to mailbox %q: %w", folder, err)
	}
	return nil
}

// HasMessages reports whether folder of user holds any message matching q.
func (c *Client) HasMessages(ctx context.Context, user, folder string, q Query) (bool, error) {
	args := append([]string{"search", "-u", user, "mailbox", folder}, q.Args()...)
	out, err := c.run(ctx, c.command(args...))
	if err != nil {
		return false, fmt.Errorf("failed to search mailbox %q: %w", folder, err)
	}
	return len(bytes.TrimSpace(out)) > 0, nil
}

// Transfer moves or copies the messages described by t.
func (c *Client) Transfer(ctx context.Context, t Transfer) error {
	args := []string{t.Verb(), "-u", t.DstUser, t.DstFolder}
	if t.User != t.DstUser {
		args = append(args, "user", t.User)
	}
	args = append(args, "mailbox", t.Folder)
	args = append(args, t.Query.Args()...)

	if err := c.mutate(ctx, c.command(args...)); err != nil {
		return fmt.Errorf("failed to %s mailbox %q: %w", t.Verb(), t.Folder, err)
	}
	return nil
}
