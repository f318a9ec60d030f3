package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/dovecot-archive/internal/doveadm"
	"github.com/teemow/dovecot-archive/internal/mailbox"
)

// version will be set by main
var version = "dev"

// SetVersion sets the version reported by --version
func SetVersion(v string) {
	version = v
}

// environment holds the process-level dependencies of a run.
type environment struct {
	runner doveadm.Runner
	now    func() time.Time
	stdout io.Writer
	stderr io.Writer
}

// Execute is the main entry point for the CLI application
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], environment{
		runner: doveadm.ExecRunner{},
		now:    time.Now,
		stdout: os.Stdout,
		stderr: os.Stderr,
	})
	cancel()
	os.Exit(code)
}

// run executes the root command with args and returns the exit code.
func run(ctx context.Context, args []string, env environment) int {
	rootCmd := newRootCmd(env)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(env.stderr, "Error: %v\n", err)
		if exitCode(err) == exitUsage {
			fmt.Fprintf(env.stderr, "Run '%s --help' for usage.\n", rootCmd.CommandPath())
		}
	}
	return exitCode(err)
}

func newRootCmd(env environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dovecot-archive",
		Short: "Archive Dovecot mail folders with doveadm",
		Long: `dovecot-archive moves or copies mail older than a cutoff date into archive
folders, optionally splitting the archive into one folder per year. All mail
operations are delegated to doveadm.

The --before cutoff accepts an ISO-8601 date (2021-06-01), an IMAP date
(1-Jun-2021), a Unix timestamp, or a relative age such as "3 years",
"6 months", "14 days" or "12h".`,
		Example: `  # Move all mail older than 14 days into Archive/<year>/<folder>
  dovecot-archive -u jane@example.com -r Archive -y -b "14 days"

  # Copy INBOX and its subfolders to another user, year as last folder
  dovecot-archive -u jane@example.com -f INBOX -d archive@example.com -y -l -c

  # Show what would be done
  dovecot-archive -u jane@example.com -r Archive -b "1 year" -n`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usageErrorf("unexpected arguments: %v", args)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArchive(cmd, env)
		},
	}

	cmd.SetVersionTemplate(`{{printf "dovecot-archive version %s\n" .Version}}`)
	cmd.SetOut(env.stdout)
	cmd.SetErr(env.stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err: err}
	})

	flags := cmd.Flags()
	flags.StringP(flagUser, "u", "", "Source user whose mail is archived (required)")
	flags.StringArrayP(flagFolder, "f", nil, "Folder to archive including its subfolders; repeat for more folders (default: all folders)")
	flags.StringP(flagDstUser, "d", "", "Destination user (default: the source user)")
	flags.StringP(flagDstRootFolder, "r", "", "Destination root folder (default: the root of the destination namespace)")
	flags.StringP(flagBefore, "b", "", "Archive only mail received before this date or age, e.g. \"3 years\"")
	flags.BoolP(flagSplitByYear, "y", false, "Archive each year into its own folder")
	flags.BoolP(flagYearAsLastFolder, "l", false, "Put the year after the folder name instead of before it (with --split-by-year)")
	flags.BoolP(flagCopy, "c", false, "Copy mail instead of moving it")
	flags.CountP(flagVerbose, "v", "Increase verbosity; -vv also makes doveadm verbose, -vvv enables doveadm debug output")
	flags.StringP(flagNamespaceSeparator, "s", mailbox.DefaultSeparator, "Namespace hierarchy separator")
	flags.String(flagDoveadm, doveadm.DefaultBinary, "Path to the doveadm binary")
	flags.BoolP(flagDryRun, "n", false, "Print the commands that would change mail instead of running them")
	flags.Bool(flagJSON, false, "Print a JSON summary of the processed folders")
	flags.String(flagConfig, "", "Config file (YAML, TOML or JSON) with flag names as keys")

	return cmd
}
