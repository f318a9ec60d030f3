package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/dovecot-archive/internal/batch"
	"github.com/teemow/dovecot-archive/internal/doveadm"
)

var refNow = time.Date(2021, time.February, 18, 12, 0, 0, 0, time.UTC)

// fakeDoveadm answers doveadm invocations from a table keyed by subcommand
// and records every argv.
type fakeDoveadm struct {
	calls   []string
	outputs map[string]string
	errs    map[string]error
	// failFolder makes move and copy fail for the given source folder.
	failFolder string
}

func newFakeDoveadm() *fakeDoveadm {
	return &fakeDoveadm{
		outputs: map[string]string{
			"mailbox list": "INBOX\nSent\n",
			"search":       "9f2c1a00 1\n",
		},
		errs: map[string]error{
			"mailbox status": &doveadm.CommandError{ExitCode: 68, Stderr: "Mailbox doesn't exist"},
		},
	}
}

func (f *fakeDoveadm) Run(_ context.Context, argv []string) ([]byte, error) {
	f.calls = append(f.calls, strings.Join(argv, " "))
	cmd := doveadm.Subcommand(argv)
	if (cmd == "move" || cmd == "copy") && f.failFolder != "" && strings.Contains(strings.Join(argv, " "), "mailbox "+f.failFolder+" ") {
		return nil, &doveadm.CommandError{Args: argv, ExitCode: 75, Stderr: "Temporary failure"}
	}
	return []byte(f.outputs[cmd]), f.errs[cmd]
}

type result struct {
	code   int
	stdout string
	stderr string
}

func execute(t *testing.T, runner doveadm.Runner, args ...string) result {
	t.Helper()
	t.Setenv("INSTRUMENTATION_ENABLED", "false")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, environment{
		runner: runner,
		now:    func() time.Time { return refNow },
		stdout: &stdout,
		stderr: &stderr,
	})
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestArchive_MoveIntoRoot(t *testing.T) {
	fake := newFakeDoveadm()

	res := execute(t, fake, "--user", "jane@example.com", "--dst-root-folder", "Archive", "--before", "2020-06-01")
	require.Equal(t, exitOK, res.code, res.stderr)

	assert.Equal(t, []string{
		"doveadm mailbox list -u jane@example.com *",
		"doveadm search -u jane@example.com mailbox INBOX before 2020-06-01",
		"doveadm mailbox status -u jane@example.com messages Archive/INBOX",
		"doveadm mailbox create -u jane@example.com Archive/INBOX",
		"doveadm mailbox subscribe -u jane@example.com Archive/INBOX",
		"doveadm move -u jane@example.com Archive/INBOX mailbox INBOX before 2020-06-01",
		"doveadm search -u jane@example.com mailbox Sent before 2020-06-01",
		"doveadm mailbox status -u jane@example.com messages Archive/Sent",
		"doveadm mailbox create -u jane@example.com Archive/Sent",
		"doveadm mailbox subscribe -u jane@example.com Archive/Sent",
		"doveadm move -u jane@example.com Archive/Sent mailbox Sent before 2020-06-01",
	}, fake.calls)
	assert.Empty(t, res.stdout)
}

func TestArchive_SplitByYearShortFlags(t *testing.T) {
	fake := newFakeDoveadm()
	fake.outputs["mailbox list"] = "INBOX\n"
	fake.errs = map[string]error{}

	res := execute(t, fake, "-u", "jane", "-f", "INBOX", "-d", "archive", "-b", "31-Oct-1995", "-y", "-l", "-c")
	require.Equal(t, exitOK, res.code, res.stderr)

	assert.Equal(t, []string{
		"doveadm mailbox list -u jane INBOX*",
		"doveadm search -u jane mailbox INBOX since 1995-01-01 before 31-Oct-1995",
		"doveadm mailbox status -u archive messages INBOX/1995",
		"doveadm copy -u archive INBOX/1995 user jane mailbox INBOX since 1995-01-01 before 31-Oct-1995",
	}, fake.calls)
}

func TestArchive_RelativeBefore(t *testing.T) {
	fake := newFakeDoveadm()
	fake.outputs["mailbox list"] = "INBOX\n"

	res := execute(t, fake, "-u", "jane", "-r", "Archive", "-b", "2 hours")
	require.Equal(t, exitOK, res.code, res.stderr)

	assert.Contains(t, fake.calls, "doveadm move -u jane Archive/INBOX mailbox INBOX before 1613642400")
}

func TestArchive_MissingUser(t *testing.T) {
	fake := newFakeDoveadm()

	res := execute(t, fake, "--dst-root-folder", "Archive")

	assert.Equal(t, exitUsage, res.code)
	assert.Contains(t, res.stderr, "--user is required")
	assert.Empty(t, fake.calls)
}

func TestArchive_InvalidBefore(t *testing.T) {
	for _, before := range []string{"3 fortnights", "yesterday", "3", "2021-13-01"} {
		t.Run(before, func(t *testing.T) {
			fake := newFakeDoveadm()

			res := execute(t, fake, "-u", "jane", "-b", before)

			assert.Equal(t, exitUsage, res.code)
			assert.Contains(t, res.stderr, "invalid --before")
			assert.Empty(t, fake.calls, "no doveadm command may run for an invalid date")
		})
	}
}

func TestArchive_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown flag", args: []string{"-u", "jane", "--bogus"}},
		{name: "positional argument", args: []string{"-u", "jane", "INBOX"}},
		{name: "missing flag value", args: []string{"-u"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeDoveadm()

			res := execute(t, fake, tt.args...)

			assert.Equal(t, exitUsage, res.code)
			assert.Contains(t, res.stderr, "--help")
			assert.Empty(t, fake.calls)
		})
	}
}

func TestArchive_PartialFailure(t *testing.T) {
	fake := newFakeDoveadm()
	fake.failFolder = "INBOX"

	res := execute(t, fake, "-u", "jane", "-r", "Archive", "--json")

	assert.Equal(t, exitFailure, res.code)
	assert.Contains(t, fake.calls, "doveadm move -u jane Archive/Sent mailbox Sent all", "remaining folders still run")
	assert.Contains(t, res.stderr, "Temporary failure")

	var summary batch.Summary
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &summary))
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Successful)
}

func TestArchive_DryRun(t *testing.T) {
	fake := newFakeDoveadm()
	fake.outputs["mailbox list"] = "INBOX\n"

	res := execute(t, fake, "-u", "jane", "-r", "Old Mail", "-n")
	require.Equal(t, exitOK, res.code, res.stderr)

	assert.Equal(t, []string{
		"doveadm mailbox list -u jane *",
		"doveadm search -u jane mailbox INBOX all",
		"doveadm mailbox status -u jane messages Old Mail/INBOX",
	}, fake.calls)
	assert.Equal(t,
		"doveadm mailbox create -u jane 'Old Mail/INBOX'\n"+
			"doveadm mailbox subscribe -u jane 'Old Mail/INBOX'\n"+
			"doveadm move -u jane 'Old Mail/INBOX' mailbox INBOX all\n",
		res.stdout)
}

func TestArchive_DryRunNotice(t *testing.T) {
	fake := newFakeDoveadm()
	fake.outputs["mailbox list"] = ""

	res := execute(t, fake, "-u", "jane", "-n", "-v")
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stderr, "dry run")

	res = execute(t, newFakeDoveadm(), "-u", "jane", "-v")
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.NotContains(t, res.stderr, "dry run")
}

func TestArchive_Verbosity(t *testing.T) {
	fake := newFakeDoveadm()
	fake.outputs["mailbox list"] = ""

	res := execute(t, fake, "-u", "jane", "-vvv", "--doveadm", "/opt/dovecot/bin/doveadm")
	require.Equal(t, exitOK, res.code, res.stderr)

	assert.Equal(t, []string{"/opt/dovecot/bin/doveadm -v -D mailbox list -u jane *"}, fake.calls)
	assert.Contains(t, res.stderr, "level=DEBUG")
}

func TestArchive_QuietByDefault(t *testing.T) {
	fake := newFakeDoveadm()

	res := execute(t, fake, "-u", "jane", "-r", "Archive")
	require.Equal(t, exitOK, res.code)

	assert.Empty(t, res.stderr)
}

func TestArchive_NamespaceSeparator(t *testing.T) {
	fake := newFakeDoveadm()
	fake.outputs["mailbox list"] = "INBOX.Work\n"

	res := execute(t, fake, "-u", "jane", "-r", "Archive", "-s", ".", "-y", "-b", "2000-03-01")
	require.Equal(t, exitOK, res.code, res.stderr)

	assert.Contains(t, fake.calls, "doveadm move -u jane Archive.2000.INBOX.Work mailbox INBOX.Work since 2000-01-01 before 2000-03-01")
}

func TestArchive_Environment(t *testing.T) {
	fake := newFakeDoveadm()
	fake.outputs["mailbox list"] = "INBOX\n"
	t.Setenv("DOVECOT_ARCHIVE_USER", "jane")
	t.Setenv("DOVECOT_ARCHIVE_DST_ROOT_FOLDER", "FromEnv")
	t.Setenv("DOVECOT_ARCHIVE_COPY", "true")

	res := execute(t, fake, "--dst-root-folder", "FromFlag")
	require.Equal(t, exitOK, res.code, res.stderr)

	assert.Contains(t, fake.calls, "doveadm copy -u jane FromFlag/INBOX mailbox INBOX all", "flags override the environment")
}

func TestArchive_ConfigFile(t *testing.T) {
	fake := newFakeDoveadm()
	fake.outputs["mailbox list"] = "INBOX\n"

	path := filepath.Join(t.TempDir(), "archive.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`user: jane
dst-user: archive
dst-root-folder: Mail
split-by-year: true
folder:
  - INBOX
`), 0o600))

	res := execute(t, fake, "--config", path, "-b", "2001-02-01")
	require.Equal(t, exitOK, res.code, res.stderr)

	assert.Equal(t, "doveadm mailbox list -u jane INBOX*", fake.calls[0])
	assert.Contains(t, fake.calls, "doveadm move -u archive Mail/2001/INBOX user jane mailbox INBOX since 2001-01-01 before 2001-02-01")
	assert.Contains(t, fake.calls, "doveadm move -u archive Mail/2000/INBOX user jane mailbox INBOX since 2000-01-01 before 2001-01-01")
}

func listCalls(calls []string) []string {
	var lists []string
	for _, call := range calls {
		if strings.HasPrefix(call, "doveadm mailbox list ") {
			lists = append(lists, call)
		}
	}
	return lists
}

func TestArchive_FolderWithSpaceFromEnvironment(t *testing.T) {
	fake := newFakeDoveadm()
	fake.outputs["mailbox list"] = "Sent Items\n"
	t.Setenv("DOVECOT_ARCHIVE_FOLDER", "Sent Items")

	res := execute(t, fake, "-u", "jane", "-r", "Archive")
	require.Equal(t, exitOK, res.code, res.stderr)

	assert.Equal(t, []string{"doveadm mailbox list -u jane Sent Items*"}, listCalls(fake.calls))
	assert.Contains(t, fake.calls, "doveadm move -u jane Archive/Sent Items mailbox Sent Items all")
}

func TestArchive_FolderWithSpaceFromConfigFile(t *testing.T) {
	fake := newFakeDoveadm()
	fake.outputs["mailbox list"] = "Sent Items\n"

	path := filepath.Join(t.TempDir(), "archive.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`user: jane
dst-root-folder: Archive
folder: Sent Items
`), 0o600))

	res := execute(t, fake, "--config", path)
	require.Equal(t, exitOK, res.code, res.stderr)

	assert.Equal(t, []string{"doveadm mailbox list -u jane Sent Items*"}, listCalls(fake.calls))
}

func TestFolders(t *testing.T) {
	assert.Nil(t, folders(nil))
	assert.Nil(t, folders(""))
	assert.Equal(t, []string{"Sent Items"}, folders("Sent Items"))
	assert.Equal(t, []string{"INBOX", "Sent Items"}, folders([]string{"INBOX", "Sent Items"}))
	assert.Equal(t, []string{"INBOX", "2021"}, folders([]any{"INBOX", 2021}))
}

func TestArchive_ConfigFileMissing(t *testing.T) {
	fake := newFakeDoveadm()

	res := execute(t, fake, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "-u", "jane")

	assert.Equal(t, exitFailure, res.code)
	assert.Empty(t, fake.calls)
}

func TestVersion(t *testing.T) {
	SetVersion("1.2.3")
	t.Cleanup(func() { SetVersion("dev") })

	res := execute(t, newFakeDoveadm(), "--version")

	assert.Equal(t, exitOK, res.code)
	assert.Equal(t, "dovecot-archive version 1.2.3\n", res.stdout)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitOK, exitCode(nil))
	assert.Equal(t, exitUsage, exitCode(usageErrorf("bad flag")))
	assert.Equal(t, exitFailure, exitCode(assert.AnError))
}
