package doveadm

import (
	"context"
	"strings"
)

// fakeRunner records every argv and answers from a table keyed by the
// subcommand name.
type fakeRunner struct {
	calls   [][]string
	outputs map[string]string
	errs    map[string]error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		outputs: map[string]string{},
		errs:    map[string]error{},
	}
}

func (f *fakeRunner) Run(_ context.Context, argv []string) ([]byte, error) {
	f.calls = append(f.calls, append([]string(nil), argv...))
	cmd := Subcommand(argv)
	return []byte(f.outputs[cmd]), f.errs[cmd]
}

func (f *fakeRunner) commandLines() []string {
	lines := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		lines = append(lines, strings.Join(c, " "))
	}
	return lines
}
