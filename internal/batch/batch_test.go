package batch

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func identity(s string) string { return s }

func TestProcess(t *testing.T) {
	ids := []string{"id1", "id2", "id3", "id4"}

	fn := func(_ context.Context, id string) (string, error) {
		switch id {
		case "id2":
			return "", errors.New("failed to process id2")
		case "id4":
			return "", Skip("nothing to do")
		}
		return "processed " + id, nil
	}

	results := Process(context.Background(), ids, identity, fn)

	if len(results) != 4 {
		t.Fatalf("len(results) = %d, want 4", len(results))
	}

	if results[0].Status != StatusSuccess || results[0].Result != "processed id1" {
		t.Errorf("results[0] = %+v, want success 'processed id1'", results[0])
	}
	if results[1].Status != StatusError || results[1].Error != "failed to process id2" {
		t.Errorf("results[1] = %+v, want error 'failed to process id2'", results[1])
	}
	// The failure of id2 must not stop id3 from being processed.
	if results[2].Status != StatusSuccess || results[2].Result != "processed id3" {
		t.Errorf("results[2] = %+v, want success 'processed id3'", results[2])
	}
	if results[3].Status != StatusSkipped || results[3].Result != "skipped: nothing to do" {
		t.Errorf("results[3] = %+v, want skipped", results[3])
	}
}

func TestProcess_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	fn := func(_ context.Context, id string) (string, error) {
		calls++
		if id == "a" {
			cancel()
		}
		return "ok", nil
	}

	results := Process(ctx, []string{"a", "b", "c"}, identity, fn)

	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}
	if results[0].Status != StatusSuccess {
		t.Errorf("results[0].Status = %s, want success", results[0].Status)
	}
	for _, r := range results[1:] {
		if r.Status != StatusError || r.Error != context.Canceled.Error() {
			t.Errorf("result %s = %+v, want cancelled error", r.ID, r)
		}
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]Result{
		NewSuccessResult("a", "done"),
		NewErrorResult("b", errors.New("boom")),
		NewSkippedResult("c", Skip("empty")),
		NewSuccessResult("d", "done"),
	})

	if s.Total != 4 || s.Successful != 2 || s.Failed != 1 || s.Skipped != 1 {
		t.Errorf("Summarize = %+v, want total 4, successful 2, failed 1, skipped 1", s)
	}
}

func TestFormatResults(t *testing.T) {
	results := []Result{
		NewSuccessResult("INBOX", "moved"),
		NewErrorResult("Sent", errors.New("exit status 68")),
	}

	var parsed Summary
	if err := json.Unmarshal([]byte(FormatResults(results)), &parsed); err != nil {
		t.Fatalf("FormatResults produced invalid JSON: %v", err)
	}
	if parsed.Total != 2 || parsed.Successful != 1 || parsed.Failed != 1 {
		t.Errorf("parsed summary = %+v", parsed)
	}
	if parsed.Results[1].Error != "exit status 68" {
		t.Errorf("parsed.Results[1].Error = %q", parsed.Results[1].Error)
	}
}

func TestSkip(t *testing.T) {
	err := Skip("no mails")
	if !errors.Is(err, ErrSkipped) {
		t.Errorf("Skip() should wrap ErrSkipped")
	}
	if err.Error() != "skipped: no mails" {
		t.Errorf("Skip().Error() = %q", err.Error())
	}
}
