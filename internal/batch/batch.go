package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Result status values.
const (
	StatusSuccess = "success"
	StatusSkipped = "skipped"
	StatusError   = "error"
)

// ErrSkipped marks an item that needed no work. Wrap it with Skip.
var ErrSkipped = errors.New("skipped")

// Skip returns an error that makes Process record the item as skipped with
// the given reason.
func Skip(reason string) error {
	return fmt.Errorf("%w: %s", ErrSkipped, reason)
}

// Result represents the result of a single item in a batch
type Result struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Summary represents the aggregated results of a batch
type Summary struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Skipped    int      `json:"skipped"`
	Failed     int      `json:"failed"`
	Results    []Result `json:"results"`
}

// Summarize counts results by status.
func Summarize(results []Result) Summary {
	s := Summary{
		Total:   len(results),
		Results: results,
	}
	for _, r := range results {
		switch r.Status {
		case StatusSuccess:
			s.Successful++
		case StatusSkipped:
			s.Skipped++
		default:
			s.Failed++
		}
	}
	return s
}

// FormatResults creates a formatted JSON string from batch results
func FormatResults(results []Result) string {
	jsonBytes, _ := json.MarshalIndent(Summarize(results), "", "  ")
	return string(jsonBytes)
}

// Process runs fn on each item in order and collects one result per item.
// A failing item does not stop the batch. Once ctx is done the remaining
// items are recorded as errors without calling fn.
func Process[T any](ctx context.Context, items []T, id func(T) string, fn func(context.Context, T) (string, error)) []Result {
	results := make([]Result, 0, len(items))

	for _, item := range items {
		itemID := id(item)
		if err := ctx.Err(); err != nil {
			results = append(results, NewErrorResult(itemID, err))
			continue
		}

		res, err := fn(ctx, item)
		switch {
		case err == nil:
			results = append(results, NewSuccessResult(itemID, res))
		case errors.Is(err, ErrSkipped):
			results = append(results, NewSkippedResult(itemID, err))
		default:
			results = append(results, NewErrorResult(itemID, err))
		}
	}

	return results
}

// NewSuccessResult creates a success result
func NewSuccessResult(id, message string) Result {
	return Result{
		ID:     id,
		Status: StatusSuccess,
		Result: message,
	}
}

// NewSkippedResult creates a skipped result from an error wrapping ErrSkipped.
func NewSkippedResult(id string, err error) Result {
	return Result{
		ID:     id,
		Status: StatusSkipped,
		Result: err.Error(),
	}
}

// NewErrorResult creates an error result
func NewErrorResult(id string, err error) Result {
	return Result{
		ID:     id,
		Status: StatusError,
		Error:  err.Error(),
	}
}
