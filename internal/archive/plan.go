package archive

import (
	"fmt"
	"strconv"

	"github.com/teemow/dovecot-archive/internal/datespec"
	"github.com/teemow/dovecot-archive/internal/doveadm"
	"github.com/teemow/dovecot-archive/internal/mailbox"
)

// OldestSplitYear is the oldest year a split-by-year run always covers.
// Runs whose cutoff year is older only cover that year.
const OldestSplitYear = 2000

// Window bounds the received date of the mail a plan processes. Both values
// are doveadm date arguments; an empty value is open.
type Window struct {
	Since  string
	Before string
}

// Query returns the doveadm search query for the window.
func (w Window) Query() doveadm.Query {
	return doveadm.Query{Since: w.Since, Before: w.Before}
}

// FolderPlan is the unit of work of a run: one source folder archived into
// one destination folder.
type FolderPlan struct {
	Source      string
	Destination string

	// Year is the archived year, 0 when not splitting by year.
	Year int

	Window Window
}

// ID identifies the plan in results and log messages.
func (p FolderPlan) ID() string {
	if p.Year != 0 {
		return fmt.Sprintf("%s -> %s (%d)", p.Source, p.Destination, p.Year)
	}
	return fmt.Sprintf("%s -> %s", p.Source, p.Destination)
}

// Plan builds the folder plans for folders. Without splitting every folder
// gets one plan covering all mail before the cutoff. With splitting, years
// run from the cutoff year back to OldestSplitYear with the folders inside
// each year; the newest year ends at the cutoff and every older year ends
// where the next one starts.
func Plan(req Request, folders []string, cutoff datespec.Cutoff) []FolderPlan {
	req = req.Normalize()

	if !req.SplitByYear {
		plans := make([]FolderPlan, 0, len(folders))
		for _, folder := range folders {
			plans = append(plans, FolderPlan{
				Source:      folder,
				Destination: mailbox.Destination(req.DstRoot, folder, 0, false, req.Separator),
				Window:      Window{Before: cutoff.Arg},
			})
		}
		return plans
	}

	last := min(cutoff.Year, OldestSplitYear)
	plans := make([]FolderPlan, 0, len(folders)*(cutoff.Year-last+1))
	before := cutoff.Arg
	for year := cutoff.Year; year >= last; year-- {
		since := strconv.Itoa(year) + "-01-01"
		for _, folder := range folders {
			plans = append(plans, FolderPlan{
				Source:      folder,
				Destination: mailbox.Destination(req.DstRoot, folder, year, req.YearLast, req.Separator),
				Year:        year,
				Window:      Window{Since: since, Before: before},
			})
		}
		before = since
	}
	return plans
}
