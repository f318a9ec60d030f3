package datespec

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Layouts understood by doveadm search queries.
const (
	ISODateLayout  = "2006-01-02"
	IMAPDateLayout = "2-Jan-2006"

	shortISODateLayout = "2006-1-2"
)

// ErrUnparsable is returned when a value matches none of the supported forms.
var ErrUnparsable = errors.New("unable to parse time representation")

// epochFloor rejects small integers as timestamps so that an unquoted
// "3 years" split by the shell into "3" is not taken as 1970.
var epochFloor = struct {
	year  int
	month time.Month
	day   int
}{1990, time.January, 1}

var relativePattern = regexp.MustCompile(`^(\d+) ?(s(?:ec(?:ond)?s?)?|m(?:in(?:ute)?s?)?|h(?:(?:ou)?rs?)?|d(?:ays?)?|w(?:(?:ee)?ks?)?|mo(?:n(?:th)?s?)?|y(?:(?:ea)?rs?)?)$`)

// Cutoff is a resolved --before expression.
type Cutoff struct {
	// Time is the resolved instant. Zero when no cutoff was given.
	Time time.Time

	// Arg is the value passed to doveadm after the "before" search key.
	// Empty means unbounded.
	Arg string

	// Year is the most recent year containing mail to process. It is the
	// current year when no cutoff was given.
	Year int
}

// IsZero reports whether the cutoff is unbounded.
func (c Cutoff) IsZero() bool {
	return c.Arg == ""
}

// String returns a human readable form for log messages.
func (c Cutoff) String() string {
	if c.IsZero() {
		return "now"
	}
	return c.Arg
}

// Parse resolves value relative to now.
func Parse(value string, now time.Time) (Cutoff, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Cutoff{Year: now.Year()}, nil
	}

	if c, ok := parseEpoch(value, now.Location()); ok {
		return c, nil
	}

	if t, err := time.ParseInLocation(ISODateLayout, value, now.Location()); err == nil {
		return Cutoff{Time: t, Arg: value, Year: t.Year()}, nil
	}

	// doveadm only understands the zero padded form.
	if t, err := time.ParseInLocation(shortISODateLayout, value, now.Location()); err == nil {
		return Cutoff{Time: t, Arg: t.Format(ISODateLayout), Year: t.Year()}, nil
	}

	if t, err := time.ParseInLocation(IMAPDateLayout, value, now.Location()); err == nil {
		return Cutoff{Time: t, Arg: value, Year: t.Year()}, nil
	}

	m := relativePattern.FindStringSubmatch(value)
	if m == nil {
		return Cutoff{}, fmt.Errorf("%w %q", ErrUnparsable, value)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return Cutoff{}, fmt.Errorf("%w %q: %v", ErrUnparsable, value, err)
	}
	unit := unitFor(m[2])
	if !unit.InRange(n) {
		return Cutoff{}, fmt.Errorf("%w %q: more than %d years ago", ErrUnparsable, value, maxSpanYears)
	}
	t := unit.Subtract(now, n)
	if t.Year() < 1 {
		return Cutoff{}, fmt.Errorf("%w %q: before year 1", ErrUnparsable, value)
	}

	c := Cutoff{Time: t, Year: t.Year()}
	if unit.Calendar() {
		c.Arg = t.Format(ISODateLayout)
	} else {
		c.Arg = strconv.FormatInt(t.Unix(), 10)
	}
	return c, nil
}

func parseEpoch(value string, loc *time.Location) (Cutoff, bool) {
	for _, r := range value {
		if r < '0' || r > '9' {
			return Cutoff{}, false
		}
	}
	secs, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return Cutoff{}, false
	}
	t := time.Unix(secs, 0).In(loc)
	floor := time.Date(epochFloor.year, epochFloor.month, epochFloor.day, 0, 0, 0, 0, loc)
	if !t.After(floor) {
		return Cutoff{}, false
	}
	return Cutoff{Time: t, Arg: value, Year: t.Year()}, true
}
