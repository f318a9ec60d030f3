package datespec

import (
	"strings"
	"time"
)

// Unit is a span of elapsed time used by relative expressions.
type Unit int

const (
	Seconds Unit = iota
	Minutes
	Hours
	Days
	Weeks
	Months
	Years
)

var unitNames = map[Unit]string{
	Seconds: "seconds",
	Minutes: "minutes",
	Hours:   "hours",
	Days:    "days",
	Weeks:   "weeks",
	Months:  "months",
	Years:   "years",
}

func (u Unit) String() string {
	if name, ok := unitNames[u]; ok {
		return name
	}
	return "unknown"
}

// Calendar reports whether the unit resolves to a calendar date rather than
// an exact timestamp.
func (u Unit) Calendar() bool {
	return u >= Days
}

// maxSpanYears bounds relative expressions so the result stays a valid
// calendar year.
const maxSpanYears = 9999

var unitSeconds = map[Unit]int64{
	Seconds: 1,
	Minutes: 60,
	Hours:   60 * 60,
	Days:    24 * 60 * 60,
	Weeks:   7 * 24 * 60 * 60,
	Months:  31 * 24 * 60 * 60,
	Years:   366 * 24 * 60 * 60,
}

// InRange reports whether n units fit within maxSpanYears.
func (u Unit) InRange(n int) bool {
	secs, ok := unitSeconds[u]
	if !ok || n < 0 {
		return false
	}
	return int64(n) <= maxSpanYears*unitSeconds[Years]/secs
}

// Subtract returns t minus n units. Month and year arithmetic clamps the day
// to the last day of the target month. n must satisfy InRange.
func (u Unit) Subtract(t time.Time, n int) time.Time {
	switch u {
	case Seconds, Minutes, Hours:
		return time.Unix(t.Unix()-int64(n)*unitSeconds[u], int64(t.Nanosecond())).In(t.Location())
	case Days:
		return t.AddDate(0, 0, -n)
	case Weeks:
		return t.AddDate(0, 0, -7*n)
	case Months:
		return addMonths(t, -n)
	case Years:
		return addMonths(t, -12*n)
	}
	return t
}

// unitFor maps a matched unit spelling to its Unit. The spelling has already
// been validated by relativePattern.
func unitFor(spelling string) Unit {
	if strings.HasPrefix(spelling, "mo") {
		return Months
	}
	switch spelling[0] {
	case 's':
		return Seconds
	case 'm':
		return Minutes
	case 'h':
		return Hours
	case 'd':
		return Days
	case 'w':
		return Weeks
	}
	return Years
}

func addMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	total := int(month) - 1 + months
	year += total / 12
	total %= 12
	if total < 0 {
		total += 12
		year--
	}
	target := time.Month(total + 1)
	if last := daysIn(year, target); day > last {
		day = last
	}
	return time.Date(year, target, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
