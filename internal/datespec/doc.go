// Package datespec resolves the date expressions accepted by --before into a
// fixed cutoff.
//
// Supported forms, tried in order:
//
//   - Unix epoch seconds, e.g. "1609372800" (only instants after 1990-01-01)
//   - ISO-8601 dates, e.g. "2020-12-31"
//   - IMAP4rev1 dates, e.g. "31-Dec-2020"
//   - Elapsed time relative to now, e.g. "3 years", "14d", "6mo", "2 hours"
//
// Every resolved Cutoff carries the argument doveadm receives in its search
// query. Absolute forms are passed through verbatim; relative forms become a
// calendar date for day-or-longer units and an epoch timestamp for shorter ones.
package datespec
