// Package mailbox builds Dovecot mailbox paths.
//
// Paths use the namespace hierarchy separator configured in Dovecot, which is
// not a filesystem separator. See
// https://doc.dovecot.org/configuration_manual/namespace/#hierarchy-separators
package mailbox

import (
	"strconv"
	"strings"
)

// DefaultSeparator is Dovecot's default hierarchy separator.
const DefaultSeparator = "/"

// Join concatenates path components with sep and strips leading separators,
// so an empty root component collapses away.
func Join(sep string, parts ...string) string {
	if sep == "" {
		sep = DefaultSeparator
	}
	return strings.TrimLeft(strings.Join(parts, sep), sep)
}

// Destination returns the destination path for folder under root.
//
// With year == 0 the folder is placed directly under root. Otherwise a
// four-digit year segment is inserted right after root, or appended as the
// last segment when yearLast is set.
func Destination(root, folder string, year int, yearLast bool, sep string) string {
	if year == 0 {
		return Join(sep, root, folder)
	}
	y := strconv.Itoa(year)
	if yearLast {
		return Join(sep, root, folder, y)
	}
	return Join(sep, root, y, folder)
}

// IsWithin reports whether folder is root itself or one of its descendants.
// An empty root contains nothing.
func IsWithin(folder, root, sep string) bool {
	if sep == "" {
		sep = DefaultSeparator
	}
	root = strings.Trim(root, sep)
	if root == "" {
		return false
	}
	return folder == root || strings.HasPrefix(folder, root+sep)
}

// ListPattern returns the doveadm mailbox list pattern matching folder and
// all of its subfolders. An empty folder matches every mailbox.
func ListPattern(folder string) string {
	return folder + "*"
}
