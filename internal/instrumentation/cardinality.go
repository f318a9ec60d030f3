package instrumentation

import "strings"

// ExtractUserDomain extracts the domain part from a mail user name.
// Dovecot users are often full addresses; the domain keeps metric label
// cardinality bounded.
//
// Example:
//
//	ExtractUserDomain("jane@example.com")  // "example.com"
//	ExtractUserDomain("jane")              // "unknown"
//	ExtractUserDomain("")                  // "unknown"
func ExtractUserDomain(user string) string {
	if user == "" {
		return "unknown"
	}

	parts := strings.Split(user, "@")
	if len(parts) == 2 && parts[1] != "" {
		return parts[1]
	}

	return "unknown"
}

// Modes recorded on folder metrics.
const (
	ModeMove = "move"
	ModeCopy = "copy"
)
