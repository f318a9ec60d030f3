package archive

import (
	"errors"

	"github.com/teemow/dovecot-archive/internal/instrumentation"
	"github.com/teemow/dovecot-archive/internal/mailbox"
)

// ErrMissingUser is returned for a request without a source user.
var ErrMissingUser = errors.New("source user is required")

// Request describes what to archive and where.
type Request struct {
	// User owns the source folders.
	User string

	// Folders to archive, each including its subfolders. Empty means all.
	Folders []string

	// DstUser receives the archive (default: User)
	DstUser string

	// DstRoot is the folder the archive is placed under. Empty means the
	// root of DstUser's namespace.
	DstRoot string

	// SplitByYear archives each year into its own folder.
	SplitByYear bool

	// YearLast places the year after the folder instead of right after
	// DstRoot. Only meaningful with SplitByYear.
	YearLast bool

	// Copy leaves the archived mail in the source folders.
	Copy bool

	// Separator is the namespace hierarchy separator (default: "/")
	Separator string
}

// Normalize returns a copy of r with defaults applied.
func (r Request) Normalize() Request {
	if r.DstUser == "" {
		r.DstUser = r.User
	}
	if len(r.Folders) == 0 {
		r.Folders = []string{""}
	} else {
		r.Folders = append([]string(nil), r.Folders...)
	}
	if r.Separator == "" {
		r.Separator = mailbox.DefaultSeparator
	}
	return r
}

// Validate checks that the request can be run.
func (r Request) Validate() error {
	if r.User == "" {
		return ErrMissingUser
	}
	return nil
}

// SameUser reports whether the archive stays with the source user.
func (r Request) SameUser() bool {
	return r.DstUser == "" || r.DstUser == r.User
}

// Mode returns the metric label for the transfer mode.
func (r Request) Mode() string {
	if r.Copy {
		return instrumentation.ModeCopy
	}
	return instrumentation.ModeMove
}
