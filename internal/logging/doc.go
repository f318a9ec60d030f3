// Package logging provides structured logging utilities for dovecot-archive.
//
// Logging goes through the standard library's slog package. This package
// fixes the handler setup for the CLI's verbosity levels and keeps attribute
// names consistent across the codebase.
//
// # Verbosity
//
// The -v flag is counted: no flag logs warnings and errors only, -v adds
// informational messages and -vv adds debug output including every doveadm
// command line.
//
// # Usage Patterns
//
//	logger := logging.New(os.Stderr, verbosity)
//	logger.Info("moving mails",
//	    logging.User(user),
//	    logging.Folder(folder))
//
// Errors are attached with Err, which is safe to call with a nil error:
//
//	logger.Error("folder failed", logging.Err(err))
package logging
