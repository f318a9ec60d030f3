// Package cmd implements the command-line interface for dovecot-archive.
//
// dovecot-archive is a single command. Its flags describe what to archive
// (user, folders, cutoff date) and where to put it (destination user, root
// folder, per-year folders). Every flag can also be set through a
// DOVECOT_ARCHIVE_* environment variable or a config file passed with
// --config; flags take precedence over the environment, which takes
// precedence over the config file.
//
// Exit status is 0 on success, 1 when a folder failed or doveadm could not be
// run, and 2 on invalid usage.
package cmd
