// Package archive plans and runs an archive of Dovecot mail folders.
//
// A Request names the source user and folders, the destination user and root
// folder, and whether to split the archive into per-year folders. Run expands
// the requested folders into all of their subfolders, builds one FolderPlan
// per folder (and per year when splitting) and processes the plans in order:
//
//  1. search the source folder for mail in the plan's window
//  2. create and subscribe the destination folder when it is missing
//  3. move or copy the matching mail
//
// Plans are processed best-effort: a failing folder is logged and recorded,
// and the remaining plans still run. Run returns ErrPartialFailure when any
// plan failed.
package archive
