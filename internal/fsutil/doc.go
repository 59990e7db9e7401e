// Package fsutil provides the filesystem helpers used around dataset folders:
// recursive scanning by extension, pruning of target files that lost their
// source counterpart, and text/JSON/YAML read-write dispatched by extension.
//
// SyncRm is destructive. Files it removes are not recoverable, so callers
// must be sure the source tree is complete before pruning against it; use
// SyncOptions.DryRun to preview the result first.
package fsutil
