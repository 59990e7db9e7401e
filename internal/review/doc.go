// Package review implements the label-review workflow: load a TSV file of
// (url, caption, label) records, render a captioned preview for each
// record, step through the records editing or deleting labels, and export
// the surviving records.
//
// Session is a plain state machine with two states. It has no display
// dependency; cmd/labelcheck puts a window on top of it.
//
//	Empty --Load--> Loaded --Next/Prev/Seek/Save/Delete--> Loaded
//	                Loaded --Export--> Loaded
//
// A failed Load leaves the session exactly as it was.
package review
