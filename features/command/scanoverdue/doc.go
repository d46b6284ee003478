// Package scanoverdue implements the Overdue Scanner.
//
// A scan reads every open borrowing expected back on or before the scan day and notifies its owner
// through the owner's linked channel. Users with a linked channel and nothing overdue get an
// all-clear notice. Scans never overlap: a scan started while another one runs fails fast with
// ErrScanInProgress. Scheduler runs the scan at a fixed interval.
package scanoverdue
