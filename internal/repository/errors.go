// Package repository implements data access for the active show's
// database.  Each repository wraps the shared database.Store so that the
// handle swap on show selection is transparent to callers.  Sentinel
// errors defined here and next to each repository let the processor
// classify failures: not-found lookups become not-found error envelopes,
// ErrDefaultColumn is an invariant violation that leaves the store
// untouched.
package repository

import "errors"

// ErrDefaultColumn is returned when a delete targets one of the seeded
// default columns.  Default columns can be edited but never removed.
var ErrDefaultColumn = errors.New("cannot delete default column")
