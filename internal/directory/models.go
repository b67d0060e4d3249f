package directory

import (
	id "sectracker/pkg/domain"
)

// Entry is one row of the ticker directory: an exchange symbol together with
// the legal filing name and SEC identifier it belongs to.
// Entries are immutable once loaded.
type Entry struct {
	Ticker id.Ticker
	Name   string
	CIK    id.CIK
}
