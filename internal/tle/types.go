package tle

import "time"

// Entry is a single satellite's two-line element set, with the fields the
// run needs pulled out of the fixed-column format.
type Entry struct {
	NORADID int
	Name    string
	Epoch   time.Time
	Line1   string
	Line2   string
}
