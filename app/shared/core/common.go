package core

import (
	"time"
)

// BarcodeString is the scanner-readable key of a book or a student.
type BarcodeString = string

// OccurredAt represents the point in time a domain decision is made for.
type OccurredAt = time.Time

// ToOccurredAt converts a time to OccurredAt with UTC normalization and microsecond precision.
// Every timestamp that is persisted or compared passes through here, so values read back from
// the different SQL drivers compare equal to the ones that were written.
func ToOccurredAt(t time.Time) OccurredAt {
	return t.UTC().Truncate(time.Microsecond)
}
