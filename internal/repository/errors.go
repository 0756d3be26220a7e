// Package repository holds the MySQL persistence for rooms, reservations,
// usage logs, digital keys and guest confirmations.  Lookups of a missing
// row return sql.ErrNoRows unchanged so callers can test for it with
// errors.Is.
package repository

import "errors"

// ErrDuplicate is returned when an insert hits a unique key, for example
// a second booking confirmation for the same reservation.  Callers that
// treat the write as idempotent can ignore it.
var ErrDuplicate = errors.New("duplicate")
