package storage

import "errors"

var (
	// ErrNotFound reports an operation referencing an id with no live record.
	ErrNotFound = errors.New("expense not found")

	// ErrCorruptFile reports a data file that does not deserialize to a
	// complete record set.
	ErrCorruptFile = errors.New("corrupt data file")
)
