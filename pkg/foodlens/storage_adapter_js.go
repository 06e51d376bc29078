//go:build js || wasm
// +build js wasm

package foodlens

import "errors"

// ErrNotFound is returned by journals for unknown record ids.
var ErrNotFound = errors.New("record not found")

func openJournal(dbPath string) (Journal, error) {
	return nil, errors.New("sqlite journal is not available in js/wasm builds; use WithJournal")
}

// IsNotFound reports whether err means the record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
