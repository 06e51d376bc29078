package scan

import "errors"

var (
	// ErrNotReady is returned when a scan arrives before the camera is ready.
	ErrNotReady = errors.New("camera not ready")

	// ErrEmptyPayload is returned for blank payloads.
	ErrEmptyPayload = errors.New("empty payload")

	// ErrUnsupportedSymbology is returned for types outside the accepted set.
	ErrUnsupportedSymbology = errors.New("unsupported symbology")

	// ErrMalformedPayload is returned when a payload does not fit its symbology.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrDuplicate is returned for a repeated payload inside the cooldown window.
	ErrDuplicate = errors.New("duplicate scan within cooldown")
)
