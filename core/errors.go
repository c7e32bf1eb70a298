package core

import "errors"

var (
	// ErrNilError is returned when Capture is asked to record a nil error.
	ErrNilError = errors.New("cannot capture a nil error")

	// ErrNegativeRetentionCap is returned when a trim is requested with
	// a negative cap. Zero is valid and disables trimming.
	ErrNegativeRetentionCap = errors.New("retention cap must not be negative")

	// ErrRecordNotFound is returned by lookups for an id that does not exist.
	ErrRecordNotFound = errors.New("error record not found")

	// ErrSettingsNotFound is returned when a gallery has no persisted settings.
	ErrSettingsNotFound = errors.New("gallery settings not found")
)
