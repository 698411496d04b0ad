package reporting

import "errors"

var (
	// ErrMissingData is returned when charge entries for a period cannot be fetched.
	ErrMissingData = errors.New("reporting: missing charge data")
	// ErrMalformedPeriod is returned when a period carries unparseable dates.
	ErrMalformedPeriod = errors.New("reporting: malformed period")
	// ErrExportIO is returned when a report artifact cannot be serialized.
	ErrExportIO = errors.New("reporting: export io")
	// ErrInvalidYearRange is returned when a requested year range is unusable.
	ErrInvalidYearRange = errors.New("reporting: invalid year range")
	// ErrInvalidScope is returned when a scope names no division.
	ErrInvalidScope = errors.New("reporting: invalid scope")
)
