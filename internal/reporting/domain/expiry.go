package reporting

import (
	"strings"
	"time"
)

// ExpiryStatus classifies a period by how close its end date is.
type ExpiryStatus int

const (
	ExpiryIssued ExpiryStatus = iota + 1
	ExpiryWithinThreeMonths
	ExpiryJustExpired
	ExpiryExpired
)

const expiryWindowMonths = 3

// String returns the dashboard label.
func (s ExpiryStatus) String() string {
	switch s {
	case ExpiryIssued:
		return "issued"
	case ExpiryWithinThreeMonths:
		return "expire in 3 months"
	case ExpiryJustExpired:
		return "just expired"
	case ExpiryExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Active reports whether the contract has not yet ended.
func (s ExpiryStatus) Active() bool {
	return s == ExpiryIssued || s == ExpiryWithinThreeMonths
}

// ParseExpiryStatus accepts a dashboard label, case insensitive.
func ParseExpiryStatus(label string) (ExpiryStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "issued":
		return ExpiryIssued, true
	case "expire in 3 months":
		return ExpiryWithinThreeMonths, true
	case "just expired":
		return ExpiryJustExpired, true
	case "expired":
		return ExpiryExpired, true
	default:
		return 0, false
	}
}

// ClassifyExpiry derives the status of a contract ending on endDate as of now.
// The end date itself still counts as covered.
func ClassifyExpiry(endDate, now time.Time) ExpiryStatus {
	end := DateOf(endDate)
	today := DateOf(now)
	switch {
	case !end.Before(today.AddDate(0, expiryWindowMonths, 0)):
		return ExpiryIssued
	case !end.Before(today):
		return ExpiryWithinThreeMonths
	case !end.Before(today.AddDate(0, -expiryWindowMonths, 0)):
		return ExpiryJustExpired
	default:
		return ExpiryExpired
	}
}
