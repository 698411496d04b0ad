package reporting

import "fmt"

// Scope selects which periods a report reads: every division, or one.
type Scope struct {
	all        bool
	divisionID int
}

// AllDivisions is the admin-wide scope.
func AllDivisions() Scope { return Scope{all: true} }

// DivisionScope limits a report to one division.
func DivisionScope(divisionID int) Scope { return Scope{divisionID: divisionID} }

// All reports whether the scope spans every division.
func (s Scope) All() bool { return s.all }

// DivisionID returns the division of a division scope.
func (s Scope) DivisionID() int { return s.divisionID }

// Includes reports whether a period of divisionID is visible.
func (s Scope) Includes(divisionID int) bool {
	return s.all || s.divisionID == divisionID
}

// Validate rejects the zero scope.
func (s Scope) Validate() error {
	if !s.all && s.divisionID <= 0 {
		return fmt.Errorf("%w: division %d", ErrInvalidScope, s.divisionID)
	}
	return nil
}

// String is used in logs and metrics.
func (s Scope) String() string {
	if s.all {
		return "all"
	}
	return fmt.Sprintf("division:%d", s.divisionID)
}
