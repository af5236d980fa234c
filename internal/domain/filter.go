package domain

import "time"

// FilterSelection is the value object describing one interaction's
// multi-select state. For each set field a nil slice means "all" (no
// restriction applied yet) while a non-nil empty slice means the user
// explicitly deselected everything, which matches zero records. The two
// must never be conflated.
//
// Selections are passed by value and never mutated by the pipeline.
type FilterSelection struct {
	Sites []string
	Taxa  []string
	Years []int
	Traps []string

	// Optional inclusive sample-date bounds.
	DateFrom *time.Time
	DateTo   *time.Time
}

// IsUnrestricted reports whether the selection applies no filtering at
// all, i.e. every clause is in the "all" state.
func (s FilterSelection) IsUnrestricted() bool {
	return s.Sites == nil && s.Taxa == nil && s.Years == nil &&
		s.Traps == nil && s.DateFrom == nil && s.DateTo == nil
}
