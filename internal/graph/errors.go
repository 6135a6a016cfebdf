package graph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingDependency = errors.New("missing dependency")
	ErrCycleDetected     = errors.New("cycle detected")
	ErrInconsistentOrder = errors.New("inconsistent order")
)

// MissingDependencyError reports a requirement on a unit that is not among
// the known, non-excluded units.
type MissingDependencyError struct {
	// ID is the identifier that could not be found.
	ID string

	// RequiredBy is the unit that declared the requirement, or the order
	// config section that forced ID.
	RequiredBy string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("%s: %q required by %q", ErrMissingDependency, e.ID, e.RequiredBy)
}

func (e *MissingDependencyError) Unwrap() error { return ErrMissingDependency }

// CycleError reports units that cannot be ordered.
type CycleError struct {
	// Remaining lists every unit left when sorting stalled, in discovery order.
	Remaining []string

	// Cycle is one witness path that starts and ends at the same unit.
	Cycle []string
}

func (e *CycleError) Error() string {
	if len(e.Cycle) > 0 {
		return fmt.Sprintf("%s: %s", ErrCycleDetected, strings.Join(e.Cycle, " -> "))
	}
	return fmt.Sprintf("%s among: %s", ErrCycleDetected, strings.Join(e.Remaining, ", "))
}

func (e *CycleError) Unwrap() error { return ErrCycleDetected }

// InconsistentOrderError reports requirement edges that point backwards in
// a candidate order, typically after forcing units first or last.
type InconsistentOrderError struct {
	Violations []Edge
}

func (e *InconsistentOrderError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = fmt.Sprintf("%q must precede %q", v.Required, v.Requiring)
	}
	return fmt.Sprintf("%s: %s", ErrInconsistentOrder, strings.Join(parts, "; "))
}

func (e *InconsistentOrderError) Unwrap() error { return ErrInconsistentOrder }
