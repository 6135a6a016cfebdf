package source

import "fmt"

// Unit is one discovered source file: its identifier, its raw text, and the
// requirements extracted from that text when the unit was created.
//
// A Unit is immutable. Accessors that return slices return copies.
type Unit struct {
	id       string
	content  string
	requires []string
}

// NewUnit creates a Unit using the permissive marker extractor.
func NewUnit(id, content string) Unit {
	u, _ := NewUnitWith(MarkerExtractor{}, id, content)
	return u
}

// NewUnitWith creates a Unit, extracting requirements with ex.
func NewUnitWith(ex Extractor, id, content string) (Unit, error) {
	if id == "" {
		return Unit{}, fmt.Errorf("unit identifier is required")
	}
	reqs, err := ex.Extract(id, content)
	if err != nil {
		return Unit{}, fmt.Errorf("extract requirements from %s: %w", id, err)
	}
	return Unit{id: id, content: content, requires: reqs}, nil
}

// ID returns the unit's path-like identifier.
func (u Unit) ID() string { return u.id }

// Content returns the unit's raw text.
func (u Unit) Content() string { return u.content }

// Requires returns the unit's requirement identifiers in declaration order.
func (u Unit) Requires() []string {
	out := make([]string, len(u.requires))
	copy(out, u.requires)
	return out
}
