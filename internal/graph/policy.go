package graph

import "github.com/dusk-indust/srcmerge/internal/source"

// Order config section names. First and Last also name the source of a
// forced unit that cannot be found.
const (
	SectionFirst   = "[first]"
	SectionLast    = "[last]"
	SectionExclude = "[exclude]"
)

// Exclude returns units minus those listed in cfg.Exclude, keeping order.
// Excluding an identifier that was never discovered is a no-op.
func Exclude(units []source.Unit, cfg *OrderConfig) []source.Unit {
	if cfg == nil || len(cfg.Exclude) == 0 {
		return units
	}
	drop := make(map[string]bool, len(cfg.Exclude))
	for _, id := range cfg.Exclude {
		drop[id] = true
	}
	out := make([]source.Unit, 0, len(units))
	for _, u := range units {
		if !drop[u.ID()] {
			out = append(out, u)
		}
	}
	return out
}

// ApplyPolicy moves forced units to the ends of a topological order:
// cfg.First verbatim, then order without any forced unit, then cfg.Last
// verbatim.
//
// The result may violate requirement edges; Verify reports that. A forced
// identifier that is not a unit of g returns a *MissingDependencyError
// naming the config section.
func ApplyPolicy(g *Graph, order []string, cfg *OrderConfig) ([]string, error) {
	if cfg == nil || (len(cfg.First) == 0 && len(cfg.Last) == 0) {
		out := make([]string, len(order))
		copy(out, order)
		return out, nil
	}

	forced := make(map[string]bool, len(cfg.First)+len(cfg.Last))
	for _, id := range cfg.First {
		if !g.Contains(id) {
			return nil, &MissingDependencyError{ID: id, RequiredBy: SectionFirst}
		}
		forced[id] = true
	}
	for _, id := range cfg.Last {
		if !g.Contains(id) {
			return nil, &MissingDependencyError{ID: id, RequiredBy: SectionLast}
		}
		forced[id] = true
	}

	out := make([]string, 0, len(order))
	out = append(out, cfg.First...)
	for _, id := range order {
		if !forced[id] {
			out = append(out, id)
		}
	}
	out = append(out, cfg.Last...)
	return out, nil
}
