package conditionals

import (
	"maps"
	"slices"
)

// When defines the conditions that must be met for a gated effect or a
// dispatch case to fire. All clauses must hold.
type When struct {
	Flags map[string]bool `json:"flags,omitempty"` // Bool field must equal the given value
	Min   map[string]int  `json:"min,omitempty"`   // Int field >= this value
	Max   map[string]int  `json:"max,omitempty"`   // Int field <= this value
}

// StateView provides the minimal interface needed to evaluate conditions.
// This avoids an import cycle with the state package.
type StateView interface {
	LookupBool(name string) (bool, bool)
	LookupInt(name string) (int, bool)
}

// IsEmpty reports whether no clause is specified.
func (w When) IsEmpty() bool {
	return len(w.Flags) == 0 && len(w.Min) == 0 && len(w.Max) == 0
}

// Fields returns the sorted, de-duplicated names of every field the
// condition reads.
func (w When) Fields() []string {
	seen := make(map[string]struct{})
	for k := range maps.Keys(w.Flags) {
		seen[k] = struct{}{}
	}
	for k := range maps.Keys(w.Min) {
		seen[k] = struct{}{}
	}
	for k := range maps.Keys(w.Max) {
		seen[k] = struct{}{}
	}
	return slices.Sorted(maps.Keys(seen))
}

// EvaluateWhen checks if all conditions in a When clause are met.
// A clause that names a field the view does not know fails.
func EvaluateWhen(when When, view StateView) bool {
	// If no conditions specified, return false (nothing should trigger)
	if when.IsEmpty() || view == nil {
		return false
	}

	for name, expected := range when.Flags {
		actual, ok := view.LookupBool(name)
		if !ok || actual != expected {
			return false
		}
	}

	for name, bound := range when.Min {
		actual, ok := view.LookupInt(name)
		if !ok || actual < bound {
			return false
		}
	}

	for name, bound := range when.Max {
		actual, ok := view.LookupInt(name)
		if !ok || actual > bound {
			return false
		}
	}

	return true
}
