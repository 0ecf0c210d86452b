package state

import (
	"fmt"

	"github.com/jwebster45206/no-svoboda/pkg/conditionals"
)

// Op is the kind of mutation an Effect performs.
type Op string

const (
	OpAdd       Op = "add"       // Add Amount to an int field
	OpSet       Op = "set"       // Assign Value (default true) to a bool field
	OpExclusive Op = "exclusive" // Set a bool field true and the rest of its group false
)

// Effect is one declarative mutation of the NarrativeState. Choice Points
// and dispatch cases carry a fixed list of effects, which is the complete
// set of fields they may write.
type Effect struct {
	Op     Op                 `json:"op"`
	Field  Field              `json:"field"`
	Amount int                `json:"amount,omitempty"`
	Value  *bool              `json:"value,omitempty"`
	When   *conditionals.When `json:"when,omitempty"` // Optional gate evaluated against the live state
}

// Check verifies the effect references a known field of the right kind.
func (e Effect) Check() error {
	kind, err := KindOf(e.Field)
	if err != nil {
		return err
	}
	switch e.Op {
	case OpAdd:
		if kind != KindInt {
			return fmt.Errorf("%w: add on %s field %q", ErrFieldKind, kind, e.Field)
		}
	case OpSet:
		if kind != KindBool {
			return fmt.Errorf("%w: set on %s field %q", ErrFieldKind, kind, e.Field)
		}
	case OpExclusive:
		if GroupOf(e.Field) == nil {
			return fmt.Errorf("%w: exclusive on ungrouped field %q", ErrFieldKind, e.Field)
		}
	default:
		return fmt.Errorf("unknown effect op %q", e.Op)
	}
	return nil
}

// Writes returns the fields this effect may modify.
func (e Effect) Writes() []Field {
	if e.Op == OpExclusive {
		return GroupOf(e.Field)
	}
	return []Field{e.Field}
}

// Change records one applied effect.
type Change struct {
	Field Field `json:"field"`
	From  any   `json:"from"`
	To    any   `json:"to"`
}

func (c Change) String() string {
	return fmt.Sprintf("%s: %v -> %v", c.Field, c.From, c.To)
}

// Writes returns the union of fields written by a list of effects, in
// first-seen order.
func Writes(effects []Effect) []Field {
	var out []Field
	seen := make(map[Field]bool)
	for _, e := range effects {
		for _, f := range e.Writes() {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out
}
