package state

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/google/uuid"
)

var (
	ErrUnknownField = errors.New("unknown state field")
	ErrFieldKind    = errors.New("wrong field kind")
)

// Field names a single counter or flag of the NarrativeState.
type Field string

const (
	Late                 Field = "late"
	GrahamAnger          Field = "graham_anger"
	GraysonAnger         Field = "grayson_anger"
	Composure            Field = "composure"
	Instinct             Field = "instinct"
	Dogbrained           Field = "dogbrained"
	OfficeRemark         Field = "office_remark"
	OfficeSilent         Field = "office_silent"
	OfficeCallOut        Field = "office_call_out"
	GraysonTrustInGraham Field = "grayson_trust_in_graham"
	GrahamTrustInGrayson Field = "graham_trust_in_grayson"
)

// Kind is the value type of a Field.
type Kind int

const (
	KindInt Kind = iota
	KindBool
)

func (k Kind) String() string {
	if k == KindBool {
		return "bool"
	}
	return "int"
}

var fieldKinds = map[Field]Kind{
	Late:                 KindBool,
	GrahamAnger:          KindInt,
	GraysonAnger:         KindInt,
	Composure:            KindInt,
	Instinct:             KindInt,
	Dogbrained:           KindBool,
	OfficeRemark:         KindBool,
	OfficeSilent:         KindBool,
	OfficeCallOut:        KindBool,
	GraysonTrustInGraham: KindInt,
	GrahamTrustInGrayson: KindInt,
}

// exclusiveGroups lists flags of which at most one may be true.
var exclusiveGroups = [][]Field{
	{OfficeRemark, OfficeSilent, OfficeCallOut},
}

// resettable are the only counters a reset may touch.
var resettable = []Field{GrahamAnger, GraysonAnger}

// NarrativeState is the single mutable record of the protagonists'
// emotional and relational trajectory for one session.
type NarrativeState struct {
	ID uuid.UUID `json:"id"` // Unique ID per session

	Late         bool `json:"late"`
	GrahamAnger  int  `json:"graham_anger"`
	GraysonAnger int  `json:"grayson_anger"`
	Composure    int  `json:"composure"`
	Instinct     int  `json:"instinct"`
	Dogbrained   bool `json:"dogbrained"` // Set by the dog-brain choice, never read

	OfficeRemark  bool `json:"office_remark"`
	OfficeSilent  bool `json:"office_silent"`
	OfficeCallOut bool `json:"office_call_out"`

	GraysonTrustInGraham int `json:"grayson_trust_in_graham"`
	GrahamTrustInGrayson int `json:"graham_trust_in_grayson"`
}

// New returns a state with every counter at 0 and every flag false.
func New() *NarrativeState {
	return &NarrativeState{ID: uuid.New()}
}

// Fields returns every known field in sorted order.
func Fields() []Field {
	return slices.Sorted(maps.Keys(fieldKinds))
}

// KindOf returns the kind of a field.
func KindOf(f Field) (Kind, error) {
	k, ok := fieldKinds[f]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	return k, nil
}

// GroupOf returns the exclusive group containing f, or nil.
func GroupOf(f Field) []Field {
	for _, g := range exclusiveGroups {
		if slices.Contains(g, f) {
			return slices.Clone(g)
		}
	}
	return nil
}

// IsResettable reports whether f may be zeroed by a reset.
func IsResettable(f Field) bool {
	return slices.Contains(resettable, f)
}

func (s *NarrativeState) intRef(f Field) (*int, error) {
	if _, err := KindOf(f); err != nil {
		return nil, err
	}
	switch f {
	case GrahamAnger:
		return &s.GrahamAnger, nil
	case GraysonAnger:
		return &s.GraysonAnger, nil
	case Composure:
		return &s.Composure, nil
	case Instinct:
		return &s.Instinct, nil
	case GraysonTrustInGraham:
		return &s.GraysonTrustInGraham, nil
	case GrahamTrustInGrayson:
		return &s.GrahamTrustInGrayson, nil
	}
	return nil, fmt.Errorf("%w: %q is not an int", ErrFieldKind, f)
}

func (s *NarrativeState) boolRef(f Field) (*bool, error) {
	if _, err := KindOf(f); err != nil {
		return nil, err
	}
	switch f {
	case Late:
		return &s.Late, nil
	case Dogbrained:
		return &s.Dogbrained, nil
	case OfficeRemark:
		return &s.OfficeRemark, nil
	case OfficeSilent:
		return &s.OfficeSilent, nil
	case OfficeCallOut:
		return &s.OfficeCallOut, nil
	}
	return nil, fmt.Errorf("%w: %q is not a bool", ErrFieldKind, f)
}

// Int returns the value of an int field.
func (s *NarrativeState) Int(f Field) (int, error) {
	p, err := s.intRef(f)
	if err != nil {
		return 0, err
	}
	return *p, nil
}

// Bool returns the value of a bool field.
func (s *NarrativeState) Bool(f Field) (bool, error) {
	p, err := s.boolRef(f)
	if err != nil {
		return false, err
	}
	return *p, nil
}

// Add increments an int field by delta (which may be negative).
func (s *NarrativeState) Add(f Field, delta int) error {
	p, err := s.intRef(f)
	if err != nil {
		return err
	}
	*p += delta
	return nil
}

// SetBool assigns a bool field.
func (s *NarrativeState) SetBool(f Field, v bool) error {
	p, err := s.boolRef(f)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// SetExclusive sets f true and every other member of its group false.
func (s *NarrativeState) SetExclusive(f Field) error {
	group := GroupOf(f)
	if group == nil {
		return fmt.Errorf("%w: %q has no exclusive group", ErrFieldKind, f)
	}
	for _, member := range group {
		if err := s.SetBool(member, member == f); err != nil {
			return err
		}
	}
	return nil
}

// Reset zeroes the given counters. Only the anger counters may be reset.
func (s *NarrativeState) Reset(fields ...Field) error {
	for _, f := range fields {
		if !IsResettable(f) {
			return fmt.Errorf("%w: %q cannot be reset", ErrFieldKind, f)
		}
		p, err := s.intRef(f)
		if err != nil {
			return err
		}
		*p = 0
	}
	return nil
}

// LookupInt implements conditionals.StateView.
func (s *NarrativeState) LookupInt(name string) (int, bool) {
	v, err := s.Int(Field(name))
	return v, err == nil
}

// LookupBool implements conditionals.StateView.
func (s *NarrativeState) LookupBool(name string) (bool, bool) {
	v, err := s.Bool(Field(name))
	return v, err == nil
}

// Snapshot copies the current values of the given fields. The snapshot is
// detached: later mutations of s are not visible through it.
func (s *NarrativeState) Snapshot(fields ...Field) (Snapshot, error) {
	snap := Snapshot{
		Ints:  make(map[Field]int),
		Bools: make(map[Field]bool),
	}
	for _, f := range fields {
		k, err := KindOf(f)
		if err != nil {
			return Snapshot{}, err
		}
		if k == KindBool {
			v, _ := s.Bool(f)
			snap.Bools[f] = v
			continue
		}
		v, _ := s.Int(f)
		snap.Ints[f] = v
	}
	return snap, nil
}

// Values returns every field keyed by name, for logging.
func (s *NarrativeState) Values() map[string]any {
	out := make(map[string]any, len(fieldKinds))
	for _, f := range Fields() {
		if fieldKinds[f] == KindBool {
			v, _ := s.Bool(f)
			out[string(f)] = v
			continue
		}
		v, _ := s.Int(f)
		out[string(f)] = v
	}
	return out
}

// Snapshot is a read-only copy of a subset of the NarrativeState. Fields
// outside the subset are invisible, so a dispatch keyed on a snapshot can
// only depend on the fields it declared.
type Snapshot struct {
	Ints  map[Field]int  `json:"ints,omitempty"`
	Bools map[Field]bool `json:"bools,omitempty"`
}

// LookupInt implements conditionals.StateView.
func (s Snapshot) LookupInt(name string) (int, bool) {
	v, ok := s.Ints[Field(name)]
	return v, ok
}

// LookupBool implements conditionals.StateView.
func (s Snapshot) LookupBool(name string) (bool, bool) {
	v, ok := s.Bools[Field(name)]
	return v, ok
}
