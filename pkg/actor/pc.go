package actor

import (
	"fmt"
	"slices"

	"github.com/jwebster45206/d20"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	DefaultMaxHP = 10
	DefaultAC    = 10
)

// ProtagonistSpec is the serializable description of a point-of-view
// character, as it appears in the story file.
type ProtagonistSpec struct {
	Key   string   `json:"key"`             // Selection key typed at the character prompt ("1", "2")
	ID    string   `json:"id"`              // e.g. "graham"
	Name  string   `json:"name"`            // Full name shown in the roster
	Short string   `json:"short,omitempty"` // Display name; derived from ID when empty
	Bio   []string `json:"bio,omitempty"`
	MaxHP int      `json:"max_hp,omitempty"`
	AC    int      `json:"ac,omitempty"`
}

// Protagonist is the runtime representation of a point-of-view character.
type Protagonist struct {
	Spec   *ProtagonistSpec
	Actor  *d20.Actor // Built at runtime from the spec
	Player string     // Name of the player controlling this character
}

// NewProtagonist builds a Protagonist and its d20.Actor from a spec.
func NewProtagonist(spec *ProtagonistSpec) (*Protagonist, error) {
	if spec == nil {
		return nil, fmt.Errorf("spec cannot be nil")
	}
	if spec.ID == "" {
		return nil, fmt.Errorf("protagonist id cannot be empty")
	}

	maxHP := spec.MaxHP
	if maxHP <= 0 {
		maxHP = DefaultMaxHP
	}
	ac := spec.AC
	if ac <= 0 {
		ac = DefaultAC
	}

	a, err := d20.NewActor(spec.ID).
		WithHP(maxHP).
		WithAC(ac).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build actor: %w", err)
	}

	return &Protagonist{Spec: spec, Actor: a}, nil
}

// DisplayName returns the short name, e.g. "Graham".
func (p *Protagonist) DisplayName() string {
	if p.Spec.Short != "" {
		return p.Spec.Short
	}
	return cases.Title(language.English).String(p.Spec.ID)
}

// Tag returns the upper-cased display name used for speaker tags.
func (p *Protagonist) Tag() string {
	return cases.Upper(language.English).String(p.DisplayName())
}

// Banner returns the POV banner text, e.g. "YOU ARE GRAHAM".
func (p *Protagonist) Banner() string {
	return "YOU ARE " + p.Tag()
}

// HP returns current hit points.
func (p *Protagonist) HP() int {
	return p.Actor.HP()
}

// Scratch deals damage, never dropping below 0, and returns the new HP.
func (p *Protagonist) Scratch(damage int) (int, error) {
	if damage <= 0 {
		return p.Actor.HP(), nil
	}
	hp := max(p.Actor.HP()-damage, 0)
	if err := p.Actor.SetHP(hp); err != nil {
		return p.Actor.HP(), fmt.Errorf("failed to set HP: %w", err)
	}
	return p.Actor.HP(), nil
}

// Cast holds both protagonists, keyed by id.
type Cast struct {
	byID map[string]*Protagonist
	keys []string // ids in declaration order
}

// NewCast builds a protagonist for every spec.
func NewCast(specs []ProtagonistSpec) (*Cast, error) {
	c := &Cast{byID: make(map[string]*Protagonist, len(specs))}
	for i := range specs {
		p, err := NewProtagonist(&specs[i])
		if err != nil {
			return nil, fmt.Errorf("protagonist %q: %w", specs[i].ID, err)
		}
		if _, dup := c.byID[p.Spec.ID]; dup {
			return nil, fmt.Errorf("duplicate protagonist id %q", p.Spec.ID)
		}
		c.byID[p.Spec.ID] = p
		c.keys = append(c.keys, p.Spec.ID)
	}
	return c, nil
}

// Get returns the protagonist with the given id, or nil.
func (c *Cast) Get(id string) *Protagonist {
	if c == nil {
		return nil
	}
	return c.byID[id]
}

// ByKey returns the protagonist with the given selection key, or nil.
func (c *Cast) ByKey(key string) *Protagonist {
	if c == nil {
		return nil
	}
	for _, id := range c.keys {
		if p := c.byID[id]; p.Spec.Key == key {
			return p
		}
	}
	return nil
}

// All returns the protagonists in declaration order.
func (c *Cast) All() []*Protagonist {
	if c == nil {
		return nil
	}
	out := make([]*Protagonist, 0, len(c.keys))
	for _, id := range c.keys {
		out = append(out, c.byID[id])
	}
	return out
}

// IDs returns the protagonist ids in declaration order.
func (c *Cast) IDs() []string {
	if c == nil {
		return nil
	}
	return slices.Clone(c.keys)
}

// Assign records which player controls which character.
func (c *Cast) Assign(id, player string) error {
	p := c.Get(id)
	if p == nil {
		return fmt.Errorf("unknown protagonist %q", id)
	}
	p.Player = player
	return nil
}
