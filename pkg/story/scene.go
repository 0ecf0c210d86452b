package story

import (
	"github.com/jwebster45206/no-svoboda/pkg/actor"
	"github.com/jwebster45206/no-svoboda/pkg/conditionals"
	"github.com/jwebster45206/no-svoboda/pkg/state"
)

// Scene is one titled stretch of the script told from a single point of
// view. Scenes are separated by a transition.
type Scene struct {
	ID       string `json:"id"`
	POV      string `json:"pov"`                // Character id of the opening point of view
	Dateline string `json:"dateline,omitempty"` // Italic place and date under the banner
	Beats    []Beat `json:"beats"`
}

// BeatKind identifies which field of a Beat is set.
type BeatKind string

const (
	BeatText      BeatKind = "text"
	BeatPOV       BeatKind = "pov"
	BeatChoice    BeatKind = "choice"
	BeatDispatch  BeatKind = "dispatch"
	BeatReset     BeatKind = "reset"
	BeatEncounter BeatKind = "encounter"
	BeatInvalid   BeatKind = ""
)

// Beat is one step of a scene. Exactly one field is set.
type Beat struct {
	Text      []Line        `json:"text,omitempty"`      // Plain narration
	POV       string        `json:"pov,omitempty"`       // Switch point of view mid-scene
	Choice    *Choice       `json:"choice,omitempty"`    // Menu, effect, continuation
	Dispatch  *Dispatch     `json:"dispatch,omitempty"`  // Branch on earlier choices
	Reset     []state.Field `json:"reset,omitempty"`     // Zero the listed counters
	Encounter *Encounter    `json:"encounter,omitempty"` // Outcome-resolved critical event
}

// Kind returns the kind of the beat, or BeatInvalid when zero or more
// than one field is set.
func (b Beat) Kind() BeatKind {
	kind := BeatInvalid
	n := 0
	if len(b.Text) > 0 {
		kind, n = BeatText, n+1
	}
	if b.POV != "" {
		kind, n = BeatPOV, n+1
	}
	if b.Choice != nil {
		kind, n = BeatChoice, n+1
	}
	if b.Dispatch != nil {
		kind, n = BeatDispatch, n+1
	}
	if len(b.Reset) > 0 {
		kind, n = BeatReset, n+1
	}
	if b.Encounter != nil {
		kind, n = BeatEncounter, n+1
	}
	if n != 1 {
		return BeatInvalid
	}
	return kind
}

// Choice is a Choice Point. Each option carries its own effects and
// continuation, so the index mapping is total by construction.
type Choice struct {
	ID      string   `json:"id"`
	Options []Option `json:"options"`
}

// Option is one selectable answer of a Choice Point.
type Option struct {
	Label   string         `json:"label"`
	Effects []state.Effect `json:"effects,omitempty"`
	Text    []Line         `json:"text,omitempty"`
}

// Labels returns the option labels in order.
func (c *Choice) Labels() []string {
	labels := make([]string, len(c.Options))
	for i, o := range c.Options {
		labels[i] = o.Label
	}
	return labels
}

// Writes returns every field any option of the choice may modify.
func (c *Choice) Writes() []state.Field {
	var all []state.Effect
	for _, o := range c.Options {
		all = append(all, o.Effects...)
	}
	return state.Writes(all)
}

// Dispatch is the second stage of a two-stage branch. It is keyed by a
// snapshot of the On fields taken when the beat is reached, and plays the
// first case whose condition matches that snapshot.
type Dispatch struct {
	ID    string        `json:"id"`
	On    []state.Field `json:"on"`
	Cases []Case        `json:"cases"`
}

// Case is one row of a dispatch table.
type Case struct {
	Name    string            `json:"name,omitempty"`
	When    conditionals.When `json:"when"`
	Effects []state.Effect    `json:"effects,omitempty"`
	Text    []Line            `json:"text,omitempty"`
}

// Encounter is the critical event whose target and rescue sub-branch come
// from the Outcome Resolver.
type Encounter struct {
	Threshold  int                        `json:"threshold,omitempty"`   // Defaults to outcome.DefaultThreshold
	TrustShift int                        `json:"trust_shift,omitempty"` // Defaults to outcome.DefaultTrustShift
	Creature   *actor.Monster             `json:"creature,omitempty"`
	Lunge      []Line                     `json:"lunge,omitempty"` // Plays before the target is known
	Targets    map[string]EncounterBranch `json:"targets"`         // Keyed by the grabbed character's id
	After      []Line                     `json:"after,omitempty"` // Plays after either branch
}

// EncounterBranch is the narration for one possible target.
type EncounterBranch struct {
	POV      string `json:"pov"`      // Usually the rescuer
	Attack   []Line `json:"attack"`   // The target is grabbed
	Hesitate []Line `json:"hesitate"` // Rescuer pauses; target is scratched
	Rescue   []Line `json:"rescue"`   // Rescuer acts at once
}
