// Package outcome decides the target of the encounter and how the rescue
// plays out, from the accumulated anger counters.
package outcome

import (
	"fmt"
	"math/rand/v2"

	"github.com/jwebster45206/no-svoboda/pkg/state"
)

// Target identifies a protagonist by id.
type Target string

const (
	Graham  Target = "graham"
	Grayson Target = "grayson"
)

// Other returns the other protagonist.
func (t Target) Other() Target {
	if t == Graham {
		return Grayson
	}
	return Graham
}

// Rescue is the sub-branch played after the target is grabbed.
type Rescue string

const (
	Hesitant  Rescue = "hesitant"  // Rescuer pauses, target is scratched
	Immediate Rescue = "immediate" // Rescuer acts at once, no injury
)

const (
	DefaultThreshold  = 3
	DefaultTrustShift = 3
)

// Rand is the source of the tie-break. *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Resolver holds the rescue threshold and the trust shift.
type Resolver struct {
	Threshold  int // Rescuer anger at or above this hesitates
	TrustShift int // Magnitude of the trust change
}

// NewResolver returns a Resolver with the default threshold and shift.
func NewResolver() Resolver {
	return Resolver{Threshold: DefaultThreshold, TrustShift: DefaultTrustShift}
}

// Result is the full decision of one encounter.
type Result struct {
	Target       Target      `json:"target"`
	Rescuer      Target      `json:"rescuer"`
	Tie          bool        `json:"tie"` // Target came from the random tie-break
	RescuerAnger int         `json:"rescuer_anger"`
	Rescue       Rescue      `json:"rescue"`
	TrustField   state.Field `json:"trust_field"` // The target's trust in the rescuer
	TrustDelta   int         `json:"trust_delta"`
}

// PickTarget returns the protagonist with strictly higher anger. Equal
// counters, whatever their value, fall to a uniform coin flip from rng.
func PickTarget(ns *state.NarrativeState, rng Rand) (Target, bool) {
	switch {
	case ns.GrahamAnger > ns.GraysonAnger:
		return Graham, false
	case ns.GraysonAnger > ns.GrahamAnger:
		return Grayson, false
	}
	if rng == nil {
		rng = globalRand{}
	}
	if rng.IntN(2) == 0 {
		return Graham, true
	}
	return Grayson, true
}

// Resolve decides the target and the rescue sub-branch. It does not
// mutate ns; call Apply on the result.
func (r Resolver) Resolve(ns *state.NarrativeState, rng Rand) Result {
	target, tie := PickTarget(ns, rng)
	return r.Rescue(ns, target, tie)
}

// Rescue computes the sub-branch for a known target. The check reads the
// rescuer's anger, not the target's.
func (r Resolver) Rescue(ns *state.NarrativeState, target Target, tie bool) Result {
	res := Result{
		Target:  target,
		Rescuer: target.Other(),
		Tie:     tie,
	}

	if target == Graham {
		res.RescuerAnger = ns.GraysonAnger
		res.TrustField = state.GrahamTrustInGrayson
	} else {
		res.RescuerAnger = ns.GrahamAnger
		res.TrustField = state.GraysonTrustInGraham
	}

	if res.RescuerAnger >= r.Threshold {
		res.Rescue = Hesitant
		res.TrustDelta = -r.TrustShift
	} else {
		res.Rescue = Immediate
		res.TrustDelta = r.TrustShift
	}
	return res
}

// Apply writes the trust change to ns. It is the only mutation an
// encounter makes to the narrative state.
func (res Result) Apply(ns *state.NarrativeState) error {
	if err := ns.Add(res.TrustField, res.TrustDelta); err != nil {
		return fmt.Errorf("failed to apply encounter trust: %w", err)
	}
	return nil
}
