// Package engine plays a story: it walks the scenes in order, hands Choice
// Points to the menu, applies their effects to the narrative state, and
// resolves dispatches and the encounter from what has accumulated.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/no-svoboda/pkg/actor"
	"github.com/jwebster45206/no-svoboda/pkg/outcome"
	"github.com/jwebster45206/no-svoboda/pkg/state"
	"github.com/jwebster45206/no-svoboda/pkg/story"
)

// ErrNoBranch is returned when no case of a dispatch matches the state.
var ErrNoBranch = errors.New("no branch matches the narrative state")

// Chooser presents options and returns the selected index. The cursor
// starts on start, or the first option when omitted.
type Chooser interface {
	Select(ctx context.Context, options []string, start ...int) (int, error)
}

// Presenter writes the story to the player.
type Presenter interface {
	Lines(lines []story.Line) error
	POV(id, dateline string) error
	Echo(label string) error
	Transition() error
	Title(title string) error
	Ending(text string) error
}

// Decision records one resolved branch point.
type Decision struct {
	Point   string         `json:"point"` // Choice or dispatch id
	Index   int            `json:"index"`
	Label   string         `json:"label"` // Option label, or case name for a dispatch
	Changes []state.Change `json:"changes,omitempty"`
}

// Options configures an Engine. Zero values are usable.
type Options struct {
	State  *state.NarrativeState // Defaults to state.New()
	Rand   outcome.Rand          // Encounter tie-break; defaults to math/rand/v2
	Logger *slog.Logger
}

// Engine runs one session of a story.
type Engine struct {
	story   *story.Story
	cast    *actor.Cast
	chooser Chooser
	p       Presenter
	ns      *state.NarrativeState
	deltas  *state.DeltaWorker
	rng     outcome.Rand
	logger  *slog.Logger

	decisions  []Decision
	encounters []outcome.Result
}

// New returns an Engine for s.
func New(s *story.Story, cast *actor.Cast, chooser Chooser, p Presenter, opts Options) *Engine {
	ns := opts.State
	if ns == nil {
		ns = state.New()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		story:   s,
		cast:    cast,
		chooser: chooser,
		p:       p,
		ns:      ns,
		deltas:  state.NewDeltaWorker(ns, logger),
		rng:     opts.Rand,
		logger:  logger,
	}
}

// State returns the narrative state the engine mutates.
func (e *Engine) State() *state.NarrativeState {
	return e.ns
}

// Decisions returns the branch points resolved so far, in order.
func (e *Engine) Decisions() []Decision {
	return e.decisions
}

// Encounters returns the encounter results so far.
func (e *Engine) Encounters() []outcome.Result {
	return e.encounters
}

// Run plays the story from the title card to the ending marker.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.p.Title(e.story.Title); err != nil {
		return err
	}
	for i := range e.story.Scenes {
		sc := &e.story.Scenes[i]
		if i > 0 {
			if err := e.p.Transition(); err != nil {
				return err
			}
		}
		if err := e.playScene(ctx, sc); err != nil {
			return fmt.Errorf("scene %s: %w", sc.ID, err)
		}
	}
	if e.story.Ending != "" {
		if err := e.p.Ending(e.story.Ending); err != nil {
			return err
		}
	}
	e.logSummary()
	return nil
}

func (e *Engine) playScene(ctx context.Context, sc *story.Scene) error {
	e.logger.Debug("Scene started", "scene", sc.ID, "pov", sc.POV)
	if err := e.p.POV(sc.POV, sc.Dateline); err != nil {
		return err
	}
	for i, b := range sc.Beats {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.playBeat(ctx, b); err != nil {
			return fmt.Errorf("beat %d: %w", i, err)
		}
	}
	return nil
}

func (e *Engine) playBeat(ctx context.Context, b story.Beat) error {
	switch b.Kind() {
	case story.BeatText:
		return e.p.Lines(b.Text)
	case story.BeatPOV:
		return e.p.POV(b.POV, "")
	case story.BeatChoice:
		return e.choose(ctx, b.Choice)
	case story.BeatDispatch:
		return e.dispatch(b.Dispatch)
	case story.BeatReset:
		return e.reset(b.Reset)
	case story.BeatEncounter:
		return e.encounter(b.Encounter)
	}
	return fmt.Errorf("beat has no single kind")
}

// choose runs one Choice Point: menu, echo, effects, continuation.
func (e *Engine) choose(ctx context.Context, c *story.Choice) error {
	idx, err := e.chooser.Select(ctx, c.Labels())
	if err != nil {
		return fmt.Errorf("choice %s: %w", c.ID, err)
	}
	if idx < 0 || idx >= len(c.Options) {
		return fmt.Errorf("choice %s: selector returned index %d of %d", c.ID, idx, len(c.Options))
	}
	opt := c.Options[idx]

	if err := e.p.Echo(opt.Label); err != nil {
		return err
	}

	changes, err := e.deltas.Apply(opt.Effects)
	if err != nil {
		return fmt.Errorf("choice %s: %w", c.ID, err)
	}
	e.decisions = append(e.decisions, Decision{Point: c.ID, Index: idx, Label: opt.Label, Changes: changes})
	e.logger.Debug("Choice made",
		"choice", c.ID,
		"index", idx,
		"label", opt.Label,
		"writes", state.Writes(opt.Effects),
		"changes", changeStrings(changes))

	return e.p.Lines(opt.Text)
}

// dispatch is the second stage of a two-stage branch. The cases are
// matched against a snapshot of the declared fields, so effects applied by
// the chosen case cannot change which case was chosen.
func (e *Engine) dispatch(d *story.Dispatch) error {
	snap, err := e.ns.Snapshot(d.On...)
	if err != nil {
		return fmt.Errorf("dispatch %s: %w", d.ID, err)
	}
	idx := d.Match(snap)
	if idx < 0 {
		e.logger.Error("No dispatch case matched", "dispatch", d.ID, "snapshot", snap)
		return fmt.Errorf("dispatch %s: %w", d.ID, ErrNoBranch)
	}
	c := d.Cases[idx]

	changes, err := e.deltas.Apply(c.Effects)
	if err != nil {
		return fmt.Errorf("dispatch %s: %w", d.ID, err)
	}
	e.decisions = append(e.decisions, Decision{Point: d.ID, Index: idx, Label: c.Name, Changes: changes})
	e.logger.Debug("Dispatch resolved",
		"dispatch", d.ID,
		"snapshot", snap,
		"case", idx,
		"name", c.Name,
		"changes", changeStrings(changes))

	return e.p.Lines(c.Text)
}

func (e *Engine) reset(fields []state.Field) error {
	before := e.ns.Values()
	if err := e.ns.Reset(fields...); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	args := []any{}
	for _, f := range fields {
		args = append(args, string(f), before[string(f)])
	}
	e.logger.Debug("Counters reset", slog.Group("before", args...))
	return nil
}

// encounter asks the resolver for the target and rescue branch, plays the
// branch from the rescuer's point of view, and applies the trust change.
func (e *Engine) encounter(enc *story.Encounter) error {
	r := outcome.NewResolver()
	if enc.Threshold > 0 {
		r.Threshold = enc.Threshold
	}
	if enc.TrustShift > 0 {
		r.TrustShift = enc.TrustShift
	}

	if err := e.p.Lines(enc.Lunge); err != nil {
		return err
	}

	res := r.Resolve(e.ns, e.rng)
	branch, ok := enc.Targets[string(res.Target)]
	if !ok {
		return fmt.Errorf("encounter has no branch for target %s", res.Target)
	}

	if err := e.p.POV(branch.POV, ""); err != nil {
		return err
	}
	if err := e.p.Lines(branch.Attack); err != nil {
		return err
	}

	hp := -1
	if res.Rescue == outcome.Hesitant {
		if err := e.p.Lines(branch.Hesitate); err != nil {
			return err
		}
		if target := e.cast.Get(string(res.Target)); target != nil {
			var err error
			if hp, err = target.Scratch(enc.Creature.ScratchDamage()); err != nil {
				return fmt.Errorf("encounter: %w", err)
			}
		}
	} else {
		if err := e.p.Lines(branch.Rescue); err != nil {
			return err
		}
	}

	if err := res.Apply(e.ns); err != nil {
		return err
	}
	e.encounters = append(e.encounters, res)

	logArgs := []any{
		"target", res.Target,
		"rescuer", res.Rescuer,
		"tie", res.Tie,
		"rescuer_anger", res.RescuerAnger,
		"rescue", res.Rescue,
		"trust_field", res.TrustField,
		"trust_delta", res.TrustDelta,
	}
	if hp >= 0 {
		logArgs = append(logArgs, "target_hp", hp)
	}
	e.logger.Debug("Encounter resolved", logArgs...)

	return e.p.Lines(enc.After)
}

func (e *Engine) logSummary() {
	hp := []any{}
	for _, p := range e.cast.All() {
		hp = append(hp, p.Spec.ID, p.HP())
	}
	points := make([]string, len(e.decisions))
	for i, d := range e.decisions {
		points[i] = fmt.Sprintf("%s=%d", d.Point, d.Index)
	}
	e.logger.Info("Session complete",
		"story", e.story.Name,
		"state", e.ns.Values(),
		"decisions", points,
		slog.Group("hp", hp...))
}

func changeStrings(changes []state.Change) []string {
	out := make([]string, len(changes))
	for i, c := range changes {
		out[i] = c.String()
	}
	return out
}
