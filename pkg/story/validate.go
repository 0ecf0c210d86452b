package story

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/jwebster45206/no-svoboda/pkg/outcome"
	"github.com/jwebster45206/no-svoboda/pkg/state"
)

// ErrInvalidStory wraps every validation failure.
var ErrInvalidStory = errors.New("invalid story")

var snakeCase = regexp.MustCompile(`^[a-z][a-z0-9]*(_[a-z0-9]+)*$`)

// selectionKeys are the keys typed at the character prompt.
var selectionKeys = []string{"1", "2"}

// Validate checks the structural rules of a story and returns every
// problem found, wrapped in ErrInvalidStory.
func Validate(s *Story) error {
	v := &validator{ids: make(map[string]string)}
	v.validateStory(s)
	if len(v.errors) > 0 {
		return fmt.Errorf("%w:\n%s", ErrInvalidStory, strings.Join(v.errors, "\n"))
	}
	return nil
}

type validator struct {
	story  *Story
	errors []string
	ids    map[string]string // choice and dispatch ids -> where first seen
	resets int
}

func (v *validator) addf(format string, args ...any) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

func (v *validator) validateID(what, id string) {
	if !snakeCase.MatchString(id) {
		v.addf("%s %q must be lowercase snake_case", what, id)
	}
}

func (v *validator) validateStory(s *Story) {
	v.story = s
	v.validateID("story name", s.Name)
	if s.Title == "" {
		v.addf("story title cannot be empty")
	}

	v.validateCharacters(s)

	if len(s.Scenes) == 0 {
		v.addf("story must have at least one scene")
	}
	sceneIDs := make(map[string]bool)
	for i := range s.Scenes {
		sc := &s.Scenes[i]
		v.validateID("scene id", sc.ID)
		if sceneIDs[sc.ID] {
			v.addf("duplicate scene id %q", sc.ID)
		}
		sceneIDs[sc.ID] = true
		v.validateScene(sc)
	}

	if v.resets > 1 {
		v.addf("story has %d reset beats, at most one is allowed", v.resets)
	}
}

func (v *validator) validateCharacters(s *Story) {
	if len(s.Characters) != len(selectionKeys) {
		v.addf("story must define exactly %d characters, found %d", len(selectionKeys), len(s.Characters))
	}
	var keys []string
	for _, c := range s.Characters {
		keys = append(keys, c.Key)
		if c.ID != string(outcome.Graham) && c.ID != string(outcome.Grayson) {
			v.addf("character id %q must be %q or %q", c.ID, outcome.Graham, outcome.Grayson)
		}
		if c.Name == "" {
			v.addf("character %q must have a name", c.ID)
		}
	}
	slices.Sort(keys)
	if len(keys) == len(selectionKeys) && !slices.Equal(keys, selectionKeys) {
		v.addf("character keys must be %v, found %v", selectionKeys, keys)
	}
	if len(s.Characters) == 2 && s.Characters[0].ID == s.Characters[1].ID {
		v.addf("duplicate character id %q", s.Characters[0].ID)
	}
}

func (v *validator) validateCharacterRef(where, id string) {
	if v.story.Character(id) == nil {
		v.addf("%s: unknown character %q", where, id)
	}
}

func (v *validator) validateScene(sc *Scene) {
	where := fmt.Sprintf("scene %s", sc.ID)
	v.validateCharacterRef(where+" pov", sc.POV)
	if len(sc.Beats) == 0 {
		v.addf("%s has no beats", where)
	}
	for i, b := range sc.Beats {
		bw := fmt.Sprintf("%s beat %d", where, i)
		switch b.Kind() {
		case BeatText:
			v.validateLines(bw, b.Text)
		case BeatPOV:
			v.validateCharacterRef(bw, b.POV)
		case BeatChoice:
			v.validateChoice(bw, b.Choice)
		case BeatDispatch:
			v.validateDispatch(bw, b.Dispatch)
		case BeatReset:
			v.validateReset(bw, b.Reset)
		case BeatEncounter:
			v.validateEncounter(bw, b.Encounter)
		default:
			v.addf("%s must set exactly one of text, pov, choice, dispatch, reset, encounter", bw)
		}
	}
}

func (v *validator) claimID(what, id, where string) {
	v.validateID(what, id)
	if prev, ok := v.ids[id]; ok {
		v.addf("%s: id %q already used at %s", where, id, prev)
		return
	}
	v.ids[id] = where
}

func (v *validator) validateLines(where string, lines []Line) {
	for i, l := range lines {
		if l.Text == "" {
			v.addf("%s line %d is empty", where, i)
		}
		switch l.Style {
		case StylePlain, StyleItalic, StyleBold:
		default:
			v.addf("%s line %d has unknown style %q", where, i, l.Style)
		}
		if l.Speaker != "" {
			v.validateCharacterRef(fmt.Sprintf("%s line %d speaker", where, i), l.Speaker)
		}
		if l.Pause < 0 {
			v.addf("%s line %d has negative pause", where, i)
		}
	}
}

func (v *validator) validateEffects(where string, effects []state.Effect) {
	for i, e := range effects {
		if err := e.Check(); err != nil {
			v.addf("%s effect %d: %v", where, i, err)
		}
		if e.When != nil {
			v.validateWhenFields(fmt.Sprintf("%s effect %d when", where, i), e.When.Fields())
		}
	}
}

func (v *validator) validateWhenFields(where string, fields []string) {
	for _, f := range fields {
		if _, err := state.KindOf(state.Field(f)); err != nil {
			v.addf("%s: %v", where, err)
		}
	}
}

func (v *validator) validateChoice(where string, c *Choice) {
	where = fmt.Sprintf("%s choice %s", where, c.ID)
	v.claimID("choice id", c.ID, where)
	if len(c.Options) == 0 {
		v.addf("%s has no options", where)
	}
	for i, o := range c.Options {
		ow := fmt.Sprintf("%s option %d", where, i)
		if strings.TrimSpace(o.Label) == "" {
			v.addf("%s has an empty label", ow)
		}
		v.validateEffects(ow, o.Effects)
		v.validateLines(ow, o.Text)
	}
}

func (v *validator) validateDispatch(where string, d *Dispatch) {
	where = fmt.Sprintf("%s dispatch %s", where, d.ID)
	v.claimID("dispatch id", d.ID, where)
	if len(d.On) == 0 {
		v.addf("%s must name the fields it reads in on", where)
	}
	on := make(map[string]bool, len(d.On))
	for _, f := range d.On {
		if _, err := state.KindOf(f); err != nil {
			v.addf("%s on: %v", where, err)
		}
		on[string(f)] = true
	}
	if len(d.Cases) == 0 {
		v.addf("%s has no cases", where)
	}
	for i, c := range d.Cases {
		cw := fmt.Sprintf("%s case %d", where, i)
		if c.When.IsEmpty() {
			v.addf("%s has an empty when", cw)
		}
		for _, f := range c.When.Fields() {
			if !on[f] {
				v.addf("%s reads %q, which is not listed in on", cw, f)
			}
		}
		v.validateEffects(cw, c.Effects)
		v.validateLines(cw, c.Text)
	}
}

func (v *validator) validateReset(where string, fields []state.Field) {
	v.resets++
	for _, f := range fields {
		if !state.IsResettable(f) {
			v.addf("%s: field %q cannot be reset", where, f)
		}
	}
}

func (v *validator) validateEncounter(where string, e *Encounter) {
	where += " encounter"
	if e.Threshold < 0 {
		v.addf("%s threshold cannot be negative", where)
	}
	if e.TrustShift < 0 {
		v.addf("%s trust_shift cannot be negative", where)
	}
	v.validateLines(where+" lunge", e.Lunge)
	v.validateLines(where+" after", e.After)
	for _, target := range []outcome.Target{outcome.Graham, outcome.Grayson} {
		b, ok := e.Targets[string(target)]
		tw := fmt.Sprintf("%s target %s", where, target)
		if !ok {
			v.addf("%s is missing", tw)
			continue
		}
		v.validateCharacterRef(tw+" pov", b.POV)
		if len(b.Attack) == 0 || len(b.Hesitate) == 0 || len(b.Rescue) == 0 {
			v.addf("%s needs attack, hesitate, and rescue narration", tw)
		}
		v.validateLines(tw+" attack", b.Attack)
		v.validateLines(tw+" hesitate", b.Hesitate)
		v.validateLines(tw+" rescue", b.Rescue)
	}
	for id := range e.Targets {
		if id != string(outcome.Graham) && id != string(outcome.Grayson) {
			v.addf("%s: unknown target %q", where, id)
		}
	}
}
