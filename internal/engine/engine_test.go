package engine

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/no-svoboda/data"
	"github.com/jwebster45206/no-svoboda/pkg/actor"
	"github.com/jwebster45206/no-svoboda/pkg/conditionals"
	"github.com/jwebster45206/no-svoboda/pkg/outcome"
	"github.com/jwebster45206/no-svoboda/pkg/state"
	"github.com/jwebster45206/no-svoboda/pkg/story"
)

// Indices into the fifteen Choice Points of the shipped story.
const (
	cMorningGraham = iota
	cMorningGrayson
	cOfficeRookie
	cOfficeHell
	cBriefing
	cDeparture
	cEnRoute
	cDogBrain
	cFence
	cCourtyard
	cHallwayGrayson1
	cHallwayGraham1
	cHallwayGrayson2
	cHallwayGraham2
	cWalker
	numChoices
)

type scriptedChooser struct {
	picks []int
	seen  [][]string
	err   error
}

func (c *scriptedChooser) Select(_ context.Context, options []string, _ ...int) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n := len(c.seen)
	c.seen = append(c.seen, options)
	if n >= len(c.picks) {
		return 0, nil
	}
	return c.picks[n], nil
}

type event struct {
	kind string
	arg  string
}

type recordingPresenter struct {
	events []event
	text   []string
}

func (p *recordingPresenter) Lines(lines []story.Line) error {
	for _, l := range lines {
		p.text = append(p.text, l.Text)
	}
	return nil
}

func (p *recordingPresenter) POV(id, _ string) error {
	p.events = append(p.events, event{"pov", id})
	return nil
}

func (p *recordingPresenter) Echo(label string) error {
	p.events = append(p.events, event{"echo", label})
	return nil
}

func (p *recordingPresenter) Transition() error {
	p.events = append(p.events, event{"transition", ""})
	return nil
}

func (p *recordingPresenter) Title(title string) error {
	p.events = append(p.events, event{"title", title})
	return nil
}

func (p *recordingPresenter) Ending(text string) error {
	p.events = append(p.events, event{"ending", text})
	return nil
}

func (p *recordingPresenter) count(kind string) int {
	n := 0
	for _, e := range p.events {
		if e.kind == kind {
			n++
		}
	}
	return n
}

type fixedRand int

func (f fixedRand) IntN(int) int { return int(f) }

func loadStory(t *testing.T) *story.Story {
	t.Helper()
	s, err := story.Load(data.FS(), "no_svoboda.json")
	require.NoError(t, err)
	return s
}

type run struct {
	story   *story.Story
	cast    *actor.Cast
	engine  *Engine
	chooser *scriptedChooser
	p       *recordingPresenter
	logs    *bytes.Buffer
}

func newRun(t *testing.T, picks map[int]int, rng outcome.Rand) *run {
	t.Helper()
	s := loadStory(t)
	cast, err := actor.NewCast(s.Characters)
	require.NoError(t, err)

	seq := make([]int, numChoices)
	for i, v := range picks {
		seq[i] = v
	}
	r := &run{
		story:   s,
		cast:    cast,
		chooser: &scriptedChooser{picks: seq},
		p:       &recordingPresenter{},
		logs:    &bytes.Buffer{},
	}
	logger := slog.New(slog.NewTextHandler(r.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r.engine = New(s, cast, r.chooser, r.p, Options{Rand: rng, Logger: logger})
	return r
}

func (r *run) decision(t *testing.T, point string) Decision {
	t.Helper()
	for _, d := range r.engine.Decisions() {
		if d.Point == point {
			return d
		}
	}
	t.Fatalf("no decision for %s", point)
	return Decision{}
}

func (r *run) intField(t *testing.T, f state.Field) int {
	t.Helper()
	v, err := r.engine.State().Int(f)
	require.NoError(t, err)
	return v
}

func (r *run) encounter(t *testing.T) *story.Encounter {
	t.Helper()
	for _, sc := range r.story.Scenes {
		for _, b := range sc.Beats {
			if b.Encounter != nil {
				return b.Encounter
			}
		}
	}
	t.Fatal("story has no encounter")
	return nil
}

func TestRun_PlaysEveryChoicePoint(t *testing.T) {
	r := newRun(t, nil, fixedRand(0))
	require.NoError(t, r.engine.Run(context.Background()))

	require.Len(t, r.chooser.seen, numChoices)
	assert.Equal(t, []string{"LOOK AWAY", "DWELL ON THOUGHT"}, r.chooser.seen[cMorningGraham])
	assert.Equal(t, []string{"SHOOT THE WALKER", "GRAB GRAHAM AND FLEE"}, r.chooser.seen[cWalker])

	assert.Equal(t, numChoices, r.p.count("echo"))
	assert.Equal(t, len(r.story.Scenes)-1, r.p.count("transition"))
	assert.Equal(t, event{"title", "No Svoboda"}, r.p.events[0])
	assert.Equal(t, event{"ending", "TO BE CONTINUED..."}, r.p.events[len(r.p.events)-1])

	// One decision per Choice Point plus the office dispatch.
	assert.Len(t, r.engine.Decisions(), numChoices+1)
}

func TestRun_EchoFollowsSelection(t *testing.T) {
	r := newRun(t, map[int]int{cOfficeRookie: 2}, fixedRand(0))
	require.NoError(t, r.engine.Run(context.Background()))

	var echoes []string
	for _, e := range r.p.events {
		if e.kind == "echo" {
			echoes = append(echoes, e.arg)
		}
	}
	require.Len(t, echoes, numChoices)
	assert.Equal(t, "CONFRONT", echoes[cOfficeRookie])
	assert.Equal(t, "office_rookie", r.engine.Decisions()[cOfficeRookie].Point)
}

func TestRun_LateMagnifiesVile(t *testing.T) {
	tests := []struct {
		name        string
		morning     int
		wantOffice  int
		wantLate    bool
		wantAftermath int
	}{
		{"dwell then vile", 1, 2, true, 3},
		{"look away then vile", 0, 1, false, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRun(t, map[int]int{cMorningGraham: tt.morning}, fixedRand(0))
			require.NoError(t, r.engine.Run(context.Background()))

			late, err := r.engine.State().Bool(state.Late)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLate, late)

			d := r.decision(t, "office_hell")
			require.Len(t, d.Changes, 1)
			assert.Equal(t, state.Change{Field: state.GrahamAnger, From: 0, To: tt.wantOffice}, d.Changes[0])

			after := r.decision(t, "office_aftermath")
			require.Len(t, after.Changes, 1)
			assert.Equal(t, tt.wantAftermath, after.Changes[0].To)
		})
	}
}

func TestRun_OfficeAftermathDispatch(t *testing.T) {
	tests := []struct {
		name     string
		rookie   int
		hell     int
		wantCase string
		wantFrom int
		wantTo   int
	}{
		{"remark", 0, 0, "remark", 1, 2},
		{"stay silent", 1, 0, "silent", 1, 0},
		{"confront", 2, 1, "call_out", -1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRun(t, map[int]int{cOfficeRookie: tt.rookie, cOfficeHell: tt.hell}, fixedRand(0))
			require.NoError(t, r.engine.Run(context.Background()))

			d := r.decision(t, "office_aftermath")
			assert.Equal(t, tt.wantCase, d.Label)
			require.Len(t, d.Changes, 1)
			assert.Equal(t, state.Change{Field: state.GrahamAnger, From: tt.wantFrom, To: tt.wantTo}, d.Changes[0])
		})
	}
}

func TestRun_OfficeFlagsAreExclusive(t *testing.T) {
	r := newRun(t, map[int]int{cOfficeRookie: 1}, fixedRand(0))
	require.NoError(t, r.engine.Run(context.Background()))

	for f, want := range map[state.Field]bool{
		state.OfficeRemark:  false,
		state.OfficeSilent:  true,
		state.OfficeCallOut: false,
	} {
		v, err := r.engine.State().Bool(f)
		require.NoError(t, err)
		assert.Equal(t, want, v, f)
	}
}

func TestRun_DogBrain(t *testing.T) {
	r := newRun(t, map[int]int{cDogBrain: 1}, fixedRand(0))
	require.NoError(t, r.engine.Run(context.Background()))

	assert.Equal(t, -1, r.intField(t, state.Composure))
	assert.Equal(t, 1, r.intField(t, state.Instinct))
	dog, err := r.engine.State().Bool(state.Dogbrained)
	require.NoError(t, err)
	assert.True(t, dog)
}

func TestRun_ResetClearsEarlyAnger(t *testing.T) {
	// CHALLENGE adds to both counters before the courtyard; neutral hallway
	// choices then net to zero, so only the reset explains a tie at 0.
	r := newRun(t, map[int]int{
		cBriefing:        1,
		cHallwayGrayson1: 2, // +1
		cHallwayGraham1:  0, // +1
		cHallwayGrayson2: 2, // -1
		cHallwayGraham2:  2, // -1
	}, fixedRand(0))
	require.NoError(t, r.engine.Run(context.Background()))

	require.Len(t, r.engine.Encounters(), 1)
	res := r.engine.Encounters()[0]
	assert.True(t, res.Tie)
	assert.Equal(t, 0, res.RescuerAnger)
	assert.Equal(t, 0, r.intField(t, state.GrahamAnger))
	assert.Equal(t, 0, r.intField(t, state.GraysonAnger))
}

func TestRun_Encounter(t *testing.T) {
	tests := []struct {
		name       string
		picks      map[int]int
		rng        fixedRand
		wantTarget outcome.Target
		wantRescue outcome.Rescue
		wantTie    bool
		wantPOV    string
		wantTrust  map[state.Field]int
		wantHP     map[string]int
	}{
		{
			name: "graham angrier, grayson calm, immediate",
			picks: map[int]int{
				cHallwayGrayson1: 0, // graham +2
				cHallwayGraham1:  2, // grayson -1
				cHallwayGrayson2: 0, // graham +2
				cHallwayGraham2:  2, // grayson -1
			},
			wantTarget: outcome.Graham,
			wantRescue: outcome.Immediate,
			wantPOV:    "grayson",
			wantTrust:  map[state.Field]int{state.GrahamTrustInGrayson: 3, state.GraysonTrustInGraham: 0},
			wantHP:     map[string]int{"graham": 10, "grayson": 12},
		},
		{
			name: "graham angrier, grayson at threshold, hesitant",
			picks: map[int]int{
				cHallwayGrayson1: 0, // graham +2
				cHallwayGraham1:  0, // grayson +1
				cHallwayGrayson2: 0, // graham +2
				cHallwayGraham2:  0, // grayson +2
			},
			wantTarget: outcome.Graham,
			wantRescue: outcome.Hesitant,
			wantPOV:    "grayson",
			wantTrust:  map[state.Field]int{state.GrahamTrustInGrayson: -3, state.GraysonTrustInGraham: 0},
			wantHP:     map[string]int{"graham": 9, "grayson": 12},
		},
		{
			name: "grayson angrier, graham calm, immediate",
			picks: map[int]int{
				cHallwayGrayson1: 1, // graham -1
				cHallwayGraham1:  1, // grayson +2
				cHallwayGrayson2: 2, // graham -1
				cHallwayGraham2:  0, // grayson +2
			},
			wantTarget: outcome.Grayson,
			wantRescue: outcome.Immediate,
			wantPOV:    "graham",
			wantTrust:  map[state.Field]int{state.GraysonTrustInGraham: 3, state.GrahamTrustInGrayson: 0},
			wantHP:     map[string]int{"graham": 10, "grayson": 12},
		},
		{
			name: "grayson angrier, graham at threshold, hesitant",
			picks: map[int]int{
				cHallwayGrayson1: 0, // graham +2
				cHallwayGraham1:  1, // grayson +2
				cHallwayGrayson2: 1, // graham +1
				cHallwayGraham2:  0, // grayson +2
			},
			wantTarget: outcome.Grayson,
			wantRescue: outcome.Hesitant,
			wantPOV:    "graham",
			wantTrust:  map[state.Field]int{state.GraysonTrustInGraham: -3, state.GrahamTrustInGrayson: 0},
			wantHP:     map[string]int{"graham": 10, "grayson": 11},
		},
		{
			name: "tie broken toward grayson",
			picks: map[int]int{
				cHallwayGrayson1: 2, // graham +1
				cHallwayGraham1:  0, // grayson +1
				cHallwayGrayson2: 2, // graham -1
				cHallwayGraham2:  2, // grayson -1
			},
			rng:        1,
			wantTarget: outcome.Grayson,
			wantRescue: outcome.Immediate,
			wantTie:    true,
			wantPOV:    "graham",
			wantTrust:  map[state.Field]int{state.GraysonTrustInGraham: 3, state.GrahamTrustInGrayson: 0},
			wantHP:     map[string]int{"graham": 10, "grayson": 12},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRun(t, tt.picks, tt.rng)
			require.NoError(t, r.engine.Run(context.Background()))

			require.Len(t, r.engine.Encounters(), 1)
			res := r.engine.Encounters()[0]
			assert.Equal(t, tt.wantTarget, res.Target)
			assert.Equal(t, tt.wantTarget.Other(), res.Rescuer)
			assert.Equal(t, tt.wantRescue, res.Rescue)
			assert.Equal(t, tt.wantTie, res.Tie)

			for f, want := range tt.wantTrust {
				assert.Equal(t, want, r.intField(t, f), f)
			}
			for id, want := range tt.wantHP {
				assert.Equal(t, want, r.cast.Get(id).HP(), id)
			}

			enc := r.encounter(t)
			branch := enc.Targets[string(tt.wantTarget)]
			assert.Equal(t, tt.wantPOV, branch.POV)
			assert.Contains(t, r.p.text, branch.Attack[0].Text)
			if tt.wantRescue == outcome.Hesitant {
				assert.Contains(t, r.p.text, branch.Hesitate[0].Text)
				assert.NotContains(t, r.p.text, branch.Rescue[0].Text)
			} else {
				assert.Contains(t, r.p.text, branch.Rescue[0].Text)
				assert.NotContains(t, r.p.text, branch.Hesitate[0].Text)
			}
			other := enc.Targets[string(tt.wantTarget.Other())]
			assert.NotContains(t, r.p.text, other.Attack[0].Text)
			assert.Contains(t, r.p.text, enc.Lunge[0].Text)
			assert.Contains(t, r.p.text, enc.After[0].Text)
		})
	}
}

func TestRun_ChooserError(t *testing.T) {
	errQuit := errors.New("quit")
	r := newRun(t, nil, fixedRand(0))
	r.chooser.err = errQuit

	err := r.engine.Run(context.Background())
	assert.ErrorIs(t, err, errQuit)
	assert.Equal(t, 0, r.p.count("echo"))
	assert.Empty(t, r.engine.Decisions())
}

func TestRun_OutOfRangeSelection(t *testing.T) {
	r := newRun(t, map[int]int{cMorningGraham: 5}, fixedRand(0))
	err := r.engine.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "morning_graham")
}

func TestRun_CancelledContext(t *testing.T) {
	r := newRun(t, nil, fixedRand(0))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, r.engine.Run(ctx), context.Canceled)
	assert.Empty(t, r.chooser.seen)
}

func TestRun_NoBranch(t *testing.T) {
	s := &story.Story{
		Name:  "broken",
		Title: "Broken",
		Scenes: []story.Scene{{
			ID:  "only",
			POV: "graham",
			Beats: []story.Beat{{Dispatch: &story.Dispatch{
				ID: "never",
				On: []state.Field{state.OfficeRemark},
				Cases: []story.Case{{
					Name: "remark",
					When: conditionals.When{Flags: map[string]bool{"office_remark": true}},
					Text: []story.Line{{Text: "unreachable"}},
				}},
			}}},
		}},
		Ending: "END",
	}
	p := &recordingPresenter{}
	e := New(s, nil, &scriptedChooser{}, p, Options{})

	err := e.Run(context.Background())
	assert.ErrorIs(t, err, ErrNoBranch)
	assert.NotContains(t, p.text, "unreachable")
	assert.Zero(t, p.count("ending"))
}

func TestRun_DispatchUsesSnapshot(t *testing.T) {
	// The first case pushes the counter into the second case's range.
	// Only one case may play.
	s := &story.Story{
		Name:  "snap",
		Title: "Snap",
		Scenes: []story.Scene{{
			ID:  "only",
			POV: "graham",
			Beats: []story.Beat{{Dispatch: &story.Dispatch{
				ID: "step",
				On: []state.Field{state.GrahamAnger},
				Cases: []story.Case{
					{
						Name:    "low",
						When:    conditionals.When{Max: map[string]int{"graham_anger": 0}},
						Effects: []state.Effect{{Op: state.OpAdd, Field: state.GrahamAnger, Amount: 5}},
						Text:    []story.Line{{Text: "low"}},
					},
					{
						Name: "high",
						When: conditionals.When{Min: map[string]int{"graham_anger": 5}},
						Text: []story.Line{{Text: "high"}},
					},
				},
			}}},
		}},
	}
	p := &recordingPresenter{}
	e := New(s, nil, &scriptedChooser{}, p, Options{})
	require.NoError(t, e.Run(context.Background()))

	assert.Equal(t, []string{"low"}, p.text)
	v, err := e.State().Int(state.GrahamAnger)
	require.NoError(t, err)
	assert.Equal(t, 5, v)
}

func TestRun_Logs(t *testing.T) {
	r := newRun(t, nil, fixedRand(0))
	require.NoError(t, r.engine.Run(context.Background()))

	logs := r.logs.String()
	assert.Contains(t, logs, "Choice made")
	assert.Contains(t, logs, "choice=office_rookie")
	assert.Contains(t, logs, "Dispatch resolved")
	assert.Contains(t, logs, "Counters reset")
	assert.Contains(t, logs, "Encounter resolved")
	assert.Contains(t, logs, "Session complete")
}
