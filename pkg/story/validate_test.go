package story

import (
	"errors"
	"strings"
	"testing"

	"github.com/jwebster45206/no-svoboda/pkg/conditionals"
	"github.com/jwebster45206/no-svoboda/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minimalStory(t *testing.T) *Story {
	t.Helper()
	s, err := Decode(strings.NewReader(minimalStoryJSON))
	require.NoError(t, err)
	return s
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *Story)
		wantMsg string
	}{
		{
			name:    "story name not snake case",
			mutate:  func(s *Story) { s.Name = "Minimal-Story" },
			wantMsg: "story name",
		},
		{
			name:    "one character",
			mutate:  func(s *Story) { s.Characters = s.Characters[:1] },
			wantMsg: "exactly 2 characters",
		},
		{
			name:    "wrong selection keys",
			mutate:  func(s *Story) { s.Characters[1].Key = "3" },
			wantMsg: "character keys",
		},
		{
			name:    "unknown character id",
			mutate:  func(s *Story) { s.Characters[1].ID = "rookie" },
			wantMsg: `character id "rookie"`,
		},
		{
			name:    "scene pov unknown",
			mutate:  func(s *Story) { s.Scenes[0].POV = "nobody" },
			wantMsg: `unknown character "nobody"`,
		},
		{
			name:    "duplicate scene id",
			mutate:  func(s *Story) { s.Scenes = append(s.Scenes, Scene{ID: "only", POV: "graham", Beats: []Beat{{POV: "grayson"}}}) },
			wantMsg: `duplicate scene id "only"`,
		},
		{
			name:    "beat with two kinds",
			mutate:  func(s *Story) { s.Scenes[0].Beats[0].POV = "graham" },
			wantMsg: "exactly one of",
		},
		{
			name:    "choice without options",
			mutate:  func(s *Story) { s.Scenes[0].Beats[1].Choice.Options = nil },
			wantMsg: "has no options",
		},
		{
			name:    "blank label",
			mutate:  func(s *Story) { s.Scenes[0].Beats[1].Choice.Options[0].Label = "  " },
			wantMsg: "empty label",
		},
		{
			name: "add on a bool field",
			mutate: func(s *Story) {
				s.Scenes[0].Beats[1].Choice.Options[0].Effects = []state.Effect{{Op: state.OpAdd, Field: state.Late, Amount: 1}}
			},
			wantMsg: "add on bool",
		},
		{
			name: "unknown effect field",
			mutate: func(s *Story) {
				s.Scenes[0].Beats[1].Choice.Options[0].Effects = []state.Effect{{Op: state.OpAdd, Field: "courage", Amount: 1}}
			},
			wantMsg: "courage",
		},
		{
			name: "duplicate choice id",
			mutate: func(s *Story) {
				s.Scenes[0].Beats = append(s.Scenes[0].Beats, Beat{Choice: &Choice{ID: "pick", Options: []Option{{Label: "C"}}}})
			},
			wantMsg: `id "pick" already used`,
		},
		{
			name: "dispatch reads a field it does not declare",
			mutate: func(s *Story) {
				s.Scenes[0].Beats = append(s.Scenes[0].Beats, Beat{Dispatch: &Dispatch{
					ID: "after",
					On: []state.Field{state.Late},
					Cases: []Case{{
						When: conditionals.When{Flags: map[string]bool{"office_silent": true}},
					}},
				}})
			},
			wantMsg: "not listed in on",
		},
		{
			name: "dispatch without cases",
			mutate: func(s *Story) {
				s.Scenes[0].Beats = append(s.Scenes[0].Beats, Beat{Dispatch: &Dispatch{ID: "after", On: []state.Field{state.Late}}})
			},
			wantMsg: "has no cases",
		},
		{
			name: "reset of a non-anger field",
			mutate: func(s *Story) {
				s.Scenes[0].Beats = append(s.Scenes[0].Beats, Beat{Reset: []state.Field{state.Composure}})
			},
			wantMsg: "cannot be reset",
		},
		{
			name: "two resets",
			mutate: func(s *Story) {
				s.Scenes[0].Beats = append(s.Scenes[0].Beats,
					Beat{Reset: []state.Field{state.GrahamAnger}},
					Beat{Reset: []state.Field{state.GraysonAnger}})
			},
			wantMsg: "at most one",
		},
		{
			name: "encounter missing a target",
			mutate: func(s *Story) {
				s.Scenes[0].Beats = append(s.Scenes[0].Beats, Beat{Encounter: &Encounter{
					Targets: map[string]EncounterBranch{
						"graham": {POV: "grayson", Attack: []Line{{Text: "a"}}, Hesitate: []Line{{Text: "h"}}, Rescue: []Line{{Text: "r"}}},
					},
				}})
			},
			wantMsg: "target grayson is missing",
		},
		{
			name: "unknown line style",
			mutate: func(s *Story) {
				s.Scenes[0].Beats[0].Text[0].Style = "underline"
			},
			wantMsg: `unknown style "underline"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := minimalStory(t)
			tt.mutate(s)
			err := Validate(s)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidStory))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	s := minimalStory(t)
	s.Title = ""
	s.Scenes[0].POV = "nobody"
	s.Scenes[0].Beats[1].Choice.Options[0].Label = ""

	err := Validate(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title")
	assert.Contains(t, err.Error(), "nobody")
	assert.Contains(t, err.Error(), "empty label")
}
