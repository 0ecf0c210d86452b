// Package story holds the scene script: the fixed, ordered sequence of
// narration, Choice Points, dispatch tables, and the encounter that the
// engine plays from top to bottom.
package story

import (
	"github.com/jwebster45206/no-svoboda/pkg/actor"
)

// Story is a complete, linear script. There is no scene graph: scenes play
// in order and branches rejoin the main line after their continuation.
type Story struct {
	Name       string                  `json:"name"`  // snake_case identifier, matches the file name
	Title      string                  `json:"title"` // Shown on the title card
	Characters []actor.ProtagonistSpec `json:"characters"`
	Scenes     []Scene                 `json:"scenes"`
	Ending     string                  `json:"ending"` // Closing caption, e.g. "TO BE CONTINUED..."
}

// Character returns the spec for a character id, or nil.
func (s *Story) Character(id string) *actor.ProtagonistSpec {
	for i := range s.Characters {
		if s.Characters[i].ID == id {
			return &s.Characters[i]
		}
	}
	return nil
}

// Choices returns every Choice Point in play order.
func (s *Story) Choices() []*Choice {
	var out []*Choice
	for i := range s.Scenes {
		for j := range s.Scenes[i].Beats {
			if c := s.Scenes[i].Beats[j].Choice; c != nil {
				out = append(out, c)
			}
		}
	}
	return out
}

// Choice returns the Choice Point with the given id, or nil.
func (s *Story) Choice(id string) *Choice {
	for _, c := range s.Choices() {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Dispatch returns the dispatch table with the given id, or nil.
func (s *Story) Dispatch(id string) *Dispatch {
	for i := range s.Scenes {
		for j := range s.Scenes[i].Beats {
			if d := s.Scenes[i].Beats[j].Dispatch; d != nil && d.ID == id {
				return d
			}
		}
	}
	return nil
}
