// Package intro runs the pre-story sequence: welcome, player names, and
// the two-stage character selection.
package intro

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jwebster45206/no-svoboda/pkg/actor"
)

// ErrNoInput is returned when stdin closes while a prompt is waiting.
var ErrNoInput = errors.New("no input")

const (
	TakenMessage = "That character is already taken. Please choose a different character."
	StartDelay   = 5 * time.Second
)

// Presenter is the subset of the narrator the intro uses.
type Presenter interface {
	Say(s string) error
	Clear() error
	Pause(d time.Duration)
	Transition() error
	Roster(specs []actor.ProtagonistSpec) error
}

// Pick records which character a player chose.
type Pick struct {
	Player      string `json:"player"`
	CharacterID string `json:"character_id"`
}

// Intro reads line-oriented answers from in. The terminal stays in its
// normal cooked mode here; raw mode is only used by the menu.
type Intro struct {
	in    *bufio.Reader
	out   io.Writer
	p     Presenter
	title string
}

// New returns an Intro for the story with the given title.
func New(in io.Reader, out io.Writer, p Presenter, title string) *Intro {
	return &Intro{in: bufio.NewReader(in), out: out, p: p, title: title}
}

// Run plays the welcome, collects both names, lets each player pick a
// character, and records the picks on cast.
func (i *Intro) Run(ctx context.Context, cast *actor.Cast) ([]Pick, error) {
	if err := i.welcome(); err != nil {
		return nil, err
	}

	names, err := i.names(ctx)
	if err != nil {
		return nil, err
	}

	picks, err := i.choose(ctx, cast, names)
	if err != nil {
		return nil, err
	}
	for _, pk := range picks {
		if err := cast.Assign(pk.CharacterID, pk.Player); err != nil {
			return nil, err
		}
	}

	if err := i.confirm(cast, picks); err != nil {
		return nil, err
	}
	return picks, nil
}

func (i *Intro) welcome() error {
	lines := []string{
		"Hey there!",
		fmt.Sprintf("Welcome to our game, %s.", i.title),
		"This is a 2 player story game, set in an apocalyptic world. You will need a friend to play with.",
	}
	for _, l := range lines {
		if err := i.p.Say(l); err != nil {
			return err
		}
	}
	i.p.Pause(3 * time.Second)
	if err := i.p.Transition(); err != nil {
		return err
	}

	if err := i.p.Say("Your choices will affect how your story plays out throughout the game."); err != nil {
		return err
	}
	i.p.Pause(4 * time.Second)
	return i.p.Clear()
}

func (i *Intro) names(ctx context.Context) ([2]string, error) {
	var names [2]string
	if err := i.p.Say("Before we start, I'd like to know your names!"); err != nil {
		return names, err
	}
	for n := range names {
		name, err := i.prompt(ctx, fmt.Sprintf("Player %d, please enter your name: ", n+1))
		if err != nil {
			return names, err
		}
		names[n] = name
	}

	if err := i.p.Say(fmt.Sprintf("Great! %s, %s, it's a pleasure to meet you both.", names[0], names[1])); err != nil {
		return names, err
	}
	i.p.Pause(2 * time.Second)
	return names, i.p.Clear()
}

func (i *Intro) choose(ctx context.Context, cast *actor.Cast, names [2]string) ([]Pick, error) {
	if err := i.p.Say("Here are the characters you can choose from:\n"); err != nil {
		return nil, err
	}
	var specs []actor.ProtagonistSpec
	var keys []string
	for _, p := range cast.All() {
		specs = append(specs, *p.Spec)
		keys = append(keys, p.Spec.Key)
	}
	if err := i.p.Roster(specs); err != nil {
		return nil, err
	}

	keyList := strings.Join(keys, " or ")
	picks := make([]Pick, 0, len(names))
	taken := ""
	for _, name := range names {
		for {
			answer, err := i.prompt(ctx, fmt.Sprintf("%s, please choose your character (%s): ", name, keyList))
			if err != nil {
				return nil, err
			}
			answer = strings.TrimSpace(answer)
			p := cast.ByKey(answer)
			if p == nil {
				if _, err := fmt.Fprintf(i.out, "Invalid choice. Please choose %s.\n\n", keyList); err != nil {
					return nil, err
				}
				continue
			}
			if p.Spec.ID == taken {
				if _, err := fmt.Fprintf(i.out, "%s\n\n", TakenMessage); err != nil {
					return nil, err
				}
				continue
			}
			taken = p.Spec.ID
			picks = append(picks, Pick{Player: name, CharacterID: p.Spec.ID})
			break
		}
	}
	return picks, nil
}

func (i *Intro) confirm(cast *actor.Cast, picks []Pick) error {
	if err := i.p.Transition(); err != nil {
		return err
	}
	if err := i.p.Say("Great!"); err != nil {
		return err
	}
	for _, pk := range picks {
		if err := i.p.Say(fmt.Sprintf("%s, you have chosen %s.", pk.Player, cast.Get(pk.CharacterID).Spec.Name)); err != nil {
			return err
		}
	}
	if err := i.p.Say(fmt.Sprintf("The game will start in %d seconds...", int(StartDelay/time.Second))); err != nil {
		return err
	}
	i.p.Pause(StartDelay)
	return i.p.Transition()
}

// prompt writes label and reads one line. The trailing line ending is
// removed and nothing else; names are taken as typed.
func (i *Intro) prompt(ctx context.Context, label string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := io.WriteString(i.out, label); err != nil {
		return "", err
	}
	line, err := i.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line == "" {
			return "", ErrNoInput
		}
		if !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
	}
	return strings.TrimRight(line, "\r\n"), nil
}
