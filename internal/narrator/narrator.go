// Package narrator writes the story to the terminal: typewriter pacing,
// emphasis, word wrapping, and the fixed pieces of chrome between scenes.
package narrator

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/no-svoboda/internal/terminal"
	"github.com/jwebster45206/no-svoboda/pkg/actor"
	"github.com/jwebster45206/no-svoboda/pkg/story"
)

// Per-character typing delays, before the speed multiplier.
const (
	DelaySlow   = 600 * time.Millisecond // the "..." of a transition
	DelayMedium = 100 * time.Millisecond // echoes, datelines, captions
	DelayNormal = 50 * time.Millisecond  // narration
	DelayFast   = 25 * time.Millisecond  // bios and long instructions
)

const (
	LinePause       = 400 * time.Millisecond
	EchoPause       = 2500 * time.Millisecond
	TransitionPause = time.Second
	BannerRule      = "————"
	EchoPrefix      = "You chose: "
)

// ANSI emphasis for typewritten lines. These are written around the text
// rather than rendered with lipgloss so the text itself can be paced.
const (
	ansiBold   = "\033[1m"
	ansiItalic = "\033[3m"
	ansiReset  = "\033[0m"
)

var (
	bannerStyle = lipgloss.NewStyle().
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Bold(true)

	playerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)
)

// Options controls pacing and layout.
type Options struct {
	Speed float64             // Multiplier on every delay; 0 disables pacing
	Width int                 // Wrap width; <= 0 uses terminal.DefaultWidth
	Sleep func(time.Duration) // Defaults to time.Sleep
}

// Narrator writes paced, styled narration to out.
type Narrator struct {
	out   io.Writer
	speed float64
	width int
	sleep func(time.Duration)
	cast  *actor.Cast
}

// New returns a Narrator. The cast resolves speaker ids to tags and may be
// set later with SetCast.
func New(out io.Writer, opts Options) *Narrator {
	n := &Narrator{
		out:   out,
		speed: opts.Speed,
		width: opts.Width,
		sleep: opts.Sleep,
	}
	if n.speed < 0 {
		n.speed = 0
	}
	if n.width <= 0 {
		n.width = terminal.DefaultWidth
	}
	if n.sleep == nil {
		n.sleep = time.Sleep
	}
	return n
}

// SetCast sets the protagonists used for speaker tags and banners.
func (n *Narrator) SetCast(c *actor.Cast) {
	n.cast = c
}

// Pause waits d scaled by the speed multiplier.
func (n *Narrator) Pause(d time.Duration) {
	if n.speed == 0 || d <= 0 {
		return
	}
	n.sleep(time.Duration(float64(d) * n.speed))
}

// Clear erases the screen.
func (n *Narrator) Clear() error {
	return terminal.Clear(n.out)
}

// Type writes s one rune at a time with perChar between runes. With
// pacing disabled it writes s in one call. The text is never altered.
func (n *Narrator) Type(s string, perChar time.Duration) error {
	if n.speed == 0 {
		_, err := io.WriteString(n.out, s)
		return err
	}
	for _, r := range s {
		if _, err := io.WriteString(n.out, string(r)); err != nil {
			return err
		}
		n.Pause(perChar)
	}
	return nil
}

// Say types a paragraph of plain narration followed by a newline.
func (n *Narrator) Say(s string) error {
	if err := n.Type(wordwrap.String(s, n.width), DelayNormal); err != nil {
		return err
	}
	_, err := io.WriteString(n.out, "\n")
	return err
}

// Lines plays a run of story lines, with a blank line after each.
func (n *Narrator) Lines(lines []story.Line) error {
	for _, l := range lines {
		if err := n.line(l); err != nil {
			return err
		}
	}
	return nil
}

func (n *Narrator) line(l story.Line) error {
	if l.Speaker != "" {
		if _, err := fmt.Fprintln(n.out, speakerStyle.Render(n.speakerTag(l.Speaker))); err != nil {
			return err
		}
	}

	prefix := ""
	switch l.Style {
	case story.StyleBold:
		prefix = ansiBold
	case story.StyleItalic:
		prefix = ansiItalic
	}

	if prefix != "" {
		if _, err := io.WriteString(n.out, prefix); err != nil {
			return err
		}
	}
	if err := n.Type(wordwrap.String(l.Text, n.width), DelayNormal); err != nil {
		return err
	}
	if prefix != "" {
		if _, err := io.WriteString(n.out, ansiReset); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(n.out, "\n\n"); err != nil {
		return err
	}

	n.Pause(LinePause)
	n.Pause(l.PauseDuration())
	return nil
}

func (n *Narrator) speakerTag(id string) string {
	if p := n.cast.Get(id); p != nil {
		return p.Tag()
	}
	return strings.ToUpper(id)
}

// POV prints the point-of-view banner for the protagonist with the given
// id, the name of the player controlling them, and an optional dateline.
func (n *Narrator) POV(id, dateline string) error {
	banner := "YOU ARE " + strings.ToUpper(id)
	player := ""
	if p := n.cast.Get(id); p != nil {
		banner = p.Banner()
		player = p.Player
	}

	if _, err := fmt.Fprintln(n.out, bannerStyle.Render(BannerRule+banner+BannerRule)); err != nil {
		return err
	}
	if player != "" {
		if _, err := fmt.Fprintln(n.out, playerStyle.Render("("+player+")")); err != nil {
			return err
		}
	}
	if dateline != "" {
		if _, err := io.WriteString(n.out, ansiItalic); err != nil {
			return err
		}
		if err := n.Type(dateline, DelayMedium); err != nil {
			return err
		}
		if _, err := io.WriteString(n.out, ansiReset+"\n"); err != nil {
			return err
		}
	}
	_, err := io.WriteString(n.out, "\n")
	return err
}

// Echo clears the screen, confirms the chosen label, pauses, and clears
// again.
func (n *Narrator) Echo(label string) error {
	if err := n.Clear(); err != nil {
		return err
	}
	if err := n.Type(EchoPrefix+label, DelayMedium); err != nil {
		return err
	}
	n.Pause(EchoPause)
	return n.Clear()
}

// Transition separates scenes: clear, a slow "...", clear.
func (n *Narrator) Transition() error {
	if err := n.Clear(); err != nil {
		return err
	}
	n.Pause(TransitionPause)
	if err := n.Type("...", DelaySlow); err != nil {
		return err
	}
	n.Pause(TransitionPause)
	return n.Clear()
}

// Title prints the story title card.
func (n *Narrator) Title(title string) error {
	if _, err := fmt.Fprintf(n.out, "%s\n\n", titleStyle.Render(strings.ToUpper(title))); err != nil {
		return err
	}
	n.Pause(TransitionPause)
	return nil
}

// Ending types the closing caption in bold.
func (n *Narrator) Ending(text string) error {
	if _, err := io.WriteString(n.out, "\n"+ansiBold); err != nil {
		return err
	}
	if err := n.Type(text, DelayMedium); err != nil {
		return err
	}
	_, err := io.WriteString(n.out, ansiReset+"\n")
	return err
}

// Roster lists the selectable characters with their bios.
func (n *Narrator) Roster(specs []actor.ProtagonistSpec) error {
	for _, s := range specs {
		if _, err := fmt.Fprintf(n.out, "%s. %s\n", s.Key, speakerStyle.Render(s.Name)); err != nil {
			return err
		}
		for _, b := range s.Bio {
			if err := n.Type(wordwrap.String(b, n.width)+"\n", DelayFast); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(n.out, "\n"); err != nil {
			return err
		}
	}
	return nil
}
