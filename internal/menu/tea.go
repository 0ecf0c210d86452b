package menu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jwebster45206/no-svoboda/internal/terminal"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Confirm key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "choose"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
}

// model is the BubbleTea model behind TeaSelector.
// https://github.com/charmbracelet/bubbletea
type model struct {
	options     []string
	index       int
	chosen      bool
	interrupted bool
}

func newModel(options []string, index int) model {
	return model{options: options, index: index}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(km, keys.Quit):
		m.interrupted = true
		return m, tea.Quit
	case key.Matches(km, keys.Confirm):
		m.chosen = true
		return m, tea.Quit
	case key.Matches(km, keys.Up):
		m.index = Move(m.index, len(m.options), terminal.KeyUp)
	case key.Matches(km, keys.Down):
		m.index = Move(m.index, len(m.options), terminal.KeyDown)
	}
	return m, nil
}

func (m model) View() string {
	// Leave nothing behind once a choice is made; the caller clears and
	// echoes the choice itself.
	if m.chosen || m.interrupted {
		return ""
	}

	var content strings.Builder
	content.WriteString("\n" + headerStyle.Render(Header) + "\n\n")
	for i, opt := range m.options {
		if i == m.index {
			content.WriteString(selectedStyle.Render(cursorPrefix + opt))
		} else {
			content.WriteString(blankPrefix + opt)
		}
		content.WriteString("\n")
	}
	content.WriteString("\n")
	content.WriteString(helpStyle.Render(fmt.Sprintf("%s • %s • %s",
		keys.Up.Help().Key+" "+keys.Up.Help().Desc,
		keys.Down.Help().Key+" "+keys.Down.Help().Desc,
		keys.Confirm.Help().Key+" "+keys.Confirm.Help().Desc)))
	content.WriteString("\n")
	return content.String()
}

// TeaSelector presents the menu as a small BubbleTea program. It is the
// alternative to Selector for terminals where in-place redraw misbehaves.
type TeaSelector struct {
	in  io.Reader
	out io.Writer
}

// NewTeaSelector returns a TeaSelector using in and out for the program.
func NewTeaSelector(in io.Reader, out io.Writer) *TeaSelector {
	return &TeaSelector{in: in, out: out}
}

// Select runs the program until an option is confirmed. The highlight
// starts on start, or the first option when omitted.
func (s *TeaSelector) Select(ctx context.Context, options []string, start ...int) (int, error) {
	index, err := startIndex(options, start)
	if err != nil {
		return 0, err
	}

	p := tea.NewProgram(newModel(options, index),
		tea.WithInput(s.in),
		tea.WithOutput(s.out),
		tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, fmt.Errorf("menu program failed: %w", err)
	}

	m, ok := final.(model)
	if !ok {
		return 0, fmt.Errorf("unexpected menu model %T", final)
	}
	if m.interrupted {
		return 0, terminal.ErrInterrupted
	}
	return m.index, nil
}
