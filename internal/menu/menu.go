// Package menu presents a vertical list of options and returns the index
// the player confirms.
package menu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jwebster45206/no-svoboda/internal/terminal"
)

// Header is printed once above every menu.
const Header = "[PLAYER CHOICE - WHAT DO YOU DO?]"

const (
	cursorPrefix = "> "
	blankPrefix  = "  "
)

var (
	// ErrNoOptions is returned when a menu is asked to present nothing.
	ErrNoOptions = errors.New("menu has no options")
	// ErrBadStart is returned when the start index is not an option.
	ErrBadStart = errors.New("menu start index out of range")
)

// KeyReader is the source of classified keypresses.
// *terminal.Keyboard satisfies it.
type KeyReader interface {
	ReadKey() (terminal.Key, error)
}

// Selector draws the menu in place on a plain terminal, moving the cursor
// back up after each keypress so the list is redrawn over itself.
type Selector struct {
	keys   KeyReader
	out    io.Writer
	logger *slog.Logger
}

// NewSelector returns a Selector reading from keys and drawing to out.
func NewSelector(keys KeyReader, out io.Writer, logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Selector{keys: keys, out: out, logger: logger}
}

// Select shows options and blocks until one is confirmed. The cursor
// starts on start, or the first option when omitted, and wraps at both
// ends.
func (s *Selector) Select(ctx context.Context, options []string, start ...int) (int, error) {
	index, err := startIndex(options, start)
	if err != nil {
		return 0, err
	}

	if _, err := fmt.Fprintf(s.out, "\n%s\n\n", Header); err != nil {
		return 0, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if err := Render(s.out, options, index); err != nil {
			return 0, err
		}

		key, err := s.keys.ReadKey()
		if err != nil {
			return 0, err
		}
		if key == terminal.KeyConfirm {
			s.logger.Debug("menu option confirmed", "index", index, "label", options[index])
			return index, nil
		}

		index = Move(index, len(options), key)
		if err := terminal.CursorUp(s.out, len(options)); err != nil {
			return 0, err
		}
	}
}

func startIndex(options []string, start []int) (int, error) {
	if len(options) == 0 {
		return 0, ErrNoOptions
	}
	if len(start) == 0 {
		return 0, nil
	}
	if start[0] < 0 || start[0] >= len(options) {
		return 0, fmt.Errorf("%w: %d of %d", ErrBadStart, start[0], len(options))
	}
	return start[0], nil
}

// Render writes one line per option, marking the one under the cursor.
func Render(w io.Writer, options []string, index int) error {
	for i, opt := range options {
		prefix := blankPrefix
		if i == index {
			prefix = cursorPrefix
		}
		if _, err := fmt.Fprintf(w, "%s%s\n", prefix, opt); err != nil {
			return err
		}
	}
	return nil
}

// Move returns the cursor position after key on a menu of n options.
// Keys other than up and down leave it unchanged.
func Move(index, n int, key terminal.Key) int {
	if n <= 0 {
		return 0
	}
	switch key {
	case terminal.KeyUp:
		return (index - 1 + n) % n
	case terminal.KeyDown:
		return (index + 1) % n
	}
	return index
}
