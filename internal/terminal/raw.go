// Package terminal reads single keypresses from a raw-mode console and
// writes the few control sequences the game needs.
package terminal

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"golang.org/x/term"
)

var (
	// ErrNotTerminal is returned when stdin is not an interactive console.
	ErrNotTerminal = errors.New("stdin is not a terminal")
	// ErrInterrupted is returned when Ctrl-C is pressed while in raw mode.
	ErrInterrupted = errors.New("interrupted")
)

// Keyboard reads keypresses from a terminal. Raw mode is held only for the
// duration of a single ReadKey call.
type Keyboard struct {
	in     *os.File
	fd     int
	scheme Scheme

	mu    sync.Mutex
	saved *term.State // non-nil while in raw mode
}

// NewKeyboard wraps in, which must be a terminal.
func NewKeyboard(in *os.File) (*Keyboard, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return nil, ErrNotTerminal
	}
	return &Keyboard{in: in, fd: fd, scheme: DefaultScheme()}, nil
}

// ReadKey switches the terminal to raw mode, reads one keypress, and
// restores the previous mode on every path. Ctrl-C is reported as
// ErrInterrupted once the terminal has been restored.
func (k *Keyboard) ReadKey() (Key, error) {
	st, err := term.MakeRaw(k.fd)
	if err != nil {
		return KeyOther, fmt.Errorf("failed to enter raw mode: %w", err)
	}
	k.mu.Lock()
	k.saved = st
	k.mu.Unlock()
	defer func() {
		_ = k.Close() // Ignore error in defer
	}()

	key, _, err := Decode(k.in, k.scheme)
	if err != nil {
		return KeyOther, err
	}
	if key == KeyInterrupt {
		return key, ErrInterrupted
	}
	return key, nil
}

// Close restores the terminal if it is still in raw mode. It is safe to
// call from a signal handler goroutine and more than once.
func (k *Keyboard) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.saved == nil {
		return nil
	}
	st := k.saved
	k.saved = nil
	if err := term.Restore(k.fd, st); err != nil {
		return fmt.Errorf("failed to restore terminal: %w", err)
	}
	return nil
}
