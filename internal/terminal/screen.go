package terminal

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// DefaultWidth is used when the terminal size cannot be detected.
const DefaultWidth = 80

const clearSequence = "\033[H\033[2J"

// Clear homes the cursor and erases the screen.
func Clear(w io.Writer) error {
	_, err := io.WriteString(w, clearSequence)
	return err
}

// CursorUp moves the cursor up n lines. n <= 0 writes nothing.
func CursorUp(w io.Writer, n int) error {
	if n <= 0 {
		return nil
	}
	_, err := fmt.Fprintf(w, "\033[%dA", n)
	return err
}

// Width returns the column count of f, or fallback when f is not a
// terminal or the size is unknown.
func Width(f *os.File, fallback int) int {
	if fallback <= 0 {
		fallback = DefaultWidth
	}
	if f == nil {
		return fallback
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}
