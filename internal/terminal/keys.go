package terminal

import (
	"errors"
	"fmt"
	"io"
)

// Key is a classified keypress.
type Key int

const (
	KeyOther Key = iota
	KeyUp
	KeyDown
	KeyConfirm
	KeyInterrupt
)

func (k Key) String() string {
	switch k {
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyConfirm:
		return "confirm"
	case KeyInterrupt:
		return "interrupt"
	default:
		return "other"
	}
}

// Scheme is the byte layout a console uses for special keys.
type Scheme int

const (
	// SchemeUnix: arrows arrive as ESC followed by exactly two bytes.
	SchemeUnix Scheme = iota
	// SchemeWindows: arrows arrive as 0xE0 or 0x00 followed by one byte,
	// or as the Unix escape sequence when the console has virtual terminal
	// input enabled, which term.MakeRaw does.
	SchemeWindows
)

const (
	byteEsc       = 0x1b
	byteCtrlC     = 0x03
	byteWinPrefix = 0xe0
	byteWinNull   = 0x00
)

// DefaultScheme is the scheme of the platform the binary was built for.
func DefaultScheme() Scheme {
	return defaultScheme
}

// Decode reads exactly one keypress from r and classifies it. The raw
// bytes consumed are returned alongside the key. An escape or prefix byte
// always consumes its trailing bytes, even when they are not an arrow.
func Decode(r io.Reader, scheme Scheme) (Key, []byte, error) {
	first := make([]byte, 1)
	if _, err := io.ReadFull(r, first); err != nil {
		return KeyOther, nil, fmt.Errorf("failed to read key: %w", err)
	}

	switch scheme {
	case SchemeWindows:
		return decodeWindows(r, first[0])
	default:
		return decodeUnix(r, first[0])
	}
}

func decodeUnix(r io.Reader, b byte) (Key, []byte, error) {
	switch b {
	case '\r', '\n':
		return KeyConfirm, []byte{b}, nil
	case byteCtrlC:
		return KeyInterrupt, []byte{b}, nil
	case byteEsc:
		return decodeEscape(r, b)
	}
	return KeyOther, []byte{b}, nil
}

// decodeEscape consumes the two bytes after ESC.
func decodeEscape(r io.Reader, b byte) (Key, []byte, error) {
	rest := make([]byte, 2)
	if _, err := io.ReadFull(r, rest); err != nil {
		return KeyOther, []byte{b}, fmt.Errorf("failed to read escape sequence: %w", unexpected(err))
	}
	raw := []byte{b, rest[0], rest[1]}
	if rest[0] == '[' {
		switch rest[1] {
		case 'A':
			return KeyUp, raw, nil
		case 'B':
			return KeyDown, raw, nil
		}
	}
	return KeyOther, raw, nil
}

func decodeWindows(r io.Reader, b byte) (Key, []byte, error) {
	switch b {
	case '\r':
		return KeyConfirm, []byte{b}, nil
	case byteCtrlC:
		return KeyInterrupt, []byte{b}, nil
	case byteEsc:
		return decodeEscape(r, b)
	case byteWinPrefix, byteWinNull:
		rest := make([]byte, 1)
		if _, err := io.ReadFull(r, rest); err != nil {
			return KeyOther, []byte{b}, fmt.Errorf("failed to read key prefix: %w", unexpected(err))
		}
		raw := []byte{b, rest[0]}
		switch rest[0] {
		case 'H':
			return KeyUp, raw, nil
		case 'P':
			return KeyDown, raw, nil
		}
		return KeyOther, raw, nil
	}
	return KeyOther, []byte{b}, nil
}

// unexpected turns a clean EOF in the middle of a sequence into
// io.ErrUnexpectedEOF.
func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
