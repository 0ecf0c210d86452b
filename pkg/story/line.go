package story

import (
	"encoding/json"
	"time"
)

// Style is the emphasis applied to a line of narration.
type Style string

const (
	StylePlain  Style = ""
	StyleItalic Style = "italic"
	StyleBold   Style = "bold"
)

// Line is one unit of narration. In JSON it can be either a plain string
// or an object with styling, a speaker tag, and a pause.
type Line struct {
	Text    string  `json:"text"`
	Style   Style   `json:"style,omitempty"`
	Speaker string  `json:"speaker,omitempty"` // Character id; prints a bold speaker tag before the text
	Pause   float64 `json:"pause,omitempty"`   // Seconds to wait after the line
}

// UnmarshalJSON supports both string and object formats.
func (l *Line) UnmarshalJSON(data []byte) error {
	// Try unmarshaling as a plain string first
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*l = Line{Text: str}
		return nil
	}

	type Alias Line
	aux := &struct{ *Alias }{Alias: (*Alias)(l)}
	return json.Unmarshal(data, aux)
}

// PauseDuration returns Pause as a duration.
func (l Line) PauseDuration() time.Duration {
	if l.Pause <= 0 {
		return 0
	}
	return time.Duration(l.Pause * float64(time.Second))
}
