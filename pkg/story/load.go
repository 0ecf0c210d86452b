package story

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
)

// Load reads, strictly decodes, and validates a story from fsys.
func Load(fsys fs.FS, name string) (*Story, error) {
	if !strings.HasSuffix(name, ".json") {
		return nil, fmt.Errorf("story file must have .json extension: %s", name)
	}
	base := strings.TrimSuffix(path.Base(name), ".json")
	if !snakeCase.MatchString(base) {
		return nil, fmt.Errorf("story filename '%s' must be lowercase snake_case", path.Base(name))
	}

	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read story %s: %w", name, err)
	}

	s, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("story %s: %w", name, err)
	}
	if s.Name != base {
		return nil, fmt.Errorf("%w: story name %q does not match file %s", ErrInvalidStory, s.Name, name)
	}
	return s, nil
}

// Decode strictly decodes a story and validates it. Unknown fields are
// rejected so a typo in the script cannot silently drop an effect.
func Decode(r io.Reader) (*Story, error) {
	var s Story
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed strict JSON unmarshaling: %w", err)
	}
	if err := Validate(&s); err != nil {
		return nil, err
	}
	return &s, nil
}
