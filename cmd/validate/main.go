package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jwebster45206/no-svoboda/pkg/story"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <story.json> [story.json...]\n", os.Args[0])
		os.Exit(1)
	}

	failed := false
	for _, filename := range os.Args[1:] {
		if err := validateFile(filename); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed = true
			continue
		}
		fmt.Printf("%s is valid!\n", filename)
	}
	if failed {
		os.Exit(1)
	}
}

// validateFile applies the same file name, strict decoding, and structural
// rules the game applies to its embedded stories.
func validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	dir, base := filepath.Split(filename)
	if dir == "" {
		dir = "."
	}
	s, err := story.Load(os.DirFS(dir), base)
	if err != nil {
		return err
	}

	choices := s.Choices()
	fmt.Printf("  %d scenes, %d choice points\n", len(s.Scenes), len(choices))
	return nil
}
