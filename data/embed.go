// Package data contains the embedded story scripts.
package data

import (
	"embed"
	"io/fs"
)

//go:embed stories/*.json
var stories embed.FS

// FS returns the story files, rooted so that names are bare file names
// such as "no_svoboda.json".
func FS() fs.FS {
	sub, err := fs.Sub(stories, "stories")
	if err != nil {
		// fs.Sub only fails on an invalid path, and "stories" is valid.
		panic(err)
	}
	return sub
}
