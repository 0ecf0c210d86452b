//go:build !windows

package terminal

const defaultScheme = SchemeUnix
