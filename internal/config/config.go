// Package config loads the optional dircp settings file. Every field is
// optional; defaults are applied once, at load time, so consumers always see
// a fully populated Settings.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Defaults applied when the settings file is absent, malformed, or silent on
// a field.
const (
	DefaultStrategy   = "baseline"
	DefaultBufferKB   = 1024
	DefaultMaxWorkers = 4
)

// File mirrors the on-disk TOML document. Pointer fields distinguish "unset"
// from zero values.
type File struct {
	CopyStrategy     *string `toml:"copy_strategy"`
	CopyBufferSizeKB *int    `toml:"copy_buffer_size_kb"`
	CopyMaxWorkers   *int    `toml:"copy_max_workers"`
}

// Settings are the resolved engine tunables.
type Settings struct {
	Strategy   string
	BufferKB   int
	MaxWorkers int
}

// Default returns Settings with every field at its default.
func Default() Settings {
	return Settings{
		Strategy:   DefaultStrategy,
		BufferKB:   DefaultBufferKB,
		MaxWorkers: DefaultMaxWorkers,
	}
}

// Path returns the resolved path to the settings file.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "dircp", "config.toml")
}

// Load reads the settings file at path (the XDG path when empty). A missing
// file yields the defaults with no error. A malformed file also yields the
// defaults, with the parse error returned so the caller can log it; the
// engine still starts.
func Load(path string) (Settings, error) {
	if path == "" {
		path = Path()
	}
	if path == "" {
		return Default(), nil
	}

	var file File
	if _, err := toml.DecodeFile(path, &file); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Default(), err
	}
	return file.Resolve(), nil
}

// Resolve applies defaults to every unset or invalid field.
func (f File) Resolve() Settings {
	s := Default()
	if f.CopyStrategy != nil && validStrategy(*f.CopyStrategy) {
		s.Strategy = *f.CopyStrategy
	}
	if f.CopyBufferSizeKB != nil && *f.CopyBufferSizeKB > 0 {
		s.BufferKB = *f.CopyBufferSizeKB
	}
	if f.CopyMaxWorkers != nil && *f.CopyMaxWorkers > 0 {
		s.MaxWorkers = *f.CopyMaxWorkers
	}
	return s
}

func validStrategy(name string) bool {
	switch name {
	case "baseline", "buffered", "sendfile", "parallel", "pipeline":
		return true
	}
	return false
}
