// Package config loads the [tool.unicecream] table from pyproject.toml.
//
// A missing file, a malformed file or a table with the wrong shape never
// fails a run: Discover falls back to Default and hands the cause back for
// tracing only.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the project file searched for.
const FileName = "pyproject.toml"

// Config is the effective project configuration.
type Config struct {
	Select  []string
	Ignore  []string
	Exclude []string
	// Path is the file the values came from, "" for built-in defaults.
	Path string
}

type pyproject struct {
	Tool struct {
		Unicecream settings `toml:"unicecream"`
	} `toml:"tool"`
}

type settings struct {
	Select  []string `toml:"select"`
	Ignore  []string `toml:"ignore"`
	Exclude []string `toml:"exclude"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Select:  []string{"IC001", "IC002", "IC003"},
		Ignore:  []string{},
		Exclude: []string{".venv", "__pycache__", "build", "dist"},
	}
}

// Find walks up from startDir looking for pyproject.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load reads path strictly. Keys absent from [tool.unicecream] keep their
// default values; a file without the table yields the defaults.
func Load(path string) (Config, error) {
	var doc pyproject
	meta, err := toml.DecodeFile(path, &doc)
	if err != nil {
		return Default(), fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}

	cfg := Default()
	cfg.Path = path
	table := doc.Tool.Unicecream
	if meta.IsDefined("tool", "unicecream", "select") {
		cfg.Select = table.Select
	}
	if meta.IsDefined("tool", "unicecream", "ignore") {
		cfg.Ignore = table.Ignore
	}
	if meta.IsDefined("tool", "unicecream", "exclude") {
		cfg.Exclude = table.Exclude
	}
	return cfg, nil
}

// Discover resolves the configuration for a run. explicit, when set, names
// the file to use; otherwise pyproject.toml is searched upwards from
// startDir. Any failure yields Default together with the cause.
func Discover(explicit, startDir string) (Config, error) {
	path := explicit
	if path == "" {
		found, ok, err := Find(startDir)
		if err != nil {
			return Default(), err
		}
		if !ok {
			return Default(), nil
		}
		path = found
	}
	cfg, err := Load(path)
	if err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Override replaces the configured values by the non-empty CLI lists.
func (c Config) Override(selectCodes, ignoreCodes, exclude []string) Config {
	if len(selectCodes) > 0 {
		c.Select = selectCodes
	}
	if len(ignoreCodes) > 0 {
		c.Ignore = ignoreCodes
	}
	if len(exclude) > 0 {
		c.Exclude = exclude
	}
	return c
}
