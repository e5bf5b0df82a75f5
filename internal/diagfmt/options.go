package diagfmt

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"unicecream/internal/source"
)

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAsIs prints paths the way they were discovered.
	PathModeAsIs PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// ParsePathMode converts a flag value to PathMode.
func ParsePathMode(s string) (PathMode, error) {
	switch strings.ToLower(s) {
	case "", "as-is":
		return PathModeAsIs, nil
	case "absolute":
		return PathModeAbsolute, nil
	case "relative":
		return PathModeRelative, nil
	case "basename":
		return PathModeBasename, nil
	default:
		return PathModeAsIs, fmt.Errorf("invalid path mode: %q (expected: as-is|absolute|relative|basename)", s)
	}
}

// PrettyOpts configures text output.
type PrettyOpts struct {
	Color      bool
	PathMode   PathMode
	BaseDir    string // для PathModeRelative, "" - рабочая директория
	ShowSource bool   // строка исходника и ^~~ под нарушением
}

// DisplayPath formats file's path according to opts.
func (o PrettyOpts) DisplayPath(path string) string {
	f := &source.File{Path: path}
	switch o.PathMode {
	case PathModeAbsolute:
		return f.FormatPath("absolute", "")
	case PathModeRelative:
		return f.FormatPath("relative", o.BaseDir)
	case PathModeBasename:
		return f.FormatPath("basename", "")
	default:
		return path
	}
}

// palette holds the colours of one render call, each forced on or off.
type palette struct {
	path, code, caret, ok, add, del, hunk *color.Color
}

func newPalette(on bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if on {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		path:  mk(color.Bold),
		code:  mk(color.FgRed, color.Bold),
		caret: mk(color.FgRed),
		ok:    mk(color.FgGreen),
		add:   mk(color.FgGreen),
		del:   mk(color.FgRed),
		hunk:  mk(color.FgCyan),
	}
}
