package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// DiffContext is the number of unchanged lines around each hunk.
const DiffContext = 3

// UnifiedDiff renders the change from before to after as a unified diff
// with a/ and b/ prefixed headers.
func UnifiedDiff(path string, before, after []byte) (string, error) {
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: "a/" + strings.TrimPrefix(path, "/"),
		ToFile:   "b/" + strings.TrimPrefix(path, "/"),
		Context:  DiffContext,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", fmt.Errorf("diff %s: %w", path, err)
	}
	return text, nil
}

// Diff writes the unified diff of one file, colouring added, removed and
// hunk header lines.
func Diff(w io.Writer, path string, before, after []byte, opts PrettyOpts) error {
	text, err := UnifiedDiff(opts.DisplayPath(path), before, after)
	if err != nil || text == "" {
		return err
	}
	pal := newPalette(opts.Color)
	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		body := strings.TrimSuffix(line, "\n")
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			body = pal.path.Sprint(body)
		case strings.HasPrefix(line, "@@"):
			body = pal.hunk.Sprint(body)
		case strings.HasPrefix(line, "+"):
			body = pal.add.Sprint(body)
		case strings.HasPrefix(line, "-"):
			body = pal.del.Sprint(body)
		}
		if _, err := io.WriteString(w, body+"\n"); err != nil {
			return err
		}
	}
	return nil
}
