package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"fortio.org/safecast"
	"github.com/mattn/go-runewidth"

	"unicecream/internal/diag"
	"unicecream/internal/source"
)

// Pretty печатает нарушения одного файла в порядке items (ожидается Sort заранее):
//
//	<path>:<line>:<col>: <CODE> <message>
//
// и, если включено ShowSource, строку исходника с ^~~~ под нарушением.
func Pretty(w io.Writer, path string, file *source.File, items []diag.Violation, opts PrettyOpts) error {
	pal := newPalette(opts.Color)
	shown := opts.DisplayPath(path)
	for _, v := range items {
		loc := fmt.Sprintf("%s:%d:%d:", shown, v.Line, v.Column)
		if _, err := fmt.Fprintf(w, "%s %s %s\n", pal.path.Sprint(loc), pal.code.Sprint(v.Code.ID()), v.Message); err != nil {
			return err
		}
		if !opts.ShowSource || file == nil {
			continue
		}
		line, marker := excerpt(file, v)
		if line == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "    %s\n    %s\n", line, pal.caret.Sprint(marker)); err != nil {
			return err
		}
	}
	return nil
}

// excerpt returns the source line of v and a marker aligned under it: a
// caret at the start column followed by tildes up to the end of the
// violation or of the line.
func excerpt(file *source.File, v diag.Violation) (string, string) {
	lineNum, err := safecast.Conv[uint32](v.Line)
	if err != nil || lineNum == 0 {
		return "", ""
	}
	line := file.GetLine(lineNum)
	if strings.TrimSpace(line) == "" {
		return "", ""
	}
	runes := []rune(line)
	col := v.Column - 1
	if col < 0 || col > len(runes) {
		return line, ""
	}

	var pad strings.Builder
	for _, r := range runes[:col] {
		if r == '\t' {
			pad.WriteByte('\t')
			continue
		}
		pad.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}

	width := 1
	if v.Primary.End > v.Primary.Start {
		end := file.LineCol(v.Primary.End)
		endCol := len(runes)
		if int(end.Line) == v.Line {
			endCol = int(end.Col) - 1
		}
		if endCol > col {
			width = max(runewidth.StringWidth(string(runes[col:endCol])), 1)
		}
	}
	return line, pad.String() + "^" + strings.Repeat("~", width-1)
}

// Fixed reports a rewritten file.
func Fixed(w io.Writer, path string, opts PrettyOpts) error {
	pal := newPalette(opts.Color)
	_, err := fmt.Fprintf(w, "%s %s\n", pal.ok.Sprint("fixed:"), opts.DisplayPath(path))
	return err
}

// Failure reports a per-file error on stderr-style output.
func Failure(w io.Writer, path string, err error, opts PrettyOpts) error {
	pal := newPalette(opts.Color)
	msg := err.Error()
	shown := opts.DisplayPath(path)
	if !strings.Contains(msg, path) {
		msg = shown + ": " + msg
	}
	_, werr := fmt.Fprintf(w, "%s %s\n", pal.code.Sprint("error:"), msg)
	return werr
}
