package diagfmt

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"unicecream/internal/diag"
	"unicecream/internal/source"
)

func violationAt(file *source.File, start, end uint32, code diag.Code) diag.Violation {
	return diag.New(code, source.Span{File: file.ID, Start: start, End: end}, file.LineCol(start))
}

func TestPrettyPlain(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("pkg/app.py", []byte("import icecream\nx = ic(1)\n")))

	items := []diag.Violation{
		violationAt(file, 0, 15, diag.ImportUsage),
		violationAt(file, 20, 25, diag.CallUsage),
	}

	var buf bytes.Buffer
	if err := Pretty(&buf, file.Path, file, items, PrettyOpts{}); err != nil {
		t.Fatalf("pretty: %v", err)
	}
	want := "pkg/app.py:1:1: IC002 remove icecream import\n" +
		"pkg/app.py:2:5: IC001 remove icecream call\n"
	if buf.String() != want {
		t.Fatalf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestPrettyShowSource(t *testing.T) {
	fs := source.NewFileSet()
	src := "\tname = '漢字'; v = ic(name)\n"
	file := fs.Get(fs.AddVirtual("w.py", []byte(src)))
	start := uint32(strings.Index(src, "ic("))
	end := uint32(strings.Index(src, ")\n") + 1)

	var buf bytes.Buffer
	err := Pretty(&buf, "w.py", file, []diag.Violation{violationAt(file, start, end, diag.CallUsage)}, PrettyOpts{ShowSource: true})
	if err != nil {
		t.Fatalf("pretty: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", buf.String())
	}
	if lines[0] != "w.py:1:19: IC001 remove icecream call" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	// tab is kept, each wide rune takes two cells
	wantMarker := "    \t" + strings.Repeat(" ", 19) + "^~~~~~~~"
	if lines[2] != wantMarker {
		t.Fatalf("marker = %q, want %q", lines[2], wantMarker)
	}
}

func TestPrettyColor(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("a.py", []byte("ic()\n")))

	var buf bytes.Buffer
	if err := Pretty(&buf, "a.py", file, []diag.Violation{violationAt(file, 0, 4, diag.CallUsage)}, PrettyOpts{Color: true}); err != nil {
		t.Fatalf("pretty: %v", err)
	}
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("expected ANSI escapes, got %q", buf.String())
	}
}

func TestFixedAndFailure(t *testing.T) {
	var buf bytes.Buffer
	if err := Fixed(&buf, "src/a.py", PrettyOpts{}); err != nil {
		t.Fatalf("fixed: %v", err)
	}
	if err := Failure(&buf, "src/b.py", errors.New("invalid UTF-8"), PrettyOpts{}); err != nil {
		t.Fatalf("failure: %v", err)
	}
	want := "fixed: src/a.py\nerror: src/b.py: invalid UTF-8\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestDisplayPath(t *testing.T) {
	abs := filepath.Join(string(filepath.Separator), "home", "user", "proj", "src", "a.py")
	opts := PrettyOpts{PathMode: PathModeRelative, BaseDir: filepath.Join(string(filepath.Separator), "home", "user", "proj")}
	if got := opts.DisplayPath(abs); got != filepath.Join("src", "a.py") {
		t.Fatalf("relative = %q", got)
	}
	opts.PathMode = PathModeBasename
	if got := opts.DisplayPath(abs); got != "a.py" {
		t.Fatalf("basename = %q", got)
	}
	opts.PathMode = PathModeAsIs
	if got := opts.DisplayPath("x/../a.py"); got != "x/../a.py" {
		t.Fatalf("as-is = %q", got)
	}
	if _, err := ParsePathMode("weird"); err == nil {
		t.Fatalf("expected error for unknown path mode")
	}
}

func TestUnifiedDiff(t *testing.T) {
	before := []byte("import icecream\nx = ic(1)\ny = 2\n")
	after := []byte("x = 1\ny = 2\n")

	text, err := UnifiedDiff("m.py", before, after)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	for _, want := range []string{"--- a/m.py", "+++ b/m.py", "-import icecream", "-x = ic(1)", "+x = 1", " y = 2"} {
		if !strings.Contains(text, want) {
			t.Fatalf("diff lacks %q:\n%s", want, text)
		}
	}

	same, err := UnifiedDiff("m.py", after, after)
	if err != nil || same != "" {
		t.Fatalf("identical inputs must give an empty diff, got %q (%v)", same, err)
	}

	var buf bytes.Buffer
	if err := Diff(&buf, "m.py", before, after, PrettyOpts{}); err != nil {
		t.Fatalf("diff writer: %v", err)
	}
	if buf.String() != text {
		t.Fatalf("plain Diff must match UnifiedDiff")
	}
}

func TestJSONReport(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("a.py", []byte("ic()\n")))

	r := NewJSONReport(PrettyOpts{})
	r.AddViolations("a.py", []diag.Violation{violationAt(file, 0, 4, diag.CallUsage)})
	r.AddFixed("b.py")
	r.AddError("c.py", errors.New("boom"))

	var buf bytes.Buffer
	if err := r.Write(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	var doc struct {
		Violations []ViolationJSON `json:"violations"`
		Fixed      []string        `json:"fixed"`
		Errors     []ErrorJSON     `json:"errors"`
		Count      int             `json:"count"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Count != 1 || doc.Violations[0].Code != "IC001" || doc.Violations[0].End != 4 {
		t.Fatalf("unexpected violations %+v", doc.Violations)
	}
	if len(doc.Fixed) != 1 || len(doc.Errors) != 1 || doc.Errors[0].Error != "boom" {
		t.Fatalf("unexpected doc %+v", doc)
	}
}
