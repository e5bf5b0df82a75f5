package source

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("pkg/app.py", []byte("x = 1\n"), 0)
	id2 := fs.Add("pkg/app.py", []byte("x = 2\n"), 0)
	if id1 == id2 {
		t.Fatalf("expected different FileIDs, got %d twice", id1)
	}

	latestID, exists := fs.GetLatest("pkg/app.py")
	if !exists {
		t.Fatal("expected file to exist after Add")
	}
	if latestID != id2 {
		t.Errorf("expected latest ID %d, got %d", id2, latestID)
	}

	if got := string(fs.Get(id1).Content); got != "x = 1\n" {
		t.Errorf("expected first version to survive, got %q", got)
	}
	if fs.Len() != 2 {
		t.Errorf("expected 2 stored files, got %d", fs.Len())
	}
}

// TestAddVirtualLineIdx проверяет правильность построения LineIdx для AddVirtual
func TestAddVirtualLineIdx(t *testing.T) {
	fs := NewFileSet()

	id := fs.AddVirtual("a.py", []byte("a\nb\n"))
	file := fs.Get(id)

	expected := []uint32{1, 3} // позиции символов \n
	if len(file.LineIdx) != len(expected) {
		t.Fatalf("expected LineIdx length %d, got %d", len(expected), len(file.LineIdx))
	}
	for i, val := range expected {
		if file.LineIdx[i] != val {
			t.Errorf("expected LineIdx[%d] = %d, got %d", i, val, file.LineIdx[i])
		}
	}
	if file.Flags&FileVirtual == 0 {
		t.Error("expected FileVirtual flag to be set")
	}
}

func TestResolveCountsCodePoints(t *testing.T) {
	fs := NewFileSet()

	// "é" занимает 2 байта, колонка считается в символах
	content := []byte("s = 'é'; ic(s)\nic(1)\n")
	id := fs.AddVirtual("utf8.py", content)

	start, _ := fs.Resolve(Span{File: id, Start: 10, End: 15})
	if start != (LineCol{Line: 1, Col: 10}) {
		t.Errorf("expected 1:10, got %+v", start)
	}

	start, _ = fs.Resolve(Span{File: id, Start: 16, End: 21})
	if start != (LineCol{Line: 2, Col: 1}) {
		t.Errorf("expected 2:1, got %+v", start)
	}
}

func TestResolveNewlineBelongsToItsLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("nl.py", []byte("ab\ncd"))

	start, end := fs.Resolve(Span{File: id, Start: 2, End: 3})
	if start != (LineCol{Line: 1, Col: 3}) {
		t.Errorf("expected newline at 1:3, got %+v", start)
	}
	if end != (LineCol{Line: 2, Col: 1}) {
		t.Errorf("expected end at 2:1, got %+v", end)
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("lines.py", []byte("first\r\nsecond\nthird"))
	file := fs.Get(id)

	tests := []struct {
		line uint32
		want string
	}{
		{0, ""},
		{1, "first"},
		{2, "second"},
		{3, "third"},
		{4, ""},
	}
	for _, tt := range tests {
		if got := file.GetLine(tt.line); got != tt.want {
			t.Errorf("GetLine(%d) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

// TestEdgeCases проверяет граничные случаи
func TestEdgeCases(t *testing.T) {
	fs := NewFileSet()

	empty := fs.Get(fs.AddVirtual("empty.py", []byte{}))
	if len(empty.LineIdx) != 0 {
		t.Errorf("expected empty LineIdx for empty file, got %v", empty.LineIdx)
	}
	if lc := empty.LineCol(0); lc != (LineCol{Line: 1, Col: 1}) {
		t.Errorf("expected 1:1 for empty file, got %+v", lc)
	}

	onlyNewline := fs.Get(fs.AddVirtual("only_newline.py", []byte("\n")))
	if len(onlyNewline.LineIdx) != 1 || onlyNewline.LineIdx[0] != 0 {
		t.Errorf("expected LineIdx [0], got %v", onlyNewline.LineIdx)
	}

	if fs.Get(FileID(42)) != nil {
		t.Error("expected nil for unknown FileID")
	}
}

func TestLoadKeepsLineEndings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crlf.py")
	if err := os.WriteFile(path, []byte("a = 1\r\nb = 2\r\n"), 0o600); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got := string(fs.Get(id).Content); got != "a = 1\r\nb = 2\r\n" {
		t.Errorf("expected CRLF to be preserved, got %q", got)
	}
}

func TestLoadBOMRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bom.py")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBFx = 1\n"), 0o600); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	file := fs.Get(id)
	if string(file.Content) != "x = 1\n" {
		t.Errorf("expected BOM to be stripped, got %q", string(file.Content))
	}
	if file.Flags&FileHadBOM == 0 {
		t.Error("expected FileHadBOM flag to be set")
	}
	if got := string(file.Encoded([]byte("y = 2\n"))); got != "\xEF\xBB\xBFy = 2\n" {
		t.Errorf("expected BOM to be restored, got %q", got)
	}
}

func TestLoadRejectsInvalidUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latin1.py")
	if err := os.WriteFile(path, []byte("name = '\xe9'\n"), 0o600); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	_, err := NewFileSet().Load(path)
	if !errors.Is(err, ErrInvalidUTF8) {
		t.Fatalf("expected ErrInvalidUTF8, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewFileSet().Load(filepath.Join(t.TempDir(), "missing.py"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}
