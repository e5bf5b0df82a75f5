package source

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// ErrInvalidUTF8 is returned by Load when a file is not valid UTF-8 text.
var ErrInvalidUTF8 = errors.New("invalid UTF-8")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// FileSet manages a collection of source files and provides global byte offset resolution.
type FileSet struct {
	files   []File
	index   map[string]FileID // path -> id
	baseDir string            // базовая директория для относительных путей
}

// NewFileSet creates a new empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		files:   make([]File, 0),
		index:   make(map[string]FileID),
		baseDir: "", // будет установлен явно или взят из os.Getwd
	}
}

// NewFileSetWithBase создаёт FileSet с заданной базовой директорией.
func NewFileSetWithBase(baseDir string) *FileSet {
	fs := NewFileSet()
	fs.baseDir = baseDir
	return fs
}

// SetBaseDir устанавливает базовую директорию для относительных путей.
func (fileSet *FileSet) SetBaseDir(dir string) {
	fileSet.baseDir = dir
}

// BaseDir возвращает текущую базовую директорию.
func (fileSet *FileSet) BaseDir() string {
	if fileSet.baseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			return wd
		}
	}
	return fileSet.baseDir
}

// Len returns the number of files (all versions) stored in the set.
func (fileSet *FileSet) Len() int {
	return len(fileSet.files)
}

// Add stores a file from decoded bytes, computes LineIdx and Hash, and returns a new FileID.
// It always creates a new FileID even if a file with the same path already exists.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	hash := sha256.Sum256(content)
	lineIdx := buildLineIndex(content)
	normalizedPath := normalizePath(path)

	lenFiles, err := safecast.Conv[uint32](len(fileSet.files))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	id := FileID(lenFiles)
	fileSet.files = append(fileSet.files, File{
		ID:      id,
		Path:    normalizedPath,
		Content: content,
		LineIdx: lineIdx,
		Hash:    hash,
		Flags:   flags,
	})
	// Всегда обновляем индекс на последнюю версию файла
	fileSet.index[normalizedPath] = id
	return id
}

// Load reads a file from disk, validates it as UTF-8, strips a BOM and calls Add.
// Line endings are kept untouched so that rewritten files stay byte-identical
// outside of the edited regions.
func (fileSet *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	content, err := decodeUTF8(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}

	content, hadBOM := removeBOM(content)

	flags := FileFlags(0)
	if hadBOM {
		flags |= FileHadBOM
	}
	return fileSet.Add(path, content, flags), nil
}

// AddVirtual adds a virtual file (stdin, test, or generated) with the FileVirtual flag.
func (fileSet *FileSet) AddVirtual(name string, content []byte) FileID {
	return fileSet.Add(name, content, FileVirtual)
}

// Get returns the file metadata for the given ID.
func (fileSet *FileSet) Get(id FileID) *File {
	if int(id) >= len(fileSet.files) {
		return nil
	}
	return &fileSet.files[id]
}

// GetLatest returns the latest file ID for the given path, if it exists.
func (fileSet *FileSet) GetLatest(path string) (FileID, bool) {
	id, ok := fileSet.index[normalizePath(path)]
	return id, ok
}

// GetByPath возвращает *File по пути, если был загружен в этот FileSet.
func (fileSet *FileSet) GetByPath(path string) (*File, bool) {
	if id, ok := fileSet.index[normalizePath(path)]; ok {
		return &fileSet.files[id], true
	}
	return nil, false
}

// Resolve converts a span into line and column positions.
func (fileSet *FileSet) Resolve(span Span) (start, end LineCol) {
	f := &fileSet.files[span.File]
	return f.LineCol(span.Start), f.LineCol(span.End)
}

// LineCol converts a byte offset into a 1-based line and a 1-based column
// counted in code points.
func (f *File) LineCol(off uint32) LineCol {
	return toLineCol(f.Content, f.LineIdx, off)
}

// LineStart returns the byte offset at which the given 1-based line begins.
func (f *File) LineStart(lineNum uint32) uint32 {
	if lineNum <= 1 {
		return 0
	}
	idx := int(lineNum) - 2
	if idx >= len(f.LineIdx) {
		return uint32(len(f.Content))
	}
	return f.LineIdx[idx] + 1
}

// GetLine возвращает строку с заданным номером (1-based) из файла без символа перевода строки.
// Если строка не существует, возвращает пустую строку.
func (f *File) GetLine(lineNum uint32) string {
	if lineNum == 0 {
		return ""
	}

	lenLineIdx, err := safecast.Conv[uint32](len(f.LineIdx))
	if err != nil {
		panic(fmt.Errorf("line index length overflow: %w", err))
	}
	lenContent, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}

	if lineNum-1 > lenLineIdx {
		return ""
	}
	start := f.LineStart(lineNum)
	end := lenContent
	if lineNum-1 < lenLineIdx {
		end = f.LineIdx[lineNum-1]
	}
	if start >= lenContent || start > end {
		return ""
	}

	line := f.Content[start:end]
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return string(line)
}

// Encoded returns content ready to be written back to disk: the BOM removed
// by Load is restored.
func (f *File) Encoded(content []byte) []byte {
	if f.Flags&FileHadBOM == 0 {
		return content
	}
	out := make([]byte, 0, len(utf8BOM)+len(content))
	out = append(out, utf8BOM...)
	return append(out, content...)
}

// FormatPath форматирует путь к файлу в зависимости от режима.
// mode: "absolute", "relative", "basename", "auto"
// baseDir: базовая директория для относительных путей (игнорируется для других режимов)
func (f *File) FormatPath(mode, baseDir string) string {
	switch mode {
	case "absolute":
		if abs, err := AbsolutePath(f.Path); err == nil {
			return abs
		}
		return f.Path

	case "relative":
		if baseDir == "" {
			if wd, err := os.Getwd(); err == nil {
				baseDir = wd
			}
		}
		if rel, err := RelativePath(f.Path, baseDir); err == nil {
			return rel
		}
		return f.Path

	case "basename":
		return BaseName(f.Path)

	case "auto":
		// Auto: если путь короткий или относительный - как есть, иначе basename
		if len(f.Path) < 40 || !filepath.IsAbs(f.Path) {
			return f.Path
		}
		return BaseName(f.Path)

	default:
		return f.Path
	}
}

func decodeUTF8(raw []byte) ([]byte, error) {
	out, _, err := transform.Bytes(encoding.UTF8Validator, raw)
	if err != nil {
		if errors.Is(err, encoding.ErrInvalidUTF8) {
			return nil, ErrInvalidUTF8
		}
		return nil, err
	}
	return out, nil
}
