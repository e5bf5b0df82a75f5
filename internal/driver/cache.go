package driver

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"unicecream/internal/diag"
	"unicecream/internal/source"
	"unicecream/internal/version"
)

// Current schema version - increment when cacheEntry format changes
const cacheSchemaVersion uint16 = 1

// Cache хранит результаты проверки файлов по хешу содержимого на диске.
// Ключ учитывает версию, режим и набор правил, поэтому инвалидация не нужна.
// Thread-safe for concurrent access.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// cacheEntry is the stored outcome for one (content, rules, mode) key.
type cacheEntry struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	// Check mode: violations in report order.
	Violations []cachedViolation

	// Fix/diff mode: the rewrite leaves the content unchanged.
	Clean bool
}

type cachedViolation struct {
	Line   int
	Column int
	Code   uint8
	Start  uint32
	End    uint32
}

// DefaultCacheDir returns $XDG_CACHE_HOME/unicecream or ~/.cache/unicecream.
func DefaultCacheDir() (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, version.Tool), nil
}

// OpenCache initializes a cache rooted at dir, DefaultCacheDir when empty.
func OpenCache(dir string) (*Cache, error) {
	if dir == "" {
		d, err := DefaultCacheDir()
		if err != nil {
			return nil, fmt.Errorf("cache dir: %w", err)
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache dir: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *Cache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

// cacheKey derives the key of content checked in mode with codes.
func cacheKey(hash [32]byte, mode Mode, codes []diag.Code) [32]byte {
	if mode == ModeDiff {
		// diff и fix дают одинаковый результат переписывания
		mode = ModeFix
	}
	h := sha256.New()
	h.Write([]byte(version.Version))
	h.Write([]byte{0, byte(mode)})
	for _, c := range codes {
		h.Write([]byte{byte(c)})
	}
	var schema [2]byte
	binary.LittleEndian.PutUint16(schema[:], cacheSchemaVersion)
	h.Write(schema[:])
	h.Write(hash[:])
	var key [32]byte
	copy(key[:], h.Sum(nil))
	return key
}

func (c *Cache) pathFor(key [32]byte) string {
	hexKey := hex.EncodeToString(key[:])
	// подкаталог по первому байту, чтобы не держать всё в одной папке
	return filepath.Join(c.dir, "files", hexKey[:2], hexKey+".mp")
}

// put serializes and writes an entry to the disk cache.
func (c *Cache) put(key [32]byte, entry *cacheEntry) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entry.Schema = cacheSchemaVersion
	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err = msgpack.NewEncoder(f).Encode(entry); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// get reads an entry. A missing or foreign-schema entry is a miss.
func (c *Cache) get(key [32]byte) (*cacheEntry, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var entry cacheEntry
	if err := msgpack.NewDecoder(f).Decode(&entry); err != nil {
		return nil, false, fmt.Errorf("decode cache entry: %w", err)
	}
	if entry.Schema != cacheSchemaVersion {
		return nil, false, nil
	}
	return &entry, true, nil
}

// DropAll removes every entry.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// переименуем каталог и удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

func storeViolations(items []diag.Violation) []cachedViolation {
	out := make([]cachedViolation, 0, len(items))
	for _, v := range items {
		out = append(out, cachedViolation{
			Line:   v.Line,
			Column: v.Column,
			Code:   uint8(v.Code),
			Start:  v.Primary.Start,
			End:    v.Primary.End,
		})
	}
	return out
}

func loadViolations(file *source.File, items []cachedViolation) []diag.Violation {
	out := make([]diag.Violation, 0, len(items))
	for _, cv := range items {
		code := diag.Code(cv.Code)
		if !code.Known() {
			continue
		}
		out = append(out, diag.Violation{
			Line:    cv.Line,
			Column:  cv.Column,
			Code:    code,
			Message: code.Title(),
			Primary: source.Span{File: file.ID, Start: cv.Start, End: cv.End},
		})
	}
	return out
}

// restore fills fr from the cache. It reports false on a miss.
func (c *Cache) restore(key [32]byte, fr *FileResult, mode Mode) (bool, error) {
	entry, ok, err := c.get(key)
	if err != nil || !ok {
		return false, err
	}
	switch mode {
	case ModeCheck:
		fr.Violations = loadViolations(fr.File, entry.Violations)
	default:
		if !entry.Clean {
			return false, nil
		}
	}
	fr.Cached = true
	return true, nil
}

// record stores the outcome of fr. Only unchanged rewrites are stored for
// fix and diff runs.
func (c *Cache) record(key [32]byte, fr *FileResult, mode Mode) error {
	if fr.Err != nil {
		return nil
	}
	switch mode {
	case ModeCheck:
		return c.put(key, &cacheEntry{Violations: storeViolations(fr.Violations)})
	default:
		if fr.Changed {
			return nil
		}
		return c.put(key, &cacheEntry{Clean: true})
	}
}
