package driver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"unicecream/internal/trace"
)

// ErrNoFiles is returned when a target yields nothing to process.
var ErrNoFiles = errors.New("no python files found")

// PythonExt is the only extension picked up by directory walks and
// explicit file lists.
const PythonExt = ".py"

// Excluded reports whether any segment of path equals one of the excluded
// names. "." and ".." never match.
func Excluded(path string, exclude []string) bool {
	if len(exclude) == 0 {
		return false
	}
	for _, seg := range strings.Split(filepath.ToSlash(filepath.Clean(path)), "/") {
		if seg == "" || seg == "." || seg == ".." {
			continue
		}
		for _, ex := range exclude {
			if seg == ex {
				return true
			}
		}
	}
	return false
}

// Discover resolves what to process. An explicit file list (pre-commit
// integration) replaces the walk of target: its entries are kept in order
// when they exist, are regular .py files and are not excluded. Otherwise a
// directory target is walked for .py files and a file target is used as is.
// Subdirectories that cannot be read are traced as errors and skipped.
func Discover(ctx context.Context, target string, files, exclude []string) ([]string, error) {
	if len(files) > 0 {
		return filterExplicit(files, exclude), nil
	}

	info, err := os.Stat(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", target, ErrNoFiles)
		}
		return nil, fmt.Errorf("stat %s: %w", target, err)
	}
	if !info.IsDir() {
		return []string{target}, nil
	}

	found, err := listPyFiles(ctx, target, exclude)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%s: %w", target, ErrNoFiles)
	}
	return found, nil
}

// listPyFiles возвращает отсортированный список всех *.py файлов в директории,
// не спускаясь в исключённые каталоги.
func listPyFiles(ctx context.Context, dir string, exclude []string) ([]string, error) {
	var files []string
	tracer := trace.FromContext(ctx)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir || d == nil || !d.IsDir() {
				return err
			}
			trace.Error(tracer, trace.ScopeDriver, "walk", 0, err)
			return filepath.SkipDir
		}
		if Excluded(path, exclude) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && strings.HasSuffix(path, PythonExt) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}

	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

func filterExplicit(files, exclude []string) []string {
	seen := make(map[string]struct{}, len(files))
	out := make([]string, 0, len(files))
	for _, p := range files {
		if filepath.Ext(p) != PythonExt || Excluded(p, exclude) {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		info, err := os.Stat(p)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
