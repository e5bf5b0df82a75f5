package driver_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unicecream/internal/driver"
	"unicecream/internal/observ"
	"unicecream/internal/rules"
	"unicecream/internal/trace"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestDiscoverWalksSortsAndExcludes(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"b.py":                 "",
		"a.py":                 "",
		"pkg/c.py":             "",
		"pkg/notes.txt":        "",
		".venv/lib/site.py":    "",
		"pkg/__pycache__/c.py": "",
		"build/gen.py":         "",
		"pkg/building/keep.py": "",
		"pkg/dist_tools/ok.py": "",
	})

	got, err := driver.Discover(context.Background(), root, nil, []string{".venv", "__pycache__", "build", "dist"})
	require.NoError(t, err)

	want := []string{
		filepath.Join(root, "a.py"),
		filepath.Join(root, "b.py"),
		filepath.Join(root, "pkg", "building", "keep.py"),
		filepath.Join(root, "pkg", "c.py"),
		filepath.Join(root, "pkg", "dist_tools", "ok.py"),
	}
	assert.Equal(t, want, got)
}

func TestDiscoverSingleFileAndMissingTarget(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"script.py": "x = 1\n", "empty/readme.md": ""})

	got, err := driver.Discover(context.Background(), filepath.Join(root, "script.py"), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "script.py")}, got)

	_, err = driver.Discover(context.Background(), filepath.Join(root, "nope"), nil, nil)
	assert.ErrorIs(t, err, driver.ErrNoFiles)

	_, err = driver.Discover(context.Background(), filepath.Join(root, "empty"), nil, nil)
	assert.ErrorIs(t, err, driver.ErrNoFiles)
}

func TestDiscoverSkipsUnreadableDirectory(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced here")
	}
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.py": "", "locked/b.py": "", "open/c.py": ""})
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	ring := trace.NewRingTracer(16, trace.LevelError)
	ctx := trace.WithTracer(context.Background(), ring)
	got, err := driver.Discover(ctx, root, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a.py"), filepath.Join(root, "open", "c.py")}, got)

	var walkErrs int
	for _, ev := range ring.Snapshot() {
		if ev.Error && ev.Name == "walk" {
			walkErrs++
			assert.Contains(t, ev.Detail, "locked")
		}
	}
	assert.Equal(t, 1, walkErrs)
}

func TestDiscoverExplicitFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.py":      "",
		"b.txt":     "",
		"dist/c.py": "",
		"pkg/d.py":  "",
	})
	a := filepath.Join(root, "a.py")
	d := filepath.Join(root, "pkg", "d.py")

	got, err := driver.Discover(context.Background(), "ignored-target", []string{
		d,
		filepath.Join(root, "b.txt"),
		filepath.Join(root, "missing.py"),
		filepath.Join(root, "dist", "c.py"),
		a,
		d,
	}, []string{"dist"})
	require.NoError(t, err)
	assert.Equal(t, []string{d, a}, got)
}

func TestExcluded(t *testing.T) {
	ex := []string{".venv", "build"}
	assert.True(t, driver.Excluded(".venv/x.py", ex))
	assert.True(t, driver.Excluded("src/build/x.py", ex))
	assert.False(t, driver.Excluded("src/builder/x.py", ex))
	assert.False(t, driver.Excluded("./x.py", ex))
	assert.False(t, driver.Excluded("build/x.py", nil))
}

func TestRunCheck(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"dirty.py":  "from icecream import ic\n\nic(1)\n",
		"clean.py":  "print('ok')\n",
		"broken.py": "def f(:\n    ic(1)\n",
	})
	paths, err := driver.Discover(context.Background(), root, nil, nil)
	require.NoError(t, err)

	var seen []string
	res, err := driver.Run(context.Background(), paths, driver.Options{
		Mode:   driver.ModeCheck,
		Rules:  rules.All(),
		OnFile: func(fr *driver.FileResult) { seen = append(seen, filepath.Base(fr.Path)) },
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"broken.py", "clean.py", "dirty.py"}, seen)
	assert.Equal(t, 2, res.Violations)
	assert.Equal(t, 1, res.Skipped)
	assert.Zero(t, res.Errors)
	assert.True(t, res.Failed())

	dirty := res.Files[2]
	require.Len(t, dirty.Violations, 2)
	assert.Equal(t, "IC003", dirty.Violations[0].Code.ID())
	assert.Equal(t, 3, dirty.Violations[1].Line)
	assert.Equal(t, "from icecream import ic\n\nic(1)\n", read(t, filepath.Join(root, "dirty.py")), "check must not write")
}

func TestRunCheckSelectIgnore(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"m.py": "import icecream\nic(1)\n"})
	paths := []string{filepath.Join(root, "m.py")}

	res, err := driver.Run(context.Background(), paths, driver.Options{
		Mode:  driver.ModeCheck,
		Rules: rules.Select([]string{"IC001"}, nil),
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.Violations)
	assert.Equal(t, "IC001", res.Files[0].Violations[0].Code.ID())

	res, err = driver.Run(context.Background(), paths, driver.Options{
		Mode:  driver.ModeCheck,
		Rules: rules.Select([]string{"IC001"}, []string{"IC001"}),
	})
	require.NoError(t, err)
	assert.Zero(t, res.Violations)
	assert.False(t, res.Failed())
}

func TestRunFixWritesAndIsIdempotent(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"app.py":   "import os, icecream, sys\n\nx = ic(os.sep)\nic(x, sys)\n",
		"clean.py": "print(1)\n",
	})
	app := filepath.Join(root, "app.py")
	require.NoError(t, os.Chmod(app, 0o755))
	paths, err := driver.Discover(context.Background(), root, nil, nil)
	require.NoError(t, err)

	timer := observ.NewTimer()
	res, err := driver.Run(context.Background(), paths, driver.Options{Mode: driver.ModeFix, Rules: rules.All(), Timer: timer})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Changed)
	assert.False(t, res.Failed())
	assert.Equal(t, "import os, sys\n\nx = os.sep\n", read(t, app))
	assert.Equal(t, "print(1)\n", read(t, filepath.Join(root, "clean.py")))
	assert.NotEmpty(t, timer.Report().Phases)

	if runtime.GOOS != "windows" {
		info, err := os.Stat(app)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
	}

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "temp files must not be left behind")

	res, err = driver.Run(context.Background(), paths, driver.Options{Mode: driver.ModeFix, Rules: rules.All()})
	require.NoError(t, err)
	assert.Zero(t, res.Changed)

	res, err = driver.Run(context.Background(), paths, driver.Options{Mode: driver.ModeCheck, Rules: rules.All()})
	require.NoError(t, err)
	assert.Zero(t, res.Violations)
}

func TestRunFixRestoresBOM(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "bom.py")
	require.NoError(t, os.WriteFile(path, []byte("\xEF\xBB\xBFimport icecream\r\nx = 1\r\n"), 0o644))

	res, err := driver.Run(context.Background(), []string{path}, driver.Options{Mode: driver.ModeFix, Rules: rules.All()})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Changed)
	assert.Equal(t, "\xEF\xBB\xBFx = 1\r\n", read(t, path))
}

func TestRunDiffDoesNotWrite(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "m.py")
	src := "ic(1, 2)\ny = 2\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	res, err := driver.Run(context.Background(), []string{path}, driver.Options{Mode: driver.ModeDiff, Rules: rules.All()})
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	fr := res.Files[0]
	assert.True(t, fr.Changed)
	assert.Equal(t, src, string(fr.Original))
	assert.Equal(t, "y = 2\n", string(fr.Fixed))
	assert.Equal(t, src, read(t, path))
	assert.True(t, res.Failed())
}

func TestRunFixHonoursSelection(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "m.py")
	require.NoError(t, os.WriteFile(path, []byte("import icecream\nx = ic(1)\n"), 0o644))

	_, err := driver.Run(context.Background(), []string{path}, driver.Options{
		Mode:  driver.ModeFix,
		Rules: rules.Select(nil, []string{"IC002"}),
	})
	require.NoError(t, err)
	assert.Equal(t, "import icecream\nx = 1\n", read(t, path))
}

func TestRunRecordsPerFileErrors(t *testing.T) {
	root := t.TempDir()
	bad := filepath.Join(root, "latin1.py")
	good := filepath.Join(root, "good.py")
	require.NoError(t, os.WriteFile(bad, []byte("s = '\xe9'\nic(s)\n"), 0o644))
	require.NoError(t, os.WriteFile(good, []byte("ic()\n"), 0o644))

	res, err := driver.Run(context.Background(), []string{bad, filepath.Join(root, "gone.py"), good}, driver.Options{
		Mode:  driver.ModeCheck,
		Rules: rules.All(),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Errors)
	assert.Equal(t, 1, res.Violations, "run continues after failing files")
	assert.True(t, res.Failed())
}

func TestRunTracesFiles(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "m.py")
	require.NoError(t, os.WriteFile(path, []byte("def f(:\n"), 0o644))

	ring := trace.NewRingTracer(64, trace.LevelDebug)
	ctx := trace.WithTracer(context.Background(), ring)
	_, err := driver.Run(ctx, []string{path}, driver.Options{Mode: driver.ModeCheck, Rules: rules.All()})
	require.NoError(t, err)

	var names []string
	for _, ev := range ring.Snapshot() {
		if ev.Kind == trace.KindSpanBegin || ev.Kind == trace.KindPoint {
			names = append(names, ev.Name)
		}
	}
	assert.Equal(t, []string{"process", path, "read", "parse", "skipped"}, names)
}

func TestRunStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := driver.Run(ctx, []string{"a.py"}, driver.Options{Mode: driver.ModeCheck})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, res.Files)
}
