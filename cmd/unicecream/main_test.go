package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// isolated returns a project dir with an empty settings file so that the
// search for pyproject.toml never leaves the test sandbox.
func isolated(t *testing.T) (dir, cfg string) {
	t.Helper()
	dir = t.TempDir()
	cfg = filepath.Join(dir, "pyproject.toml")
	writeFile(t, cfg, "[project]\nname = \"demo\"\n")
	return dir, cfg
}

func TestVersionFlag(t *testing.T) {
	out, _, err := execute(t, "--version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "unicecream 0.1.0\n" {
		t.Fatalf("version output = %q", out)
	}
}

func TestCheckReportsAndFails(t *testing.T) {
	dir, cfg := isolated(t)
	file := filepath.Join(dir, "app.py")
	writeFile(t, file, "from icecream import ic\nic(1)\n")

	out, _, err := execute(t, "--config", cfg, "--check", "--color", "off", dir)
	if !errors.Is(err, errFailed) {
		t.Fatalf("expected failure, got %v", err)
	}
	want := file + ":1:1: IC003 remove icecream from-import\n" +
		file + ":2:1: IC001 remove icecream call\n"
	if out != want {
		t.Fatalf("got:\n%s\nwant:\n%s", out, want)
	}

	data, _ := os.ReadFile(file)
	if string(data) != "from icecream import ic\nic(1)\n" {
		t.Fatalf("check mode must not modify files, got %q", data)
	}
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestOutputWriteFailureIsReturned(t *testing.T) {
	dir, cfg := isolated(t)
	file := filepath.Join(dir, "app.py")
	writeFile(t, file, "import icecream\nic(1)\n")

	cmd := newRootCmd()
	cmd.SetOut(brokenWriter{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", cfg, "--check", "--color", "off", dir})
	err := cmd.Execute()
	if err == nil || errors.Is(err, errFailed) {
		t.Fatalf("expected write error, got %v", err)
	}
	if !strings.Contains(err.Error(), "broken pipe") {
		t.Fatalf("error %q does not name the write failure", err)
	}
}

func TestCheckSelectIgnoreFlags(t *testing.T) {
	dir, cfg := isolated(t)
	writeFile(t, filepath.Join(dir, "app.py"), "import icecream\nic(1)\n")

	out, _, err := execute(t, "--config", cfg, "--check", "--color", "off", "--select", "IC001,IC002", "--ignore", "IC002", dir)
	if !errors.Is(err, errFailed) {
		t.Fatalf("expected failure, got %v", err)
	}
	if strings.Contains(out, "IC002") || !strings.Contains(out, "IC001") {
		t.Fatalf("unexpected report %q", out)
	}

	_, _, err = execute(t, "--config", cfg, "--check", "--ignore", "IC001", "--ignore", "IC002", dir)
	if err != nil {
		t.Fatalf("everything ignored must pass, got %v", err)
	}
}

func TestFixRewritesFiles(t *testing.T) {
	dir, cfg := isolated(t)
	file := filepath.Join(dir, "pkg", "mod.py")
	writeFile(t, file, "from icecream import ic\nx = ic(1)\n")

	out, _, err := execute(t, "--config", cfg, "--color", "off", dir)
	if err != nil {
		t.Fatalf("fix must succeed, got %v", err)
	}
	if out != "fixed: "+file+"\n" {
		t.Fatalf("unexpected output %q", out)
	}
	data, _ := os.ReadFile(file)
	if string(data) != "x = 1\n" {
		t.Fatalf("fixed content = %q", data)
	}

	// второй прогон ничего не меняет
	out, _, err = execute(t, "--config", cfg, dir)
	if err != nil || out != "" {
		t.Fatalf("second run: out=%q err=%v", out, err)
	}
}

func TestFixQuiet(t *testing.T) {
	dir, cfg := isolated(t)
	writeFile(t, filepath.Join(dir, "a.py"), "ic()\n")

	out, _, err := execute(t, "--config", cfg, "--quiet", dir)
	if err != nil || out != "" {
		t.Fatalf("quiet run: out=%q err=%v", out, err)
	}
}

func TestDiffDoesNotWrite(t *testing.T) {
	dir, cfg := isolated(t)
	file := filepath.Join(dir, "a.py")
	writeFile(t, file, "import icecream\ny = 2\n")

	out, _, err := execute(t, "--config", cfg, "--diff", "--color", "off", dir)
	if !errors.Is(err, errFailed) {
		t.Fatalf("pending changes must fail, got %v", err)
	}
	if !strings.Contains(out, "-import icecream") || !strings.Contains(out, " y = 2") {
		t.Fatalf("unexpected diff %q", out)
	}
	data, _ := os.ReadFile(file)
	if string(data) != "import icecream\ny = 2\n" {
		t.Fatalf("diff mode must not write, got %q", data)
	}
}

func TestCheckAndDiffExclusive(t *testing.T) {
	dir, cfg := isolated(t)
	_, _, err := execute(t, "--config", cfg, "--check", "--diff", dir)
	if err == nil || errors.Is(err, errFailed) {
		t.Fatalf("expected flag error, got %v", err)
	}
}

func TestNoPythonFiles(t *testing.T) {
	dir, cfg := isolated(t)
	writeFile(t, filepath.Join(dir, "notes.txt"), "ic(1)\n")

	out, _, err := execute(t, "--config", cfg, dir)
	if !errors.Is(err, errFailed) {
		t.Fatalf("expected failure, got %v", err)
	}
	if out != "No python files found\n" {
		t.Fatalf("unexpected output %q", out)
	}

	out, _, err = execute(t, "--config", cfg, filepath.Join(dir, "missing"))
	if !errors.Is(err, errFailed) || out != "No python files found\n" {
		t.Fatalf("missing target: out=%q err=%v", out, err)
	}
}

func TestExplicitFilesReplaceWalk(t *testing.T) {
	dir, cfg := isolated(t)
	picked := filepath.Join(dir, "picked.py")
	other := filepath.Join(dir, "other.py")
	writeFile(t, picked, "ic(1)\n")
	writeFile(t, other, "ic(2)\n")

	out, _, err := execute(t, "--config", cfg, "--check", "--color", "off", ".", picked, filepath.Join(dir, "gone.py"))
	if !errors.Is(err, errFailed) {
		t.Fatalf("expected failure, got %v", err)
	}
	if !strings.Contains(out, picked) || strings.Contains(out, other) {
		t.Fatalf("only the listed file must be checked, got %q", out)
	}
}

func TestConfigExclude(t *testing.T) {
	dir, _ := isolated(t)
	cfg := filepath.Join(dir, "settings.toml")
	writeFile(t, cfg, "[tool.unicecream]\nexclude = [\"vendor\"]\n")
	writeFile(t, filepath.Join(dir, "vendor", "lib.py"), "ic(1)\n")
	writeFile(t, filepath.Join(dir, "app.py"), "x = 1\n")

	_, _, err := execute(t, "--config", cfg, "--check", dir)
	if err != nil {
		t.Fatalf("excluded violations must not fail the run, got %v", err)
	}
}

func TestJSONOutput(t *testing.T) {
	dir, cfg := isolated(t)
	writeFile(t, filepath.Join(dir, "a.py"), "ic(1)\n")

	out, _, err := execute(t, "--config", cfg, "--check", "--output-format", "json", dir)
	if !errors.Is(err, errFailed) {
		t.Fatalf("expected failure, got %v", err)
	}
	if !strings.Contains(out, `"code": "IC001"`) || !strings.Contains(out, `"count": 1`) {
		t.Fatalf("unexpected json %q", out)
	}
}

func TestTimingsAndTrace(t *testing.T) {
	dir, cfg := isolated(t)
	writeFile(t, filepath.Join(dir, "a.py"), "x = 1\n")

	_, errOut, err := execute(t, "--config", cfg, "--check", "--timings", "--trace", "-", "--trace-level", "detail", dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"timings:", "parse", "process"} {
		if !strings.Contains(errOut, want) {
			t.Fatalf("stderr lacks %q:\n%s", want, errOut)
		}
	}
}

func TestResolveColor(t *testing.T) {
	var buf bytes.Buffer
	if on, err := resolveColor("auto", &buf); err != nil || on {
		t.Fatalf("auto on a buffer must disable colour: %v %v", on, err)
	}
	if on, _ := resolveColor("on", &buf); !on {
		t.Fatalf("on must enable colour")
	}
	if _, err := resolveColor("rainbow", &buf); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestCacheDirFlag(t *testing.T) {
	dir, cfg := isolated(t)
	file := filepath.Join(dir, "a.py")
	writeFile(t, file, "ic(1)\n")
	cacheDir := filepath.Join(t.TempDir(), "cache")

	for i := 0; i < 2; i++ {
		out, _, err := execute(t, "--config", cfg, "--check", "--color", "off", "--cache-dir", cacheDir, dir)
		if !errors.Is(err, errFailed) {
			t.Fatalf("run %d: expected failure, got %v", i, err)
		}
		if out != file+":1:1: IC001 remove icecream call\n" {
			t.Fatalf("run %d: unexpected output %q", i, out)
		}
	}
	entries, err := os.ReadDir(filepath.Join(cacheDir, "files"))
	if err != nil || len(entries) == 0 {
		t.Fatalf("cache must hold entries: %v", err)
	}
}

func TestProfileFlags(t *testing.T) {
	dir, cfg := isolated(t)
	writeFile(t, filepath.Join(dir, "a.py"), "x = 1\n")
	cpu := filepath.Join(t.TempDir(), "cpu.out")

	if _, _, err := execute(t, "--config", cfg, "--check", "--cpu-profile", cpu, dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info, err := os.Stat(cpu); err != nil || info.Size() == 0 {
		t.Fatalf("cpu profile missing: %v", err)
	}
}
