package driver

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"unicecream/internal/cst"
	"unicecream/internal/diag"
	"unicecream/internal/fix"
	"unicecream/internal/observ"
	"unicecream/internal/rules"
	"unicecream/internal/source"
	"unicecream/internal/trace"
)

// Mode selects what happens to each file.
type Mode uint8

const (
	// ModeFix rewrites files in place.
	ModeFix Mode = iota
	// ModeCheck only reports violations.
	ModeCheck
	// ModeDiff computes fixes without writing them.
	ModeDiff
)

// String returns the string representation of Mode.
func (m Mode) String() string {
	switch m {
	case ModeFix:
		return "fix"
	case ModeCheck:
		return "check"
	case ModeDiff:
		return "diff"
	default:
		return "unknown"
	}
}

// Options configures a run.
type Options struct {
	Mode  Mode
	Rules []rules.Rule
	// Timer, when set, accumulates per-pass durations.
	Timer *observ.Timer
	// Cache, when set, skips files whose outcome is already known.
	Cache *Cache
	// OnFile, when set, is called after each file in processing order.
	OnFile func(*FileResult)
}

// FileResult is the outcome for one file.
type FileResult struct {
	Path       string
	File       *source.File
	Violations []diag.Violation
	// Changed is set when a fix was written (ModeFix) or would be (ModeDiff).
	Changed  bool
	Original []byte
	Fixed    []byte
	// Skipped explains why a file was treated as clean (syntax error, failed rewrite).
	Skipped string
	// Cached is set when the outcome came from the cache.
	Cached bool
	Err    error
}

// Result aggregates a run.
type Result struct {
	Mode       Mode
	FileSet    *source.FileSet
	Files      []*FileResult
	Violations int
	Changed    int
	Skipped    int
	Cached     int
	Errors     int
}

// Failed reports whether the run should exit with a failure status:
// violations in check mode, pending changes in diff mode, or any I/O error.
func (r *Result) Failed() bool {
	if r == nil {
		return true
	}
	if r.Errors > 0 {
		return true
	}
	switch r.Mode {
	case ModeCheck:
		return r.Violations > 0
	case ModeDiff:
		return r.Changed > 0
	}
	return false
}

// Run processes paths in order. It only returns an error when ctx is done;
// per-file failures are recorded on the results.
func Run(ctx context.Context, paths []string, opts Options) (*Result, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "process", 0)
	span.WithExtra("mode", opts.Mode.String()).WithExtra("files", strconv.Itoa(len(paths)))

	res := &Result{
		Mode:    opts.Mode,
		FileSet: source.NewFileSet(),
		Files:   make([]*FileResult, 0, len(paths)),
	}
	codes := rules.Codes(opts.Rules)

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			span.End("canceled")
			return res, err
		}
		fr := processFile(ctx, res.FileSet, path, codes, opts, span.ID())
		res.add(fr)
		if opts.OnFile != nil {
			opts.OnFile(fr)
		}
	}

	span.WithExtra("violations", strconv.Itoa(res.Violations)).
		WithExtra("changed", strconv.Itoa(res.Changed)).
		WithExtra("errors", strconv.Itoa(res.Errors))
	span.End("")
	return res, nil
}

func (r *Result) add(fr *FileResult) {
	r.Files = append(r.Files, fr)
	r.Violations += len(fr.Violations)
	if fr.Changed {
		r.Changed++
	}
	if fr.Skipped != "" {
		r.Skipped++
	}
	if fr.Cached {
		r.Cached++
	}
	if fr.Err != nil {
		r.Errors++
	}
}

func processFile(ctx context.Context, fs *source.FileSet, path string, codes []diag.Code, opts Options, parent uint64) *FileResult {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeFile, path, parent)
	fr := &FileResult{Path: path}
	defer func() {
		span.WithExtra("violations", strconv.Itoa(len(fr.Violations))).
			WithExtra("changed", strconv.FormatBool(fr.Changed))
		span.End(fr.Skipped)
	}()

	pass := func(name string) func() {
		p := trace.Begin(tracer, trace.ScopePass, name, span.ID())
		tok := opts.Timer.Begin(name)
		return func() {
			opts.Timer.End(tok, "")
			p.End("")
		}
	}

	done := pass("read")
	id, err := fs.Load(path)
	done()
	if err != nil {
		fr.Err = err
		trace.Error(tracer, trace.ScopeFile, "read", span.ID(), err)
		return fr
	}
	fr.File = fs.Get(id)

	key := cacheKey(fr.File.Hash, opts.Mode, codes)
	if opts.Cache != nil {
		done = pass("cache")
		hit, err := opts.Cache.restore(key, fr, opts.Mode)
		done()
		if err != nil {
			trace.Error(tracer, trace.ScopeFile, "cache.read", span.ID(), err)
		}
		if hit {
			trace.Point(tracer, trace.ScopeFile, "cached", span.ID(), "")
			return fr
		}
	}

	switch opts.Mode {
	case ModeCheck:
		check(ctx, fr, opts.Rules, pass)
	default:
		rewrite(ctx, fr, codes, opts.Mode, pass)
	}
	if opts.Cache != nil {
		if err := opts.Cache.record(key, fr, opts.Mode); err != nil {
			trace.Error(tracer, trace.ScopeFile, "cache.write", span.ID(), err)
		}
	}
	if fr.Err != nil {
		trace.Error(tracer, trace.ScopeFile, "failed", span.ID(), fr.Err)
	} else if fr.Skipped != "" {
		trace.Point(tracer, trace.ScopeFile, "skipped", span.ID(), fr.Skipped)
	}
	return fr
}

func check(ctx context.Context, fr *FileResult, active []rules.Rule, pass func(string) func()) {
	done := pass("parse")
	tree, err := cst.Parse(ctx, fr.File)
	done()
	if err != nil {
		skip(fr, err)
		return
	}

	done = pass("rules")
	bag := rules.Collect(tree, active)
	done()
	fr.Violations = bag.Items()
}

func rewrite(ctx context.Context, fr *FileResult, codes []diag.Code, mode Mode, pass func(string) func()) {
	done := pass("fix")
	res, err := fix.Rewrite(ctx, fr.File, codes)
	done()
	if err != nil {
		skip(fr, err)
		return
	}
	if !res.Changed {
		return
	}

	fr.Changed = true
	fr.Original = res.Original
	fr.Fixed = res.Content
	if mode != ModeFix {
		return
	}

	done = pass("write")
	err = writeAtomic(fr.Path, fr.File.Encoded(res.Content))
	done()
	if err != nil {
		fr.Changed = false
		fr.Err = fmt.Errorf("%s: %w", fr.Path, err)
	}
}

// skip records a failure that leaves the file untouched and clean.
// Context errors are kept as real errors.
func skip(fr *FileResult, err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		fr.Err = err
		return
	}
	fr.Skipped = err.Error()
}
