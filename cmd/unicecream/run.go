package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"unicecream/internal/config"
	"unicecream/internal/diagfmt"
	"unicecream/internal/driver"
	"unicecream/internal/observ"
	"unicecream/internal/rules"
	"unicecream/internal/trace"
)

// runOptions собирает значения флагов одного запуска.
type runOptions struct {
	mode       driver.Mode
	selects    []string
	ignores    []string
	exclude    []string
	configPath string
	json       bool
	quiet      bool
	timings    bool
	progress   bool
	cache      bool
	cacheDir   string
	pretty     diagfmt.PrettyOpts
}

func readOptions(cmd *cobra.Command) (runOptions, error) {
	var opts runOptions
	flags := cmd.Flags()

	check, err := flags.GetBool("check")
	if err != nil {
		return opts, err
	}
	diff, err := flags.GetBool("diff")
	if err != nil {
		return opts, err
	}
	switch {
	case check:
		opts.mode = driver.ModeCheck
	case diff:
		opts.mode = driver.ModeDiff
	default:
		opts.mode = driver.ModeFix
	}

	if opts.selects, err = flags.GetStringSlice("select"); err != nil {
		return opts, err
	}
	if opts.ignores, err = flags.GetStringSlice("ignore"); err != nil {
		return opts, err
	}
	if opts.exclude, err = flags.GetStringSlice("exclude"); err != nil {
		return opts, err
	}
	if opts.configPath, err = flags.GetString("config"); err != nil {
		return opts, err
	}
	if opts.pretty.ShowSource, err = flags.GetBool("show-source"); err != nil {
		return opts, err
	}

	pathMode, err := flags.GetString("path-mode")
	if err != nil {
		return opts, err
	}
	if opts.pretty.PathMode, err = diagfmt.ParsePathMode(pathMode); err != nil {
		return opts, err
	}

	format, err := flags.GetString("output-format")
	if err != nil {
		return opts, err
	}
	switch strings.ToLower(format) {
	case "text":
	case "json":
		opts.json = true
	default:
		return opts, fmt.Errorf("unsupported output format %q (must be text or json)", format)
	}
	if opts.json && opts.mode == driver.ModeDiff {
		return opts, fmt.Errorf("--output-format json cannot be combined with --diff")
	}

	if opts.progress, err = flags.GetBool("progress"); err != nil {
		return opts, err
	}
	if opts.cache, err = flags.GetBool("cache"); err != nil {
		return opts, err
	}
	if opts.cacheDir, err = flags.GetString("cache-dir"); err != nil {
		return opts, err
	}
	if opts.cacheDir != "" {
		opts.cache = true
	}

	root := cmd.Root().PersistentFlags()
	if opts.quiet, err = root.GetBool("quiet"); err != nil {
		return opts, err
	}
	if opts.timings, err = root.GetBool("timings"); err != nil {
		return opts, err
	}
	colorFlag, err := root.GetString("color")
	if err != nil {
		return opts, err
	}
	if opts.pretty.Color, err = resolveColor(colorFlag, cmd.OutOrStdout()); err != nil {
		return opts, err
	}
	// живой вид только для терминала и текстового отчёта
	if f, ok := cmd.OutOrStdout().(*os.File); !ok || !isTerminal(f) || opts.json {
		opts.progress = false
	}
	return opts, nil
}

// resolveColor решает, раскрашивать ли вывод в out.
func resolveColor(mode string, out io.Writer) (bool, error) {
	switch strings.ToLower(mode) {
	case "on", "always":
		return true, nil
	case "off", "never":
		return false, nil
	case "auto", "":
		f, ok := out.(*os.File)
		if !ok || os.Getenv("NO_COLOR") != "" {
			return false, nil
		}
		return isTerminal(f), nil
	default:
		return false, fmt.Errorf("invalid color mode: %q (expected: auto|on|off)", mode)
	}
}

func runRoot(cmd *cobra.Command, args []string) error {
	opts, err := readOptions(cmd)
	if err != nil {
		return err
	}

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	tracer := trace.FromContext(ctx)
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	var timer *observ.Timer
	if opts.timings {
		timer = observ.NewTimer()
	}

	cfg, cfgErr := config.Discover(opts.configPath, ".")
	if cfgErr != nil {
		trace.Point(tracer, trace.ScopeFile, "config.fallback", 0, cfgErr.Error())
	}
	cfg = cfg.Override(opts.selects, opts.ignores, opts.exclude)
	active := rules.Select(cfg.Select, cfg.Ignore)

	discoverTok := timer.Begin("discover")
	paths, err := driver.Discover(ctx, args[0], args[1:], cfg.Exclude)
	timer.End(discoverTok, "")
	if err != nil {
		if errors.Is(err, driver.ErrNoFiles) {
			fmt.Fprintln(stdout, "No python files found")
			return errFailed
		}
		return err
	}

	var cache *driver.Cache
	if opts.cache {
		if cache, err = driver.OpenCache(opts.cacheDir); err != nil {
			// без кеша просто медленнее
			trace.Error(tracer, trace.ScopeDriver, "cache.open", 0, err)
			cache = nil
		}
	}

	var report *diagfmt.JSONReport
	if opts.json {
		report = diagfmt.NewJSONReport(opts.pretty)
	}

	// first failed write to the terminal; the run goes on and reports it
	var outErr error
	runOpts := driver.Options{
		Mode:  opts.mode,
		Rules: active,
		Timer: timer,
		Cache: cache,
		OnFile: func(fr *driver.FileResult) {
			if report != nil {
				collectJSON(report, opts.mode, fr)
				return
			}
			if err := printFile(stdout, stderr, opts, fr); err != nil && outErr == nil {
				outErr = err
			}
		},
	}

	var res *driver.Result
	if opts.progress {
		res, err = runWithUI(ctx, opts.mode.String(), stdout, paths, runOpts)
		if res != nil {
			for _, fr := range res.Files {
				if perr := printFile(stdout, stderr, opts, fr); perr != nil && outErr == nil {
					outErr = perr
				}
			}
		}
	} else {
		res, err = driver.Run(ctx, paths, runOpts)
	}
	if err != nil {
		return err
	}
	if outErr != nil {
		return fmt.Errorf("write output: %w", outErr)
	}

	if report != nil {
		if err := report.Write(stdout); err != nil {
			return err
		}
	}
	if opts.timings {
		fmt.Fprint(stderr, timer.Summary())
	}
	if res.Failed() {
		return errFailed
	}
	return nil
}

// printFile prints the text output of one processed file.
func printFile(stdout, stderr io.Writer, opts runOptions, fr *driver.FileResult) error {
	if fr.Err != nil {
		errOpts := opts.pretty
		errOpts.ShowSource = false
		return diagfmt.Failure(stderr, fr.Path, fr.Err, errOpts)
	}

	switch opts.mode {
	case driver.ModeCheck:
		return diagfmt.Pretty(stdout, fr.Path, fr.File, fr.Violations, opts.pretty)
	case driver.ModeDiff:
		if fr.Changed {
			return diagfmt.Diff(stdout, fr.Path, fr.Original, fr.Fixed, opts.pretty)
		}
	case driver.ModeFix:
		if fr.Changed && !opts.quiet {
			return diagfmt.Fixed(stdout, fr.Path, opts.pretty)
		}
	}
	return nil
}

func collectJSON(report *diagfmt.JSONReport, mode driver.Mode, fr *driver.FileResult) {
	if fr.Err != nil {
		report.AddError(fr.Path, fr.Err)
		return
	}
	switch mode {
	case driver.ModeCheck:
		report.AddViolations(fr.Path, fr.Violations)
	case driver.ModeFix:
		if fr.Changed {
			report.AddFixed(fr.Path)
		}
	}
}
