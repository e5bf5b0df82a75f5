package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"unicecream/internal/version"
)

// errFailed завершает процесс с кодом 1 без дополнительного сообщения:
// всё нужное уже напечатано.
var errFailed = errors.New("run failed")

// newRootCmd builds the root command with all flags registered.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unicecream [flags] <path> [files...]",
		Short: "Find and remove icecream debugging from Python sources",
		Long: `unicecream reports ic(...) calls and icecream imports (IC001-IC003)
and rewrites files without them. Trailing file arguments replace the
directory walk, which is how the pre-commit hook calls it.`,
		Version:       version.Version,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRoot,
	}
	cmd.SetVersionTemplate(version.Tool + " {{.Version}}\n")

	flags := cmd.Flags()
	flags.Bool("check", false, "report violations without modifying files")
	flags.Bool("diff", false, "print unified diffs of the fixes instead of writing them")
	flags.StringSlice("select", nil, "rule codes to enable (repeatable, comma separated)")
	flags.StringSlice("ignore", nil, "rule codes to disable (repeatable, comma separated)")
	flags.StringSlice("exclude", nil, "path segments to skip, replaces the configured list")
	flags.String("config", "", "settings file (default: nearest pyproject.toml)")
	flags.Bool("show-source", false, "print the source line under each violation")
	flags.String("path-mode", "as-is", "how to print paths (as-is|absolute|relative|basename)")
	flags.String("output-format", "text", "report format (text|json)")
	flags.Bool("progress", false, "show a live per-file view on interactive terminals")
	flags.Bool("cache", false, "reuse results of unchanged files between runs")
	flags.String("cache-dir", "", "cache location (default: $XDG_CACHE_HOME/unicecream)")

	// Глобальные флаги
	cmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	cmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	cmd.PersistentFlags().Bool("timings", false, "show timing information")
	cmd.PersistentFlags().String("trace", "", "write trace events to PATH (\"-\" for stderr)")
	cmd.PersistentFlags().String("trace-level", "phase", "trace level (off|error|phase|detail|debug)")
	cmd.PersistentFlags().String("trace-mode", "stream", "trace storage (stream|ring)")
	cmd.PersistentFlags().Int("trace-ring-size", 4096, "events kept in ring mode")
	cmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to PATH")
	cmd.PersistentFlags().String("mem-profile", "", "write a heap profile to PATH on exit")
	cmd.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to PATH")

	cmd.MarkFlagsMutuallyExclusive("check", "diff")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
