package version

import "strings"

// Version information for the unicecream CLI.
// These variables can be overridden at build time via -ldflags.

// Tool is the program name printed by --version.
const Tool = "unicecream"

var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// String renders "unicecream <version>", the exact --version output.
func String() string {
	v := strings.TrimSpace(Version)
	if v == "" {
		v = "dev"
	}
	return Tool + " " + v
}

// Full appends the optional build metadata to String.
func Full() string {
	var sb strings.Builder
	sb.WriteString(String())
	if c := strings.TrimSpace(GitCommit); c != "" {
		sb.WriteString(" (" + c + ")")
	}
	if d := strings.TrimSpace(BuildDate); d != "" {
		sb.WriteString(" built " + d)
	}
	return sb.String()
}
