package version

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Version information for the ash CLI. These variables can be overridden
// at build time via -ldflags.
var (
	// Version is the semantic version of the toolchain.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

// Banner renders "ash <version>" followed by the optional commit and build
// date. Version components are colored when color output is enabled.
func Banner() string {
	var sb strings.Builder
	sb.WriteString("ash ")
	sb.WriteString(colored(Version))
	if GitCommit != "" {
		fmt.Fprintf(&sb, " (%s)", GitCommit)
	}
	if BuildDate != "" {
		fmt.Fprintf(&sb, " built %s", BuildDate)
	}
	return sb.String()
}

func colored(v string) string {
	core, suffix, _ := strings.Cut(v, "-")
	parts := strings.SplitN(core, ".", 3)
	if len(parts) != 3 {
		return v
	}
	out := majorColor.Sprint(parts[0]) + "." + minorColor.Sprint(parts[1]) + "." + patchColor.Sprint(parts[2])
	if suffix != "" {
		out += "-" + suffix
	}
	return out
}

// Key identifies the toolchain build for cache invalidation.
func Key() string {
	if GitCommit == "" {
		return Version
	}
	return Version + "+" + GitCommit
}
