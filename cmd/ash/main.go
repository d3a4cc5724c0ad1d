package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ash/internal/project"
	"ash/internal/trace"
	"ash/internal/version"
)

// Process exit codes.
const (
	exitOK = 0
	// exitFailure covers compile diagnostics and command errors.
	exitFailure = 1
	// exitPanic is returned when the VM stops on a runtime panic.
	exitPanic = 2
)

// exitError carries an exit code for failures that have already been
// reported to the user.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the CLI with args and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	a.finish(stderr, err != nil)
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	fmt.Fprintf(stderr, "error: %v\n", err)
	return exitFailure
}

// newRootCmd builds the command tree. Global flags are read into a before
// any subcommand runs.
func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "ash",
		Short: "Ash language compiler and bytecode VM",
		Long: `Ash compiles .ash programs to bytecode and runs them on a stack VM.
Chunks can be persisted to .ashc files and executed later.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	root.AddCommand(
		newRunCmd(a),
		newBuildCmd(a),
		newExecCmd(a),
		newCheckCmd(a),
		newDisasmCmd(a),
		newLowerCmd(a),
		newInitCmd(a),
		newVersionCmd(a),
	)

	pf := root.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.Int("max-diagnostics", project.DefaultMaxDiagnostics, "maximum number of diagnostics to show")
	pf.String("trace", "", "trace output file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage mode (stream|ring|both)")
	pf.String("trace-format", "auto", "trace output format (auto|text|ndjson)")
	pf.Int("trace-ring-size", trace.DefaultRingSize, "ring buffer capacity for ring and both modes")
	pf.String("cpu-profile", "", "write a CPU profile to file")
	pf.String("mem-profile", "", "write a heap profile to file on exit")
	pf.String("runtime-trace", "", "write a Go runtime trace to file")

	return root
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
