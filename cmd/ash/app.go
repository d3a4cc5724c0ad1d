package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ash/internal/bytecode"
	"ash/internal/diag"
	"ash/internal/diagfmt"
	"ash/internal/driver"
	"ash/internal/observ"
	"ash/internal/prof"
	"ash/internal/project"
	"ash/internal/source"
	"ash/internal/trace"
	"ash/internal/value"
	"ash/internal/vm"
)

// app holds the state shared by every command of one invocation.
type app struct {
	color          colorMode
	quiet          bool
	timings        bool
	maxDiagnostics int
	maxDiagSet     bool

	timer       *observ.Timer
	tracer      trace.Tracer
	traceFormat trace.Format
	cleanup     func()
	profile     *prof.Session
}

// setup reads the persistent flags and installs the tracer.
func (a *app) setup(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()

	colorStr, err := flags.GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	if a.color, err = readColorMode(colorStr); err != nil {
		return err
	}
	color.NoColor = !a.color.enabledFor(cmd.OutOrStdout())

	if a.quiet, err = flags.GetBool("quiet"); err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if a.timings, err = flags.GetBool("timings"); err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	if a.maxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if a.maxDiagnostics < 0 {
		return fmt.Errorf("--max-diagnostics must not be negative")
	}
	a.maxDiagSet = flags.Changed("max-diagnostics")
	if a.timings {
		a.timer = observ.NewTimer()
	}

	if a.profile, err = setupProfiling(cmd); err != nil {
		return err
	}
	a.tracer, a.traceFormat, a.cleanup, err = setupTracing(cmd)
	return err
}

// finish stops profiling, prints timings, dumps the trace ring after a
// failure and closes the tracer.
func (a *app) finish(stderr io.Writer, failed bool) {
	if err := a.profile.Stop(); err != nil {
		fmt.Fprintf(stderr, "profile: %v\n", err)
	}
	if a.timings && len(a.timer.Phases()) > 0 {
		fmt.Fprint(stderr, a.timer.Summary())
	}
	if failed {
		if ring := trace.RingOf(a.tracer); ring != nil {
			format := a.traceFormat
			if format == trace.FormatAuto {
				format = trace.FormatText
			}
			fmt.Fprintln(stderr, "trace: last events")
			if err := ring.Dump(stderr, format); err != nil {
				fmt.Fprintf(stderr, "trace: dump error: %v\n", err)
			}
		}
	}
	if a.cleanup != nil {
		a.cleanup()
	}
}

// settings are the effective build settings: manifest values overridden
// by flags.
type settings struct {
	manifest *project.Manifest
	config   project.Config
}

// loadSettings finds the manifest governing dir. Without one the defaults
// apply.
func (a *app) loadSettings(dir string) (*settings, error) {
	m, ok, err := project.LoadManifest(dir)
	if err != nil {
		return nil, err
	}
	s := &settings{config: project.DefaultConfig("")}
	if ok {
		s.manifest = m
		s.config = m.Config
	}
	if a.maxDiagSet || !ok {
		s.config.Build.MaxDiagnostics = a.maxDiagnostics
	}
	return s, nil
}

// resolveInput picks the source file for commands taking an optional
// path: the argument when given, the manifest's [run].main otherwise.
func (a *app) resolveInput(args []string) (string, *settings, error) {
	if len(args) > 0 {
		path := args[0]
		s, err := a.loadSettings(filepath.Dir(path))
		return path, s, err
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", nil, err
	}
	s, err := a.loadSettings(wd)
	if err != nil {
		return "", nil, err
	}
	if s.manifest == nil {
		return "", nil, fmt.Errorf("no input file and no %s found", project.ManifestName)
	}
	path, err := s.manifest.MainPath()
	if err != nil {
		return "", nil, err
	}
	return path, s, nil
}

func (a *app) driverOptions(s *settings, stage driver.Stage) driver.Options {
	return driver.Options{
		Stage:          stage,
		MaxDiagnostics: s.config.Build.MaxDiagnostics,
		Timer:          a.timer,
	}
}

// compile runs the pipeline on path and reports diagnostics. A result with
// errors turns into an exitError.
func (a *app) compile(cmd *cobra.Command, path string, opts driver.Options) (*driver.Result, error) {
	res, err := driver.Compile(cmd.Context(), path, opts)
	if err != nil {
		return nil, err
	}
	if res.Bag.Len() > 0 {
		if err := a.printDiagnostics(cmd.ErrOrStderr(), res.Bag, res.FileSet); err != nil {
			return nil, err
		}
	}
	if !res.OK() {
		return nil, &exitError{code: exitFailure}
	}
	return res, nil
}

// printDiagnostics renders bag in the pretty format.
func (a *app) printDiagnostics(w io.Writer, bag *diag.Bag, fs *source.FileSet) error {
	return diagfmt.Pretty(w, bag, fs, diagfmt.PrettyOpts{
		Color:     a.color.enabledFor(w),
		ShowNotes: true,
	})
}

// execChunk runs chunk and prints its result.
func (a *app) execChunk(cmd *cobra.Command, chunk *bytecode.Chunk, vmTrace bool) error {
	opts := vm.Options{Stdout: cmd.OutOrStdout()}
	if vmTrace {
		opts.Trace = cmd.ErrOrStderr()
	}

	_, span := trace.Start(cmd.Context(), trace.ScopeStage, "run")
	idx := a.timer.Begin("run")
	result, ok, vmErr := vm.New(chunk, opts).Run()
	a.timer.End(idx, "")
	if vmErr != nil {
		span.End(vmErr.Code.String())
		fmt.Fprint(cmd.ErrOrStderr(), vmErr.Format())
		return &exitError{code: exitPanic}
	}
	span.End("ok")

	if ok {
		printResult(cmd.OutOrStdout(), result)
	}
	return nil
}

func printResult(w io.Writer, v value.Value) {
	fmt.Fprintln(w, v.String())
}
