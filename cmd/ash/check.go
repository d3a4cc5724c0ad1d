package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"ash/internal/diag"
	"ash/internal/diagfmt"
	"ash/internal/driver"
)

func newCheckCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [flags] [files...]",
		Short: "Report diagnostics for ash source files",
		Long: `Run the compiler pipeline on each file in parallel and report diagnostics
without executing anything. Without files the [run].main entry of the nearest
ash.toml is checked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(a, cmd, args)
		},
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|short|json)")
	cmd.Flags().String("stage", "compile", "last stage to run (parse|resolve|types|lower|compile)")
	cmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	cmd.Flags().Bool("with-notes", false, "include diagnostic notes in short and json output")
	cmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	return cmd
}

func runCheck(a *app, cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "pretty", "short", "json":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	stageStr, err := cmd.Flags().GetString("stage")
	if err != nil {
		return fmt.Errorf("failed to get stage flag: %w", err)
	}
	stage, err := driver.ParseStage(stageStr)
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}

	paths := args
	var opts driver.Options
	if len(paths) == 0 {
		path, s, err := a.resolveInput(nil)
		if err != nil {
			return err
		}
		paths = []string{path}
		opts = a.driverOptions(s, stage)
	} else {
		s, err := a.loadSettings(filepath.Dir(paths[0]))
		if err != nil {
			return err
		}
		opts = a.driverOptions(s, stage)
	}

	results, err := driver.CheckFiles(cmd.Context(), paths, jobs, opts)
	if err != nil {
		return err
	}

	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	out := cmd.OutOrStdout()
	switch format {
	case "pretty":
		for _, res := range results {
			if err := diagfmt.Pretty(out, res.Bag, res.FileSet, diagfmt.PrettyOpts{
				Color:     a.color.enabledFor(out),
				PathMode:  pathMode,
				ShowNotes: true,
			}); err != nil {
				return err
			}
		}
	case "short":
		for _, res := range results {
			if text := diag.FormatShort(res.Bag.Items(), res.FileSet, withNotes); text != "" {
				fmt.Fprintln(out, text)
			}
		}
	case "json":
		if err := writeCheckJSON(out, results, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     withNotes,
		}); err != nil {
			return err
		}
	}

	failed := 0
	for _, res := range results {
		if !res.OK() {
			failed++
		}
	}
	if !a.quiet && format != "json" {
		fmt.Fprintln(cmd.ErrOrStderr(), checkSummary(len(results), failed))
	}
	if failed > 0 {
		return &exitError{code: exitFailure}
	}
	return nil
}

// writeCheckJSON merges the diagnostics of every file into one document.
func writeCheckJSON(w io.Writer, results []*driver.Result, opts diagfmt.JSONOpts) error {
	merged := diagfmt.DiagnosticsOutput{Diagnostics: []diagfmt.DiagnosticJSON{}}
	for _, res := range results {
		part := diagfmt.BuildDiagnosticsOutput(res.Bag, res.FileSet, opts)
		merged.Diagnostics = append(merged.Diagnostics, part.Diagnostics...)
		merged.Count += part.Count
		merged.Dropped += part.Dropped
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(merged)
}

func checkSummary(files, failed int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "checked %d file", files)
	if files != 1 {
		sb.WriteByte('s')
	}
	if failed == 0 {
		sb.WriteString(": ok")
	} else {
		fmt.Fprintf(&sb, ": %d with errors", failed)
	}
	return sb.String()
}
