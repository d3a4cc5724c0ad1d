package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ash/internal/driver"
	"ash/internal/trace"
)

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [flags] [file.ash]",
		Short: "Compile and execute an ash program",
		Long: `Compile an ash source file to bytecode and execute it on the VM.
Without a file the [run].main entry of the nearest ash.toml is used.
The program result, when there is one, is printed on stdout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExecution(a, cmd, args)
		},
	}
	cmd.Flags().Bool("vm-trace", false, "print every executed instruction to stderr")
	cmd.Flags().Bool("no-cache", false, "bypass the compiled chunk cache")
	return cmd
}

func runExecution(a *app, cmd *cobra.Command, args []string) error {
	path, s, err := a.resolveInput(args)
	if err != nil {
		return err
	}

	vmTrace := s.config.VM.Trace
	if cmd.Flags().Changed("vm-trace") {
		if vmTrace, err = cmd.Flags().GetBool("vm-trace"); err != nil {
			return fmt.Errorf("failed to get vm-trace flag: %w", err)
		}
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return fmt.Errorf("failed to get no-cache flag: %w", err)
	}

	opts := a.driverOptions(s, driver.StageCompile)
	if s.config.Build.Cache && !noCache {
		cache, err := driver.OpenChunkCache("ash")
		if err != nil {
			trace.Point(cmd.Context(), trace.ScopeDriver, "cache", err.Error())
		} else {
			opts.Cache = cache
		}
	}

	res, err := a.compile(cmd, path, opts)
	if err != nil {
		return err
	}
	return a.execChunk(cmd, res.Chunk, vmTrace)
}
