package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"ash/internal/bytecode"
	"ash/internal/driver"
)

// ChunkExt is the extension of persisted chunk files.
const ChunkExt = ".ashc"

func newBuildCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [flags] [file.ash]",
		Short: "Compile an ash program to a chunk file",
		Long: `Compile an ash source file and write the resulting chunk to disk.
Without a file the [run].main entry of the nearest ash.toml is used.
The encoding defaults to [build].format from the manifest.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(a, cmd, args)
		},
	}
	cmd.Flags().StringP("output", "o", "", "output file (default: <name>.ashc)")
	cmd.Flags().String("format", "", "chunk encoding (msgpack|cbor)")
	return cmd
}

func runBuild(a *app, cmd *cobra.Command, args []string) error {
	path, s, err := a.resolveInput(args)
	if err != nil {
		return err
	}

	formatStr := s.config.Build.Format
	if cmd.Flags().Changed("format") {
		if formatStr, err = cmd.Flags().GetString("format"); err != nil {
			return fmt.Errorf("failed to get format flag: %w", err)
		}
	}
	format, err := bytecode.ParseFormat(formatStr)
	if err != nil {
		return err
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	if output == "" {
		output = outputNameFromPath(path) + ChunkExt
	}

	res, err := a.compile(cmd, path, a.driverOptions(s, driver.StageCompile))
	if err != nil {
		return err
	}
	data, err := bytecode.Marshal(res.Chunk, format)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	if !a.quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%s, %d bytes)\n", output, format, len(data))
	}
	return nil
}

func outputNameFromPath(inputPath string) string {
	base := filepath.Base(inputPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func newExecCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec [flags] <file.ashc>",
		Short: "Execute a compiled chunk file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vmTrace, err := cmd.Flags().GetBool("vm-trace")
			if err != nil {
				return fmt.Errorf("failed to get vm-trace flag: %w", err)
			}
			chunk, err := loadChunk(a, args[0])
			if err != nil {
				return err
			}
			return a.execChunk(cmd, chunk, vmTrace)
		},
	}
	cmd.Flags().Bool("vm-trace", false, "print every executed instruction to stderr")
	return cmd
}

// loadChunk reads and decodes a chunk file.
func loadChunk(a *app, path string) (*bytecode.Chunk, error) {
	idx := a.timer.Begin("load")
	defer a.timer.End(idx, path)

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	chunk, _, err := bytecode.ReadFile(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return chunk, nil
}
