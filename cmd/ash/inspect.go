package main

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"ash/internal/bytecode"
	"ash/internal/driver"
	"ash/internal/hir"
)

func newDisasmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "disasm <file.ash|file.ashc>",
		Short: "Disassemble a compiled program",
		Long: `Print the bytecode of an ash program, one instruction per line.
Source files are compiled first; chunk files are decoded as they are.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			var chunk *bytecode.Chunk
			if strings.EqualFold(filepath.Ext(path), ChunkExt) {
				c, err := loadChunk(a, path)
				if err != nil {
					return err
				}
				chunk = c
			} else {
				s, err := a.loadSettings(filepath.Dir(path))
				if err != nil {
					return err
				}
				res, err := a.compile(cmd, path, a.driverOptions(s, driver.StageCompile))
				if err != nil {
					return err
				}
				chunk = res.Chunk
			}
			return bytecode.Disassemble(cmd.OutOrStdout(), chunk, filepath.Base(path))
		},
	}
}

func newLowerCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lower <file.ash>",
		Short: "Print the lowered program tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			s, err := a.loadSettings(filepath.Dir(path))
			if err != nil {
				return err
			}
			res, err := a.compile(cmd, path, a.driverOptions(s, driver.StageLower))
			if err != nil {
				return err
			}
			return hir.Dump(cmd.OutOrStdout(), res.Module)
		},
	}
}
