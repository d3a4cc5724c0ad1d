package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"ash/internal/project"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init [path|name]",
		Short: "Initialize a new ash project",
		Long: `Initialize a new ash project by creating a project manifest (ash.toml)
and a hello-world entry point (main.ash). If [path|name] is omitted, initializes
the current directory. If a non-existing name is provided, a directory will be
created.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(a, cmd, args)
		},
	}
}

// runInit writes ash.toml and main.ash into the target directory. It
// refuses to touch a directory that already has a manifest and keeps an
// existing main.ash.
func runInit(a *app, cmd *cobra.Command, args []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	target := wd
	if len(args) > 0 && args[0] != "." {
		target = args[0]
		if !filepath.IsAbs(target) {
			target = filepath.Join(wd, target)
		}
	}

	if st, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err = os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	name := strings.TrimSpace(filepath.Base(target))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "ash-project"
	}

	manifestPath := filepath.Join(target, project.ManifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("project already initialized: %s exists", manifestPath)
	}
	manifest, err := project.Encode(project.DefaultConfig(name))
	if err != nil {
		return err
	}
	if err := os.WriteFile(manifestPath, manifest, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	mainPath := filepath.Join(target, project.DefaultMain)
	createdMain := false
	if _, err := os.Stat(mainPath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(mainPath, []byte(defaultMain(name)), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", project.DefaultMain, err)
		}
		createdMain = true
	}

	if a.quiet {
		return nil
	}
	rel := target
	if r, err := filepath.Rel(wd, target); err == nil {
		rel = r
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Initialized ash project in %s\n", rel)
	fmt.Fprintf(out, "  - %s\n", project.ManifestName)
	if createdMain {
		fmt.Fprintf(out, "  - %s\n", project.DefaultMain)
	} else {
		fmt.Fprintf(out, "  - %s (existing)\n", project.DefaultMain)
	}
	return nil
}

func defaultMain(name string) string {
	return fmt.Sprintf(`// %s entry point

fun greeting(who: String): String = "Hello, " + who + "!"

fun main() {
    println(greeting(%q))
}
`, name, "ash")
}
