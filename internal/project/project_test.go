package project_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ash/internal/project"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadManifestWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "ash.toml"), `[package]
name = "demo"

[run]
main = "src/app.ash"

[build]
max_diagnostics = 7
format = "cbor"
cache = false

[vm]
trace = true
`)
	writeFile(t, filepath.Join(root, "src", "app.ash"), "1")
	nested := filepath.Join(root, "src", "deep")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	m, ok, err := project.LoadManifest(nested)
	if err != nil || !ok {
		t.Fatalf("LoadManifest: ok=%v err=%v", ok, err)
	}
	if m.Root != root {
		t.Fatalf("root %q, want %q", m.Root, root)
	}
	cfg := m.Config
	if cfg.Package.Name != "demo" || cfg.Build.MaxDiagnostics != 7 || cfg.Build.Format != "cbor" || cfg.Build.Cache || !cfg.VM.Trace {
		t.Fatalf("unexpected config %+v", cfg)
	}
	mainPath, err := m.MainPath()
	if err != nil {
		t.Fatalf("MainPath: %v", err)
	}
	if mainPath != filepath.Join(root, "src", "app.ash") {
		t.Fatalf("main path %q", mainPath)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ash.toml")
	writeFile(t, path, "[package]\nname = \"x\"\n")
	cfg, err := project.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Run.Main != project.DefaultMain || cfg.Build.Format != project.DefaultFormat || cfg.Build.MaxDiagnostics != project.DefaultMaxDiagnostics || !cfg.Build.Cache {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"no package", "[run]\nmain = \"a.ash\"\n", "missing [package]"},
		{"no name", "[package]\n", "missing [package].name"},
		{"bad format", "[package]\nname = \"x\"\n[build]\nformat = \"json\"\n", "msgpack or cbor"},
		{"unknown key", "[package]\nname = \"x\"\nedition = 2\n", "unknown key"},
		{"bad toml", "[package\n", "failed to parse TOML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "ash.toml")
			writeFile(t, path, tt.content)
			_, err := project.LoadConfig(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %v, want %q", err, tt.want)
			}
		})
	}
	path := filepath.Join(t.TempDir(), "ash.toml")
	writeFile(t, path, "[package]\n")
	if _, err := project.LoadConfig(path); !errors.Is(err, project.ErrPackageNameMissing) {
		t.Fatalf("expected ErrPackageNameMissing, got %v", err)
	}
}

func TestNoManifest(t *testing.T) {
	_, ok, err := project.LoadManifest(t.TempDir())
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if ok {
		t.Skip("an ash.toml exists above the temp directory")
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	data, err := project.Encode(project.DefaultConfig("demo"))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	path := filepath.Join(t.TempDir(), "ash.toml")
	writeFile(t, path, string(data))
	cfg, err := project.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v\n%s", err, data)
	}
	if cfg != project.DefaultConfig("demo") {
		t.Fatalf("round trip changed config: %+v", cfg)
	}
}

func TestDigest(t *testing.T) {
	a := project.Sum([]byte("a"))
	if a == project.Sum([]byte("b")) {
		t.Fatalf("distinct inputs share a digest")
	}
	if project.Combine(a) == project.Combine(a, a) {
		t.Fatalf("Combine ignores parts")
	}
	if len(a.String()) != 64 {
		t.Fatalf("hex digest has %d chars", len(a.String()))
	}
}
