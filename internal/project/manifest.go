package project

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

var (
	ErrPackageSectionMissing = errors.New("missing [package]")
	ErrPackageNameMissing    = errors.New("missing [package].name")
)

// Config mirrors ash.toml.
type Config struct {
	Package PackageConfig `toml:"package"`
	Run     RunConfig     `toml:"run"`
	Build   BuildConfig   `toml:"build"`
	VM      VMConfig      `toml:"vm"`
}

type PackageConfig struct {
	Name string `toml:"name"`
}

type RunConfig struct {
	Main string `toml:"main"`
}

type BuildConfig struct {
	MaxDiagnostics int    `toml:"max_diagnostics"`
	Format         string `toml:"format"`
	Cache          bool   `toml:"cache"`
}

type VMConfig struct {
	Trace bool `toml:"trace"`
}

// Default values for keys a manifest leaves out.
const (
	DefaultMain           = "main.ash"
	DefaultMaxDiagnostics = 100
	DefaultFormat         = "msgpack"
)

// Manifest is a decoded ash.toml together with its location.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// LoadManifest finds ash.toml above startDir and decodes it. ok is false
// when there is no manifest.
func LoadManifest(startDir string) (*Manifest, bool, error) {
	manifestPath, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := LoadConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

// LoadConfig decodes the manifest at path and fills in defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig("")
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return Config{}, fmt.Errorf("%s: %w", path, ErrPackageSectionMissing)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return Config{}, fmt.Errorf("%s: %w", path, ErrPackageNameMissing)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	if strings.TrimSpace(cfg.Run.Main) == "" {
		cfg.Run.Main = DefaultMain
	}
	if cfg.Build.MaxDiagnostics < 0 {
		return Config{}, fmt.Errorf("%s: [build].max_diagnostics must not be negative", path)
	}
	switch cfg.Build.Format {
	case "msgpack", "cbor":
	default:
		return Config{}, fmt.Errorf("%s: [build].format must be msgpack or cbor, got %q", path, cfg.Build.Format)
	}
	return cfg, nil
}

// DefaultConfig returns the configuration used when there is no manifest.
func DefaultConfig(name string) Config {
	return Config{
		Package: PackageConfig{Name: name},
		Run:     RunConfig{Main: DefaultMain},
		Build: BuildConfig{
			MaxDiagnostics: DefaultMaxDiagnostics,
			Format:         DefaultFormat,
			Cache:          true,
		},
	}
}

// MainPath returns the absolute path of [run].main.
func (m *Manifest) MainPath() (string, error) {
	mainPath := filepath.Join(m.Root, filepath.FromSlash(m.Config.Run.Main))
	info, err := os.Stat(mainPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%s: [run].main path does not exist: %s", m.Path, mainPath)
		}
		return "", fmt.Errorf("%s: failed to stat [run].main: %w", m.Path, err)
	}
	if info.IsDir() || filepath.Ext(mainPath) != ".ash" {
		return "", fmt.Errorf("%s: [run].main must be a .ash file", m.Path)
	}
	return mainPath, nil
}

// Encode renders cfg as TOML.
func Encode(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to encode TOML: %w", err)
	}
	return buf.Bytes(), nil
}
