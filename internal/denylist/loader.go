package denylist

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Loader reads deny-list files from a filesystem.
type Loader struct {
	fs afero.Fs
}

// NewLoader creates a loader on top of fs. Tests pass afero.NewMemMapFs().
func NewLoader(fs afero.Fs) *Loader {
	return &Loader{fs: fs}
}

// NewOSLoader creates a loader backed by the real filesystem.
func NewOSLoader() *Loader {
	return NewLoader(afero.NewOsFs())
}

// Load reads the policy at path. An empty path selects the embedded default.
// The format is chosen by extension: .json, .yaml or .yml.
func (l *Loader) Load(path string) (*DenyList, error) {
	if path == "" {
		slog.Debug("Using embedded deny-list")
		return Default(), nil
	}

	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read deny-list %s: %w", path, err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse deny-list %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse deny-list %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported deny-list format %q", ext)
	}

	d, err := New(cfg)
	if err != nil {
		return nil, err
	}

	slog.Info("Loaded deny-list",
		"path", path,
		"properties", len(cfg.Properties),
		"functions", len(cfg.Functions),
		"objects", len(cfg.Objects),
	)
	return d, nil
}
