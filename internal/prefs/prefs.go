// Package prefs handles galley user preferences persistence.
// Preferences are stored in ~/.config/galley/prefs.toml.
package prefs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/galley/internal/colorsample"
)

// Prefs holds user preferences for galley.
type Prefs struct {
	Theme          string `toml:"theme"`
	ColorAlgorithm string `toml:"color_algorithm"`
}

const (
	defaultPrefsPath      = "~/.config/galley/prefs.toml"
	defaultTheme          = "Nightfox"
	defaultColorAlgorithm = "simple"
)

// Default returns the preferences used when nothing is stored.
func Default() Prefs {
	return Prefs{Theme: defaultTheme, ColorAlgorithm: defaultColorAlgorithm}
}

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Algorithm returns the parsed colour algorithm, falling back to simple.
func (p Prefs) Algorithm() colorsample.Algorithm {
	alg, err := colorsample.ParseAlgorithm(p.ColorAlgorithm)
	if err != nil {
		return colorsample.Simple
	}
	return alg
}

// Load reads preferences from the given path. Any failure yields defaults;
// preferences are never worth refusing to start over.
func Load(path string) Prefs {
	prefs := Default()

	resolved, err := resolvePath(path)
	if err != nil {
		return prefs
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return prefs
		}
		return prefs // Graceful degradation
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return prefs // Graceful degradation
	}

	if err := toml.Unmarshal(bytes, &prefs); err != nil {
		return Default() // Graceful degradation
	}

	if strings.TrimSpace(prefs.Theme) == "" {
		prefs.Theme = defaultTheme
	}
	if _, err := colorsample.ParseAlgorithm(prefs.ColorAlgorithm); err != nil || strings.TrimSpace(prefs.ColorAlgorithm) == "" {
		prefs.ColorAlgorithm = defaultColorAlgorithm
	}

	return prefs
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}

	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
