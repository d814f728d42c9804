// Package settings holds the user-level tool configuration: which toolchain
// binaries to invoke and how many compile jobs to run in parallel.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Settings configures the external toolchain binaries and the compile
// parallelism. Zero values fall back to the defaults.
type Settings struct {
	CC   string `yaml:"cc"`
	AR   string `yaml:"ar"`
	NM   string `yaml:"nm"`
	Jobs int    `yaml:"jobs"`
}

// Default returns the built-in configuration: the host C toolchain by its
// conventional names and one compile job per CPU.
func Default() *Settings {
	return &Settings{
		CC:   "cc",
		AR:   "ar",
		NM:   "nm",
		Jobs: runtime.NumCPU(),
	}
}

// Load reads settings from path, or from ~/.config/teapot/config.yaml when
// path is empty. A missing file yields the defaults; fields absent from the
// file keep their default values.
func Load(path string) (*Settings, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Default(), nil
		}
		path = filepath.Join(home, ".config", "teapot", "config.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	s := Default()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}
	if s.CC == "" {
		s.CC = "cc"
	}
	if s.AR == "" {
		s.AR = "ar"
	}
	if s.NM == "" {
		s.NM = "nm"
	}
	if s.Jobs <= 0 {
		s.Jobs = runtime.NumCPU()
	}
	return s, nil
}
