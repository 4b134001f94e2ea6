// Package config resolves the compiler's input and output paths. Every
// field has a default rooted at the working directory; an optional
// codexc.yaml overrides individual fields. A missing config file is not an
// error, matching the tolerance rule for data inputs.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const DefaultFile = "codexc.yaml"

type Config struct {
	// Inputs.
	NodeMap      string `yaml:"node_map"`
	ArcanaFile   string `yaml:"arcana_file"`
	Bibliography string `yaml:"bibliography"`
	HallsFile    string `yaml:"halls_file"`
	FlowFile     string `yaml:"flow_file"`
	SpineRoot    string `yaml:"spine_root"`
	PriorPalette string `yaml:"prior_palette"`

	// Outputs.
	DistDir       string `yaml:"dist_dir"`
	ReferencesDir string `yaml:"references_dir"`
	EventQueue    string `yaml:"event_queue"`

	Debug bool `yaml:"debug"`
}

func Default() Config {
	return Config{
		NodeMap:       filepath.Join("shared", "codex", "node-map.json"),
		ArcanaFile:    filepath.Join("shared", "liber", "arcana.json"),
		Bibliography:  filepath.Join("shared", "codex", "bibliography.md"),
		HallsFile:     filepath.Join("shared", "codex", "halls.md"),
		FlowFile:      filepath.Join("shared", "codex", "ui-flow.md"),
		SpineRoot:     filepath.Join("shared", "spine"),
		PriorPalette:  filepath.Join("shared", "stone", "palette.json"),
		DistDir:       "dist",
		ReferencesDir: filepath.Join("shared", "references"),
		EventQueue:    filepath.Join("events", "sync-queue.ndjson"),
	}
}

// Load reads path (or DefaultFile when path is empty) over the defaults.
// A missing file yields the defaults; unknown keys are errors.
func Load(path string) (Config, error) {
	explicit := path != ""
	if path == "" {
		path = DefaultFile
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		if os.IsNotExist(err) {
			return cfg, fmt.Errorf("config file %s not found", path)
		}
		return cfg, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := decodeStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

func decodeStrict(data []byte, cfg *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	return decoder.Decode(cfg)
}
