// Package config loads run parameters for the biomesh CLI from a YAML
// file: voxelization settings, mesh source, residue filter, and element
// property overrides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pausalinas/biomesh/pkg/atom"
	"github.com/pausalinas/biomesh/pkg/residue"
)

// ElementOverride replaces or adds an element spec in the registry.
type ElementOverride struct {
	Element string  `yaml:"element"`
	Radius  float64 `yaml:"radius"`
	Mass    float64 `yaml:"mass"`
}

// Config holds the parameters of a meshing run.
type Config struct {
	VoxelSize float64           `yaml:"voxel_size"`
	Padding   float64           `yaml:"padding"`
	Source    string            `yaml:"source"` // "occupied" or "empty"
	Filter    string            `yaml:"filter"` // all, protein, nucleic, no-water
	Elements  []ElementOverride `yaml:"elements"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		VoxelSize: 1.0,
		Padding:   0.0,
		Source:    "occupied",
		Filter:    "all",
	}
}

// Load reads and validates a YAML config file. Missing fields keep their
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field values without touching defaults.
func (c *Config) Validate() error {
	if c.VoxelSize <= 0 {
		return fmt.Errorf("voxel_size must be positive, got %v", c.VoxelSize)
	}
	if c.Source != "occupied" && c.Source != "empty" {
		return fmt.Errorf("source must be \"occupied\" or \"empty\", got %q", c.Source)
	}
	if _, err := filterByName(c.Filter); err != nil {
		return err
	}
	for _, e := range c.Elements {
		if e.Element == "" {
			return fmt.Errorf("element override with empty symbol")
		}
		if e.Radius < 0 {
			return fmt.Errorf("element %s: radius must be >= 0, got %v", e.Element, e.Radius)
		}
	}
	return nil
}

// ResidueFilter returns the residue filter selected by the config.
func (c *Config) ResidueFilter() residue.Filter {
	f, err := filterByName(c.Filter)
	if err != nil {
		// Validate rejects unknown names, so a loaded config never gets
		// here; fall back to keeping everything for hand-built configs.
		return residue.All()
	}
	return f
}

func filterByName(name string) (residue.Filter, error) {
	switch name {
	case "", "all":
		return residue.All(), nil
	case "protein":
		return residue.ProteinOnly(), nil
	case "nucleic":
		return residue.NucleicAcidOnly(), nil
	case "no-water":
		return residue.NoWater(), nil
	}
	return residue.Filter{}, fmt.Errorf("unknown filter %q (want all, protein, nucleic, or no-water)", name)
}

// ApplyOverrides installs the element overrides into the registry.
func (c *Config) ApplyOverrides(registry *atom.SpecRegistry) {
	for _, e := range c.Elements {
		registry.Add(atom.Spec{Element: e.Element, Radius: e.Radius, Mass: e.Mass})
	}
}
