// Package config loads build parameters from YAML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/soypat/sheetmetal"
	"gopkg.in/yaml.v3"
)

// DefaultMeshCells is the number of mesh cells along the longest side of a
// rendered part.
const DefaultMeshCells = 200

// Config holds the parameters of one build.
type Config struct {
	Type        sheetmetal.ShapeType `yaml:"type"`
	Thickness   float64              `yaml:"thickness"`
	Radius      float64              `yaml:"radius"`
	Width       float64              `yaml:"width"`
	Length      float64              `yaml:"length"`
	Height      float64              `yaml:"height"`
	FlangeWidth float64              `yaml:"flange_width"`
	FillGaps    bool                 `yaml:"fill_gaps"`

	// MeshCells is the rendering resolution, see render.NewOctreeRenderer.
	MeshCells int `yaml:"mesh_cells"`
}

// DefaultConfig returns the default configuration, an L-Shape with the
// default parameters.
func DefaultConfig() *Config {
	cfg := &Config{Type: sheetmetal.LShape, MeshCells: DefaultMeshCells}
	cfg.SetParameters(sheetmetal.DefaultParameters())
	return cfg
}

// Load reads the configuration file at path. Keys missing from the file
// keep their default value. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML data over the defaults. Unknown keys are an error.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the parameters and the mesh resolution.
func (c *Config) Validate() error {
	if c.MeshCells < 2 {
		return fmt.Errorf("mesh_cells must be 2 or larger, got %d", c.MeshCells)
	}
	if _, err := sheetmetal.ParseShapeType(c.Type.String()); err != nil {
		return err
	}
	return c.Parameters().Validate()
}

// Parameters returns the shape parameters of c.
func (c *Config) Parameters() sheetmetal.Parameters {
	return sheetmetal.Parameters{
		Thickness:   c.Thickness,
		Radius:      c.Radius,
		Width:       c.Width,
		Length:      c.Length,
		Height:      c.Height,
		FlangeWidth: c.FlangeWidth,
		FillGaps:    c.FillGaps,
	}
}

// SetParameters overwrites the shape parameters of c with p.
func (c *Config) SetParameters(p sheetmetal.Parameters) {
	c.Thickness = p.Thickness
	c.Radius = p.Radius
	c.Width = p.Width
	c.Length = p.Length
	c.Height = p.Height
	c.FlangeWidth = p.FlangeWidth
	c.FillGaps = p.FillGaps
}

// Write encodes c as YAML.
func (c *Config) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}
