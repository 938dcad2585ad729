package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/isecsim/internal/isec"
	"github.com/san-kum/isecsim/internal/material"
	"github.com/san-kum/isecsim/internal/shape"
	"github.com/san-kum/isecsim/internal/sim"
)

const (
	DefaultTimeStep = 1.0
	DefaultSteps    = 600
)

var ErrNoLayers = errors.New("config: at least one layer is required")

// Config is a run file: the column to build and how to advance it.
type Config struct {
	Name          string        `yaml:"name"`
	TimeStep      float64       `yaml:"time_step"`
	Steps         int           `yaml:"steps"`
	MaterialsFile string        `yaml:"materials_file,omitempty"`
	Layers        []LayerConfig `yaml:"layers"`
}

// LayerConfig declares one layer, bottom first. Temperature defaults to
// isec.DefaultTemperature when omitted.
type LayerConfig struct {
	Kind        string     `yaml:"kind"`
	Material    string     `yaml:"material"`
	Shape       shape.Spec `yaml:"shape"`
	Temperature *float64   `yaml:"temperature,omitempty"`
	Power       float64    `yaml:"power,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:     "column",
		TimeStep: DefaultTimeStep,
		Steps:    DefaultSteps,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the run parameters and that layers are declared. Layer
// contents are checked when the stack is built.
func (c *Config) Validate() error {
	if !(c.TimeStep > 0) || math.IsInf(c.TimeStep, 0) {
		return fmt.Errorf("%w, got %g", sim.ErrInvalidTimeStep, c.TimeStep)
	}
	if c.Steps < 0 {
		return fmt.Errorf("%w, got %d", sim.ErrInvalidSteps, c.Steps)
	}
	if len(c.Layers) == 0 {
		return ErrNoLayers
	}
	return nil
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		TimeStep:      c.TimeStep,
		Steps:         c.Steps,
		ValidateState: true,
	}
}

// Catalog returns the builtin materials merged with MaterialsFile, if set.
func (c *Config) Catalog() (*material.Catalog, error) {
	cat := material.DefaultCatalog()
	if c.MaterialsFile != "" {
		if err := cat.LoadINI(c.MaterialsFile); err != nil {
			return nil, err
		}
	}
	return cat, nil
}

// BuildStack resolves every layer against cat and stacks them in order.
// Building stops at the first failing layer.
func (c *Config) BuildStack(cat *material.Catalog, logger log.FieldLogger) (*isec.Stack, error) {
	if len(c.Layers) == 0 {
		return nil, ErrNoLayers
	}
	st := isec.NewStack(isec.WithLogger(logger))
	for i, lc := range c.Layers {
		layer, err := lc.Build(cat)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		if err := st.Stack(layer); err != nil {
			return nil, err
		}
	}
	return st, nil
}

// InitialTemperatures lists the declared starting temperatures.
func (c *Config) InitialTemperatures() []float64 {
	temps := make([]float64, len(c.Layers))
	for i, lc := range c.Layers {
		temps[i] = lc.initialTemperature()
	}
	return temps
}

func (lc LayerConfig) Build(cat *material.Catalog) (*isec.Layer, error) {
	kind, err := isec.ParseKind(lc.Kind)
	if err != nil {
		return nil, err
	}
	m, err := cat.Lookup(lc.Material)
	if err != nil {
		return nil, err
	}

	if lc.Shape.Family == shape.FamilyUndefined {
		return nil, fmt.Errorf("%w: %s", isec.ErrShapeTypeUndefined, m.Name)
	}
	s, err := shape.New(lc.Shape)
	if err != nil {
		return nil, err
	}
	rec, err := isec.Resolve(s, m)
	if err != nil {
		return nil, err
	}
	return isec.NewLayer(kind, rec, lc.Power, isec.WithTemperature(lc.initialTemperature()))
}

func (lc LayerConfig) initialTemperature() float64 {
	if lc.Temperature == nil {
		return isec.DefaultTemperature
	}
	return *lc.Temperature
}

// Clone returns a deep copy so presets can be tweaked safely.
func (c *Config) Clone() *Config {
	out := *c
	out.Layers = make([]LayerConfig, len(c.Layers))
	for i, lc := range c.Layers {
		out.Layers[i] = lc
		if lc.Temperature != nil {
			t := *lc.Temperature
			out.Layers[i].Temperature = &t
		}
	}
	return &out
}
