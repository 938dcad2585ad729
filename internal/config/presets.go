package config

import (
	"sort"

	"github.com/san-kum/isecsim/internal/shape"
)

func temp(t float64) *float64 { return &t }

func disc(d, h float64) shape.Spec {
	return shape.Spec{Family: shape.Cylinder, Diameter: d, Height: h}
}

func block(side, h float64) shape.Spec {
	return shape.Spec{Family: shape.Square, Side: side, Height: h}
}

var Presets = map[string]*Config{
	"two-block": {
		Name: "two-block", TimeStep: 0.005, Steps: 4000,
		Layers: []LayerConfig{
			{Kind: "storage", Material: "aluminium", Shape: disc(2, 1), Temperature: temp(0)},
			{Kind: "storage", Material: "copper", Shape: disc(2, 1), Temperature: temp(100)},
		},
	},
	"heater-sandwich": {
		Name: "heater-sandwich", TimeStep: 0.25, Steps: 14400,
		Layers: []LayerConfig{
			{Kind: "storage", Material: "granite", Shape: block(10, 2)},
			{Kind: "source", Material: "steel", Shape: block(10, 0.5), Power: 25},
			{Kind: "storage", Material: "granite", Shape: block(10, 2)},
		},
	},
	"heat-sink-column": {
		Name: "heat-sink-column", TimeStep: 0.01, Steps: 30000,
		Layers: []LayerConfig{
			{Kind: "source", Material: "steel", Shape: disc(4, 0.5), Power: 15, Temperature: temp(40)},
			{Kind: "storage", Material: "paraffin", Shape: disc(4, 3)},
			{Kind: "storage", Material: "aluminium", Shape: disc(4, 1)},
			{Kind: "sink", Material: "copper", Shape: disc(4, 2), Temperature: temp(5)},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
