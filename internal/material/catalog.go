package material

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/ini.v1"
)

// Builtin materials, keyed by lower-case name.
var Builtin = []Material{
	{ID: 1, Name: "aluminium", Density: 2.70, MolarMass: 26.98, MeltingPoint: 660.3, HeatOfFusion: 10710, SpecificHeat: 0.897, Conductivity: 237},
	{ID: 2, Name: "copper", Density: 8.96, MolarMass: 63.55, MeltingPoint: 1084.6, HeatOfFusion: 13260, SpecificHeat: 0.385, Conductivity: 401},
	{ID: 3, Name: "iron", Density: 7.87, MolarMass: 55.85, MeltingPoint: 1538, HeatOfFusion: 13810, SpecificHeat: 0.449, Conductivity: 80.4},
	{ID: 4, Name: "steel", Density: 7.85, MolarMass: 55.85, MeltingPoint: 1425, HeatOfFusion: 13800, SpecificHeat: 0.466, Conductivity: 45},
	{ID: 5, Name: "granite", Density: 2.75, SpecificHeat: 0.790, Conductivity: 2.8},
	{ID: 6, Name: "concrete", Density: 2.40, SpecificHeat: 0.880, Conductivity: 1.7},
	{ID: 7, Name: "paraffin", Density: 0.90, MolarMass: 352.7, MeltingPoint: 37, HeatOfFusion: 70000, SpecificHeat: 2.5, Conductivity: 0.25},
}

// Catalog is a set of materials addressable by name.
type Catalog struct {
	byName map[string]Material
}

func NewCatalog() *Catalog {
	return &Catalog{byName: make(map[string]Material)}
}

// DefaultCatalog returns a catalog seeded with the builtin materials.
func DefaultCatalog() *Catalog {
	c := NewCatalog()
	for _, m := range Builtin {
		c.byName[key(m.Name)] = m
	}
	return c
}

func key(name string) string { return strings.ToLower(strings.TrimSpace(name)) }

// Add validates m and inserts it, replacing any material with the same name.
func (c *Catalog) Add(m Material) error {
	if err := m.Validate(); err != nil {
		return err
	}
	for name, existing := range c.byName {
		if m.ID != 0 && existing.ID == m.ID && name != key(m.Name) {
			return fmt.Errorf("%w: %d used by %s and %s", ErrDuplicateID, m.ID, existing.Name, m.Name)
		}
	}
	c.byName[key(m.Name)] = m
	return nil
}

func (c *Catalog) Lookup(name string) (Material, error) {
	m, ok := c.byName[key(name)]
	if !ok {
		return Material{}, fmt.Errorf("%w: %s", ErrUnknownMaterial, name)
	}
	return m, nil
}

// Names lists the catalog in alphabetical order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.byName))
	for name := range c.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Catalog) Len() int { return len(c.byName) }

// LoadINI merges the materials of an INI file into the catalog. Each section
// is one material named after the section:
//
//	[basalt]
//	id = 20
//	density = 3.0
//	specific_heat = 0.84
//	conductivity = 2.1
func (c *Catalog) LoadINI(path string) error {
	file, err := ini.Load(path)
	if err != nil {
		return fmt.Errorf("load material catalog %s: %w", path, err)
	}
	return c.loadFile(file)
}

// LoadINIData is LoadINI for in-memory catalog contents.
func (c *Catalog) LoadINIData(data []byte) error {
	file, err := ini.Load(data)
	if err != nil {
		return fmt.Errorf("parse material catalog: %w", err)
	}
	return c.loadFile(file)
}

func (c *Catalog) loadFile(file *ini.File) error {
	for _, sec := range file.Sections() {
		if sec.Name() == ini.DefaultSection {
			continue
		}
		m := Material{
			ID:           sec.Key("id").MustInt(0),
			Name:         sec.Name(),
			Density:      sec.Key("density").MustFloat64(0),
			MolarMass:    sec.Key("molar_mass").MustFloat64(0),
			MeltingPoint: sec.Key("melting_point").MustFloat64(0),
			HeatOfFusion: sec.Key("heat_of_fusion").MustFloat64(0),
			SpecificHeat: sec.Key("specific_heat").MustFloat64(0),
			Conductivity: sec.Key("conductivity").MustFloat64(0),
		}
		if err := c.Add(m); err != nil {
			return fmt.Errorf("section [%s]: %w", sec.Name(), err)
		}
	}
	return nil
}
