package isec

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/isecsim/internal/material"
	"github.com/san-kum/isecsim/internal/shape"
	"github.com/san-kum/isecsim/internal/thermal"
)

func testRecord(family shape.Family) Record {
	return Record{
		CrossSectionArea: 1,
		Height:           1,
		Volume:           10,
		ShapeFamily:      family,
		MaterialName:     "test",
		Conductivity:     0.5,
		Density:          1,
		SpecificHeat:     1,
	}
}

func mustLayer(t *testing.T, kind Kind, temp, power float64) *Layer {
	t.Helper()
	l, err := NewLayer(kind, testRecord(shape.Cylinder), power, WithTemperature(temp))
	if err != nil {
		t.Fatalf("NewLayer(%s) failed: %v", kind, err)
	}
	return l
}

func TestNewLayer_Defaults(t *testing.T) {
	l, err := NewStorage(testRecord(shape.Cylinder))
	if err != nil {
		t.Fatalf("NewStorage failed: %v", err)
	}
	if l.Temperature() != DefaultTemperature {
		t.Errorf("expected default temperature %v, got %v", DefaultTemperature, l.Temperature())
	}
	if l.HeatFlux() != 0 {
		t.Errorf("expected zero initial flux, got %v", l.HeatFlux())
	}
	if l.ThermalMass() != 10 {
		t.Errorf("expected thermal mass 10, got %v", l.ThermalMass())
	}
	if l.Kind() != KindStorage {
		t.Errorf("expected storage kind, got %s", l.Kind())
	}
}

func TestNewLayer_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		mutate  func(r *Record)
		wantErr error
	}{
		{"zero volume", KindStorage, func(r *Record) { r.Volume = 0 }, ErrUndefinedThermalMass},
		{"zero density", KindSink, func(r *Record) { r.Density = 0 }, ErrUndefinedThermalMass},
		{"nan volume", KindSource, func(r *Record) { r.Volume = math.NaN() }, ErrUndefinedThermalMass},
		{"zero height", KindStorage, func(r *Record) { r.Height = 0 }, ErrInvalidRecord},
		{"zero area", KindStorage, func(r *Record) { r.CrossSectionArea = 0 }, ErrInvalidRecord},
		{"negative specific heat", KindStorage, func(r *Record) { r.SpecificHeat = -1 }, ErrInvalidRecord},
		{"zero conductivity", KindStorage, func(r *Record) { r.Conductivity = 0 }, ErrInvalidRecord},
		{"unknown kind", Kind("reflector"), func(r *Record) {}, ErrUnknownKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testRecord(shape.Cylinder)
			tt.mutate(&rec)
			_, err := NewLayer(tt.kind, rec, 0)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNewLayer_UndefinedFamilyAllowed(t *testing.T) {
	if _, err := NewStorage(testRecord(shape.FamilyUndefined)); err != nil {
		t.Errorf("family is checked when stacking, got %v", err)
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"storage", KindStorage, true},
		{"thermal storage", KindStorage, true},
		{"Source", KindSource, true},
		{" sink ", KindSink, true},
		{"heater", "", false},
	}

	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if tt.ok && (err != nil || got != tt.want) {
			t.Errorf("ParseKind(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
		if !tt.ok && !errors.Is(err, ErrUnknownKind) {
			t.Errorf("ParseKind(%q): expected ErrUnknownKind, got %v", tt.in, err)
		}
	}
}

func TestResolve(t *testing.T) {
	disc, err := shape.NewDisc(2, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	copper, err := material.DefaultCatalog().Lookup("copper")
	if err != nil {
		t.Fatal(err)
	}

	rec, err := Resolve(disc, copper)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if rec.ShapeFamily != shape.Cylinder || rec.MaterialName != "copper" {
		t.Errorf("unexpected record: %+v", rec)
	}
	wantMass := disc.Volume() * copper.Density
	if math.Abs(rec.ThermalMass()-wantMass) > 1e-12 {
		t.Errorf("expected mass %v, got %v", wantMass, rec.ThermalMass())
	}

	if _, err := Resolve(disc, material.Material{Name: "void"}); !errors.Is(err, material.ErrInvalidProperty) {
		t.Errorf("expected material validation error, got %v", err)
	}
}

func TestPassiveFlux_Boundaries(t *testing.T) {
	self := mustLayer(t, KindStorage, 20, 0)
	hot := mustLayer(t, KindStorage, 80, 0)

	self.UpdateFlux(nil, nil)
	if self.HeatFlux() != 0 {
		t.Errorf("isolated layer should have zero flux, got %v", self.HeatFlux())
	}

	self.UpdateFlux(hot, nil)
	fromBelow := self.HeatFlux()
	self.UpdateFlux(nil, hot)
	fromAbove := self.HeatFlux()

	if fromBelow <= 0 {
		t.Errorf("expected inflow from hot neighbour, got %v", fromBelow)
	}
	if math.Abs(fromBelow-fromAbove) > 1e-12 {
		t.Errorf("below and above contributions should be symmetric: %v vs %v", fromBelow, fromAbove)
	}
}

func TestPassiveFlux_UsesAboveTemperature(t *testing.T) {
	self := mustLayer(t, KindStorage, 20, 0)
	below := mustLayer(t, KindStorage, 20, 0)
	above := mustLayer(t, KindStorage, 100, 0)

	self.UpdateFlux(below, above)

	sep := thermal.Separation(1, 1)
	want := thermal.Flux(0.5, 1, sep, 100, 20)
	if math.Abs(self.HeatFlux()-want) > 1e-12 {
		t.Errorf("expected flux %v from hot layer above, got %v", want, self.HeatFlux())
	}
}

// TestPassiveFlux_MixedMaterials: unequal neighbours share the series
// conductivity, so both sides see the same heat flow with opposite signs.
func TestPassiveFlux_MixedMaterials(t *testing.T) {
	ra, rb := testRecord(shape.Cylinder), testRecord(shape.Cylinder)
	ra.Conductivity, rb.Conductivity = 1, 3

	a, err := NewStorage(ra, WithTemperature(0))
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewStorage(rb, WithTemperature(10))
	if err != nil {
		t.Fatal(err)
	}

	a.UpdateFlux(nil, b)
	b.UpdateFlux(a, nil)

	// 1 / (0.5/1 + 0.5/3) = 1.5 W/(m K) across a 1 cm separation
	if math.Abs(a.HeatFlux()-15) > 1e-12 {
		t.Errorf("expected 15 W into the cold layer, got %v", a.HeatFlux())
	}
	if math.Abs(b.HeatFlux()+15) > 1e-12 {
		t.Errorf("expected 15 W out of the hot layer, got %v", b.HeatFlux())
	}
}

func TestPassiveFlux_EqualMaterialsUseOwnConductivity(t *testing.T) {
	self := mustLayer(t, KindStorage, 0, 0)
	n := mustLayer(t, KindStorage, 10, 0)

	self.UpdateFlux(n, nil)

	want := thermal.Flux(0.5, 1, thermal.Separation(1, 1), 10, 0)
	if math.Abs(self.HeatFlux()-want) > 1e-12 {
		t.Errorf("expected %v, got %v", want, self.HeatFlux())
	}
}

func TestSourceFlux_AddsPower(t *testing.T) {
	src := mustLayer(t, KindSource, 20, 10)
	storage := mustLayer(t, KindStorage, 20, 0)
	neighbour := mustLayer(t, KindStorage, 50, 0)

	src.UpdateFlux(neighbour, nil)
	storage.UpdateFlux(neighbour, nil)

	if math.Abs(src.HeatFlux()-(storage.HeatFlux()+10)) > 1e-12 {
		t.Errorf("source flux %v should be conduction %v + 10W", src.HeatFlux(), storage.HeatFlux())
	}
	if src.Power() != 10 || storage.Power() != 0 {
		t.Errorf("unexpected power: source=%v storage=%v", src.Power(), storage.Power())
	}
}

func TestSinkBehavesAsStorage(t *testing.T) {
	sink := mustLayer(t, KindSink, 20, 0)
	storage := mustLayer(t, KindStorage, 20, 0)
	neighbour := mustLayer(t, KindStorage, -5, 0)

	sink.UpdateFlux(nil, neighbour)
	storage.UpdateFlux(nil, neighbour)
	sink.UpdateTemperature(0.1)
	storage.UpdateTemperature(0.1)

	if sink.Temperature() != storage.Temperature() {
		t.Errorf("sink %v and storage %v should integrate identically", sink.Temperature(), storage.Temperature())
	}
}

func TestUpdateTemperature(t *testing.T) {
	l := mustLayer(t, KindSource, 0, 10)
	l.UpdateFlux(nil, nil)
	l.UpdateTemperature(1)

	// 10 W * 1 s / (10 g * 1 J/(g K))
	if math.Abs(l.Temperature()-1) > 1e-12 {
		t.Errorf("expected temperature 1, got %v", l.Temperature())
	}

	l.UpdateTemperature(0.5)
	if math.Abs(l.Temperature()-1.5) > 1e-12 {
		t.Errorf("expected temperature 1.5, got %v", l.Temperature())
	}
}
