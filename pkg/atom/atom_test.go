package atom

import (
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

func TestSpecRegistryDefaults(t *testing.T) {
	r := NewSpecRegistry()

	tests := []struct {
		element string
		radius  float64
		mass    float64
	}{
		{"H", 1.20, 1.008},
		{"C", 1.70, 12.011},
		{"O", 1.52, 15.999},
		{"Ca", 2.31, 40.078},
		{"Se", 1.90, 78.96},
	}
	for _, tt := range tests {
		t.Run(tt.element, func(t *testing.T) {
			s, err := r.Lookup(tt.element)
			if err != nil {
				t.Fatalf("Lookup(%q) error = %v", tt.element, err)
			}
			if s.Radius != tt.radius {
				t.Errorf("Radius = %v, want %v", s.Radius, tt.radius)
			}
			if s.Mass != tt.mass {
				t.Errorf("Mass = %v, want %v", s.Mass, tt.mass)
			}
		})
	}
}

func TestSpecRegistryUnknownElement(t *testing.T) {
	r := NewSpecRegistry()
	if _, err := r.Lookup("Xx"); err == nil {
		t.Error("Lookup(Xx) error = nil, want error")
	}
	if r.Has("Xx") {
		t.Error("Has(Xx) = true, want false")
	}
}

func TestSpecRegistryAddOverrides(t *testing.T) {
	r := NewSpecRegistry()
	r.Add(Spec{Element: "C", Radius: 1.85, Mass: 12.011})

	s, err := r.Lookup("C")
	if err != nil {
		t.Fatalf("Lookup(C) error = %v", err)
	}
	if s.Radius != 1.85 {
		t.Errorf("Radius after Add = %v, want 1.85", s.Radius)
	}
}

func TestBuilderBuild(t *testing.T) {
	b := NewBuilder(NewSpecRegistry())

	a, err := b.Build(Atom{ID: 7, Element: "N", Position: v3.Vec{X: 1, Y: 2, Z: 3}})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if a.Radius != 1.55 {
		t.Errorf("Radius = %v, want 1.55", a.Radius)
	}
	if a.Mass != 14.007 {
		t.Errorf("Mass = %v, want 14.007", a.Mass)
	}
	if a.ID != 7 || a.Position.X != 1 {
		t.Error("Build() must preserve identity and coordinates")
	}
}

func TestBuilderBuildAllUnknownElement(t *testing.T) {
	b := NewBuilder(NewSpecRegistry())
	atoms := []Atom{
		{ID: 0, Element: "C"},
		{ID: 1, Element: "Qq"},
	}

	if _, err := b.BuildAll(atoms); err == nil {
		t.Error("BuildAll() error = nil, want error for unknown element")
	}

	missing := b.UnsupportedElements(atoms)
	if len(missing) != 1 || missing[0] != "Qq" {
		t.Errorf("UnsupportedElements() = %v, want [Qq]", missing)
	}
}
