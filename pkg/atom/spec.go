package atom

import "fmt"

// Spec holds the physical properties of a chemical element.
type Spec struct {
	Element string  // element symbol
	Radius  float64 // van der Waals radius in Angstroms
	Mass    float64 // atomic mass in Daltons
}

// SpecRegistry maps element symbols to their physical properties.
//
// A registry is an explicitly constructed value: callers create one with
// NewSpecRegistry and pass it by reference to whatever needs elemental
// properties (parser, builder, config overrides). There is no package-level
// instance.
type SpecRegistry struct {
	specs map[string]Spec
}

// NewSpecRegistry returns a registry seeded with the default element set.
// Van der Waals radii follow Bondi (1964) and Rowland & Taylor (1996);
// atomic masses follow the NIST 2020 tables.
func NewSpecRegistry() *SpecRegistry {
	r := &SpecRegistry{specs: make(map[string]Spec)}
	for _, s := range defaultSpecs {
		r.specs[s.Element] = s
	}
	return r
}

var defaultSpecs = []Spec{
	{"H", 1.20, 1.008},
	{"C", 1.70, 12.011},
	{"N", 1.55, 14.007},
	{"O", 1.52, 15.999},
	{"P", 1.80, 30.974},
	{"S", 1.80, 32.065},
	{"F", 1.47, 18.998},
	{"Cl", 1.75, 35.453},
	{"Br", 1.85, 79.904},
	{"I", 1.98, 126.904},
	{"Na", 2.27, 22.990},
	{"Mg", 1.73, 24.305},
	{"K", 2.75, 39.098},
	{"Ca", 2.31, 40.078},
	{"Fe", 1.80, 55.845},
	{"Zn", 1.39, 65.38},
	{"Se", 1.90, 78.96},
}

// Lookup returns the spec for an element symbol.
func (r *SpecRegistry) Lookup(element string) (Spec, error) {
	s, ok := r.specs[element]
	if !ok {
		return Spec{}, fmt.Errorf("element %q not found in spec registry", element)
	}
	return s, nil
}

// Has reports whether the registry knows the element symbol.
func (r *SpecRegistry) Has(element string) bool {
	_, ok := r.specs[element]
	return ok
}

// Add inserts or replaces an element spec.
func (r *SpecRegistry) Add(s Spec) {
	r.specs[s.Element] = s
}
