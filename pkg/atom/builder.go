package atom

import "fmt"

// Builder enriches bare atoms (element and coordinates only) with the
// van der Waals radius and atomic mass from a spec registry.
type Builder struct {
	registry *SpecRegistry
}

// NewBuilder returns a Builder backed by the given registry.
func NewBuilder(registry *SpecRegistry) *Builder {
	return &Builder{registry: registry}
}

// Build returns a copy of the atom with radius and mass filled in from
// the registry. It fails when the element is unknown.
func (b *Builder) Build(a Atom) (Atom, error) {
	spec, err := b.registry.Lookup(a.Element)
	if err != nil {
		return Atom{}, fmt.Errorf("build atom %d: %w", a.ID, err)
	}
	a.Radius = spec.Radius
	a.Mass = spec.Mass
	return a, nil
}

// BuildAll enriches every atom in the slice. The input is not modified.
func (b *Builder) BuildAll(atoms []Atom) ([]Atom, error) {
	out := make([]Atom, 0, len(atoms))
	for _, a := range atoms {
		built, err := b.Build(a)
		if err != nil {
			return nil, err
		}
		out = append(out, built)
	}
	return out, nil
}

// UnsupportedElements returns the distinct element symbols in atoms that
// are missing from the registry, in first-seen order.
func (b *Builder) UnsupportedElements(atoms []Atom) []string {
	seen := make(map[string]bool)
	var missing []string
	for _, a := range atoms {
		if b.registry.Has(a.Element) || seen[a.Element] {
			continue
		}
		seen[a.Element] = true
		missing = append(missing, a.Element)
	}
	return missing
}
