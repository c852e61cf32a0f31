package engine

import (
	"fmt"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/pausalinas/biomesh/pkg/atom"
	"github.com/pausalinas/biomesh/pkg/gid"
	"github.com/pausalinas/biomesh/pkg/hexmesh"
	"github.com/pausalinas/biomesh/pkg/pdb"
	"github.com/pausalinas/biomesh/pkg/residue"
	"github.com/pausalinas/biomesh/pkg/voxel"
)

// Result is the pipeline state accumulated by a script evaluation.
type Result struct {
	Atoms   []atom.Atom     // enriched working set, after any filters
	Grid    *voxel.Grid     // last grid built by (voxelize ...)
	Meshes  []*hexmesh.Mesh // meshes built by (hexmesh ...), in order
	Exports []string        // paths written by (export-gid ...)
}

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms biomesh Lisp source before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals.
//
//  2. Kebab-case to underscore: load-pdb -> load_pdb
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator).
//
// Both transformations respect string literal boundaries and line
// comments, and ; line comments are rewritten to zygomys's // form.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, b[i+1:j]...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when the hyphen sits between identifier characters (not a
		// minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a coordinate triple.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %.3f %.3f %.3f)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpGrid wraps a voxel grid so scripts can pass it to stats/hexmesh.
type sexpGrid struct {
	grid *voxel.Grid
}

func (g *sexpGrid) SexpString(ps *zygo.PrintState) string {
	d := g.grid.Dims()
	return fmt.Sprintf("(grid %dx%dx%d occupied %d empty %d)",
		d.X, d.Y, d.Z, g.grid.OccupiedCount(), g.grid.EmptyCount())
}
func (g *sexpGrid) Type() *zygo.RegisteredType { return nil }

// sexpMesh wraps a hexahedral mesh so scripts can pass it to export-gid.
type sexpMesh struct {
	mesh *hexmesh.Mesh
}

func (m *sexpMesh) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(hexmesh nodes %d elements %d)", m.mesh.NodeCount(), m.mesh.ElementCount())
}
func (m *sexpMesh) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string, returning the
// keyword name without the prefix.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || strings.HasPrefix(str.S, kwPrefix) {
		return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
	}
	return str.S, nil
}

func toBool(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	return false, fmt.Errorf("expected bool, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

func toMesh(s zygo.Sexp) (*hexmesh.Mesh, error) {
	if m, ok := s.(*sexpMesh); ok {
		return m.mesh, nil
	}
	return nil, fmt.Errorf("expected hexmesh, got %T (%s)", s, s.SexpString(nil))
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the biomesh pipeline builtins into a zygomys
// environment. The builtins operate on the provided Result, populating it
// during evaluation.
//
// Source code must be preprocessed with preprocessSource() before
// evaluation so that :keyword tokens are converted to recognizable
// string literals.
func registerBuiltins(env *zygo.Zlisp, registry *atom.SpecRegistry, result *Result) {

	// -----------------------------------------------------------------------
	// (vec3 x y z)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3: want 3 numbers, got %d args", len(args))
		}
		var vals [3]float64
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: arg %d: %w", i, err)
			}
			vals[i] = f
		}
		return &sexpVec3{vec: v3.Vec{X: vals[0], Y: vals[1], Z: vals[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (add-atom :element "C" :at (vec3 0 0 0))
	// Appends one atom to the working set, enriched from the registry.
	// -----------------------------------------------------------------------
	env.AddFunction("add_atom", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		elemSexp, ok := pa.kw["element"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("add-atom: missing :element")
		}
		element, err := toString(elemSexp)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("add-atom: element: %w", err)
		}

		pos := v3.Vec{}
		if v, ok := pa.kw["at"]; ok {
			pos, err = toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("add-atom: at: %w", err)
			}
		}

		a, err := atom.NewBuilder(registry).Build(atom.Atom{
			ID:       uint64(len(result.Atoms)),
			Element:  element,
			Position: pos,
		})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("add-atom: %w", err)
		}
		result.Atoms = append(result.Atoms, a)
		return &zygo.SexpInt{Val: int64(len(result.Atoms))}, nil
	})

	// -----------------------------------------------------------------------
	// (load-pdb "structure.pdb")
	// Parses and enriches a PDB file into the working set.
	// -----------------------------------------------------------------------
	env.AddFunction("load_pdb", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("load-pdb: want a file path")
		}
		path, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("load-pdb: %w", err)
		}

		parsed, err := pdb.NewParser(registry).ParseFile(path)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("load-pdb: %w", err)
		}
		enriched, err := atom.NewBuilder(registry).BuildAll(parsed)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("load-pdb: %w", err)
		}
		result.Atoms = enriched
		return &zygo.SexpInt{Val: int64(len(enriched))}, nil
	})

	// -----------------------------------------------------------------------
	// (filter :preset :no-water)
	// (filter :proteins true :water false ...)
	// Narrows the working set by residue category.
	// -----------------------------------------------------------------------
	env.AddFunction("filter", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		f := residue.All()
		if v, ok := pa.kw["preset"]; ok {
			preset, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("filter: preset: %w", err)
			}
			switch preset {
			case "all":
				f = residue.All()
			case "protein":
				f = residue.ProteinOnly()
			case "nucleic":
				f = residue.NucleicAcidOnly()
			case "no-water":
				f = residue.NoWater()
			default:
				return zygo.SexpNull, fmt.Errorf("filter: unknown preset %q", preset)
			}
		}

		for kw, set := range map[string]func(residue.Filter, bool) residue.Filter{
			"proteins": residue.Filter.KeepProteins,
			"nucleic":  residue.Filter.KeepNucleicAcids,
			"water":    residue.Filter.KeepWater,
			"ions":     residue.Filter.KeepIons,
			"others":   residue.Filter.KeepOthers,
		} {
			v, ok := pa.kw[kw]
			if !ok {
				continue
			}
			b, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("filter: %s: %w", kw, err)
			}
			f = set(f, b)
		}

		result.Atoms = f.Apply(result.Atoms)
		return &zygo.SexpInt{Val: int64(len(result.Atoms))}, nil
	})

	// -----------------------------------------------------------------------
	// (voxelize :size 1.0 :padding 2.0)
	// Builds the voxel grid from the working set.
	// -----------------------------------------------------------------------
	env.AddFunction("voxelize", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		size := 1.0
		padding := 0.0
		var err error
		if v, ok := pa.kw["size"]; ok {
			if size, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("voxelize: size: %w", err)
			}
		}
		if v, ok := pa.kw["padding"]; ok {
			if padding, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("voxelize: padding: %w", err)
			}
		}

		grid, err := voxel.NewGrid(result.Atoms, size, padding)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("voxelize: %w", err)
		}
		result.Grid = grid
		return &sexpGrid{grid: grid}, nil
	})

	// -----------------------------------------------------------------------
	// (hexmesh :source :occupied)   or   (hexmesh :source :empty)
	// Builds a hexahedral mesh from the last grid.
	// -----------------------------------------------------------------------
	env.AddFunction("hexmesh", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if result.Grid == nil {
			return zygo.SexpNull, fmt.Errorf("hexmesh: no grid; call voxelize first")
		}
		pa := parseArgs(args)

		source := hexmesh.Occupied
		if v, ok := pa.kw["source"]; ok {
			src, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("hexmesh: source: %w", err)
			}
			switch src {
			case "occupied":
				source = hexmesh.Occupied
			case "empty":
				source = hexmesh.Empty
			default:
				return zygo.SexpNull, fmt.Errorf("hexmesh: unknown source %q", src)
			}
		}

		m := hexmesh.Build(result.Grid, source)
		result.Meshes = append(result.Meshes, m)
		return &sexpMesh{mesh: m}, nil
	})

	// -----------------------------------------------------------------------
	// (export-gid mesh "out.msh")
	// -----------------------------------------------------------------------
	env.AddFunction("export_gid", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("export-gid: want a mesh and a file path")
		}
		m, err := toMesh(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("export-gid: %w", err)
		}
		path, err := toString(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("export-gid: %w", err)
		}

		if err := gid.ExportFile(m, path); err != nil {
			return zygo.SexpNull, fmt.Errorf("export-gid: %w", err)
		}
		result.Exports = append(result.Exports, path)
		return &zygo.SexpStr{S: path}, nil
	})

	// -----------------------------------------------------------------------
	// (stats)
	// Returns a grid statistics summary string.
	// -----------------------------------------------------------------------
	env.AddFunction("stats", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if result.Grid == nil {
			return zygo.SexpNull, fmt.Errorf("stats: no grid; call voxelize first")
		}
		g := result.Grid
		d := g.Dims()
		s := fmt.Sprintf("grid %dx%dx%d, %d voxels (%d occupied, %d empty), voxel size %g",
			d.X, d.Y, d.Z, g.TotalCount(), g.OccupiedCount(), g.EmptyCount(), g.VoxelSize())
		return &zygo.SexpStr{S: s}, nil
	})
}
