package engine

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(add-atom :element "C")`,
			expect: `(add_atom "__kw_element" "C")`,
		},
		{
			name:   "multiple keywords",
			input:  `(voxelize :size 1.0 :padding 2.0)`,
			expect: `(voxelize "__kw_size" 1.0 "__kw_padding" 2.0)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(load-pdb "dna.pdb")`,
			expect: `(load_pdb "dna.pdb")`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:no-water`,
			expect: `"__kw_no-water"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Pipeline builtin tests
// ---------------------------------------------------------------------------

func TestAddAtomEnriches(t *testing.T) {
	eng := newTestEngine()

	source := `
(add-atom :element "C" :at (vec3 1 2 3))
(add-atom :element "H" :at (vec3 4 5 6))
`
	res, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if len(res.Atoms) != 2 {
		t.Fatalf("expected 2 atoms, got %d", len(res.Atoms))
	}

	c := res.Atoms[0]
	if c.Element != "C" {
		t.Errorf("expected element C, got %s", c.Element)
	}
	if c.Radius != 1.70 {
		t.Errorf("expected carbon radius 1.70, got %f", c.Radius)
	}
	if c.Position.X != 1 || c.Position.Y != 2 || c.Position.Z != 3 {
		t.Errorf("unexpected position: %+v", c.Position)
	}

	h := res.Atoms[1]
	if h.Radius != 1.20 || math.Abs(h.Mass-1.008) > 1e-9 {
		t.Errorf("expected hydrogen 1.20/1.008, got %f/%f", h.Radius, h.Mass)
	}
}

func TestVoxelizeBuildsGrid(t *testing.T) {
	eng := newTestEngine()

	// A lone carbon (radius 1.70) at the origin spans a 3.4 cube, so
	// unit voxels give a 4x4x4 grid.
	source := `
(add-atom :element "C" :at (vec3 0 0 0))
(voxelize :size 1.0)
`
	res, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if res.Grid == nil {
		t.Fatal("expected grid in result")
	}
	if res.Grid.TotalCount() != 64 {
		t.Errorf("expected 64 voxels, got %d", res.Grid.TotalCount())
	}
	if res.Grid.OccupiedCount() == 0 {
		t.Error("expected some occupied voxels")
	}
	if res.Grid.OccupiedCount()+res.Grid.EmptyCount() != res.Grid.TotalCount() {
		t.Error("occupied + empty should equal total")
	}
}

func TestVoxelizeWithoutAtoms(t *testing.T) {
	eng := newTestEngine()

	res, evalErrs, err := eng.Evaluate(`(voxelize :size 1.0)`)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if res != nil {
		t.Fatal("expected nil result")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval error for voxelize without atoms")
	}
}

func TestHexmeshSources(t *testing.T) {
	eng := newTestEngine()

	source := `
(add-atom :element "C" :at (vec3 0 0 0))
(voxelize :size 1.0)
(hexmesh :source :occupied)
(hexmesh :source :empty)
`
	res, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if len(res.Meshes) != 2 {
		t.Fatalf("expected 2 meshes, got %d", len(res.Meshes))
	}
	if res.Meshes[0].ElementCount() != res.Grid.OccupiedCount() {
		t.Errorf("occupied mesh has %d elements, grid has %d occupied voxels",
			res.Meshes[0].ElementCount(), res.Grid.OccupiedCount())
	}
	if res.Meshes[1].ElementCount() != res.Grid.EmptyCount() {
		t.Errorf("empty mesh has %d elements, grid has %d empty voxels",
			res.Meshes[1].ElementCount(), res.Grid.EmptyCount())
	}
}

func TestHexmeshRequiresGrid(t *testing.T) {
	eng := newTestEngine()

	res, evalErrs, err := eng.Evaluate(`(hexmesh :source :occupied)`)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if res != nil {
		t.Fatal("expected nil result")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval error for hexmesh before voxelize")
	}
	if !strings.Contains(evalErrs[0].Message, "voxelize") {
		t.Errorf("error should point at voxelize, got: %s", evalErrs[0].Message)
	}
}

func TestExportGid(t *testing.T) {
	eng := newTestEngine()
	out := filepath.Join(t.TempDir(), "out.msh")

	source := fmt.Sprintf(`
(add-atom :element "C" :at (vec3 0 0 0))
(voxelize :size 1.0)
(export-gid (hexmesh :source :occupied) %q)
(stats)
`, out)
	res, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if len(res.Exports) != 1 || res.Exports[0] != out {
		t.Fatalf("expected export record for %s, got %v", out, res.Exports)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading exported file: %v", err)
	}
	if !strings.HasPrefix(string(data), "MESH dimension 3 ElemType Hexahedra Nnode 8") {
		t.Errorf("unexpected file header: %q", string(data[:40]))
	}
}

func TestUnknownPreset(t *testing.T) {
	eng := newTestEngine()

	res, evalErrs, err := eng.Evaluate(`(filter :preset :bogus)`)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if res != nil {
		t.Fatal("expected nil result")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval error for unknown preset")
	}
}

func TestVec3Arity(t *testing.T) {
	eng := newTestEngine()

	res, evalErrs, err := eng.Evaluate(`(vec3 1 2)`)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if res != nil {
		t.Fatal("expected nil result")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval error for short vec3")
	}
}

// ---------------------------------------------------------------------------
// PDB loading and filtering
// ---------------------------------------------------------------------------

func pdbLine(record string, serial int, name, resName, chain string, resSeq int, x, y, z float64, element string) string {
	return fmt.Sprintf("%-6s%5d %-4s %-3s %1s%4d    %8.3f%8.3f%8.3f%6.2f%6.2f          %2s",
		record, serial, name, resName, chain, resSeq, x, y, z, 1.0, 0.0, element)
}

func writeTestPDB(t *testing.T) string {
	t.Helper()
	lines := []string{
		pdbLine("ATOM", 1, "N", "ALA", "A", 1, 0, 0, 0, "N"),
		pdbLine("ATOM", 2, "CA", "ALA", "A", 1, 1.5, 0, 0, "C"),
		pdbLine("ATOM", 3, "C", "ALA", "A", 1, 2.5, 1.0, 0, "C"),
		pdbLine("HETATM", 4, "O", "HOH", "A", 2, 8, 8, 8, "O"),
	}
	path := filepath.Join(t.TempDir(), "test.pdb")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("writing test pdb: %v", err)
	}
	return path
}

func TestLoadPDB(t *testing.T) {
	eng := newTestEngine()
	path := writeTestPDB(t)

	res, evalErrs, err := eng.Evaluate(fmt.Sprintf(`(load-pdb %q)`, path))
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if len(res.Atoms) != 4 {
		t.Fatalf("expected 4 atoms, got %d", len(res.Atoms))
	}
	if res.Atoms[0].Element != "N" || res.Atoms[0].Radius != 1.55 {
		t.Errorf("first atom should be enriched nitrogen, got %s/%f",
			res.Atoms[0].Element, res.Atoms[0].Radius)
	}
}

func TestLoadPDBMissingFile(t *testing.T) {
	eng := newTestEngine()

	res, evalErrs, err := eng.Evaluate(`(load-pdb "/nonexistent/file.pdb")`)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if res != nil {
		t.Fatal("expected nil result")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval error for missing file")
	}
}

func TestFilterPreset(t *testing.T) {
	eng := newTestEngine()
	path := writeTestPDB(t)

	source := fmt.Sprintf(`
(load-pdb %q)
(filter :preset :no-water)
`, path)
	res, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if len(res.Atoms) != 3 {
		t.Fatalf("expected 3 atoms after no-water filter, got %d", len(res.Atoms))
	}
	for _, a := range res.Atoms {
		if a.ResidueName == "HOH" {
			t.Errorf("water atom survived the filter: %+v", a)
		}
	}
}

func TestFilterFlags(t *testing.T) {
	eng := newTestEngine()
	path := writeTestPDB(t)

	// Keep only the water.
	source := fmt.Sprintf(`
(load-pdb %q)
(filter :proteins false :nucleic false :ions false :others false)
`, path)
	res, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if len(res.Atoms) != 1 {
		t.Fatalf("expected 1 atom, got %d", len(res.Atoms))
	}
	if res.Atoms[0].ResidueName != "HOH" {
		t.Errorf("expected the water atom, got %s", res.Atoms[0].ResidueName)
	}
}

// Full script exercising the entire pipeline end to end.
func TestFullPipelineScript(t *testing.T) {
	eng := newTestEngine()
	path := writeTestPDB(t)
	out := filepath.Join(t.TempDir(), "mesh.msh")

	source := fmt.Sprintf(`
; load the structure, drop solvent, voxelize and mesh
(load-pdb %q)
(filter :preset :no-water)
(voxelize :size 0.5 :padding 1.0)
(export-gid (hexmesh :source :occupied) %q)
`, path, out)

	res, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if res.Grid == nil || len(res.Meshes) != 1 || len(res.Exports) != 1 {
		t.Fatalf("incomplete pipeline result: %+v", res)
	}
	if res.Meshes[0].ElementCount() != res.Grid.OccupiedCount() {
		t.Error("mesh element count should match occupied voxel count")
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("expected export file: %v", err)
	}
}
