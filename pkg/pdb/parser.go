// Package pdb reads atoms from Protein Data Bank structure files. Only
// ATOM and HETATM records are consumed; everything else is ignored.
// Parsed atoms carry element, coordinates, and residue context but no
// physical properties; enrichment is the atom.Builder's job.
package pdb

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/pausalinas/biomesh/pkg/atom"
)

// ErrNoAtomRecords is returned when the input contains no parseable ATOM
// or HETATM record.
var ErrNoAtomRecords = errors.New("pdb: no valid ATOM or HETATM records found")

// Parser extracts atoms from PDB content. The registry is used to
// validate element symbols during extraction; it is shared with the
// caller, never owned.
type Parser struct {
	registry *atom.SpecRegistry
}

// NewParser returns a Parser validating elements against the registry.
func NewParser(registry *atom.SpecRegistry) *Parser {
	return &Parser{registry: registry}
}

// ParseFile reads and parses a PDB file.
func (p *Parser) ParseFile(path string) ([]atom.Atom, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pdb: open %s: %w", path, err)
	}
	defer f.Close()

	atoms, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("pdb: parse %s: %w", path, err)
	}
	return atoms, nil
}

// Parse reads PDB records from r. Malformed atom lines are skipped; an
// input that yields zero atoms is an error.
func (p *Parser) Parse(r io.Reader) ([]atom.Atom, error) {
	var atoms []atom.Atom
	var id uint64

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "ATOM") && !strings.HasPrefix(line, "HETATM") {
			continue
		}
		a, ok := p.parseAtomLine(line, id)
		if !ok {
			continue
		}
		atoms = append(atoms, a)
		id++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("pdb: read: %w", err)
	}
	if len(atoms) == 0 {
		return nil, ErrNoAtomRecords
	}
	return atoms, nil
}

// PDB fixed-column layout for ATOM/HETATM records (1-based, inclusive):
// 13-16 atom name, 18-20 residue name, 22 chain, 23-26 residue number,
// 31-38 x, 39-46 y, 47-54 z, 77-78 element symbol.
func (p *Parser) parseAtomLine(line string, id uint64) (atom.Atom, bool) {
	if len(line) < 54 {
		return atom.Atom{}, false // too short to hold coordinates
	}

	x, okX := parseCoord(line, 30, 8)
	y, okY := parseCoord(line, 38, 8)
	z, okZ := parseCoord(line, 46, 8)
	if !okX || !okY || !okZ {
		return atom.Atom{}, false
	}

	atomName := strings.TrimSpace(column(line, 12, 4))
	residueName := strings.TrimSpace(column(line, 17, 3))

	var chainID byte = ' '
	if len(line) >= 22 {
		chainID = line[21]
	}

	residueNumber := 0
	if s := strings.TrimSpace(column(line, 22, 4)); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			residueNumber = n
		}
	}

	element := p.resolveElement(line, atomName, residueName)
	if element == "" {
		return atom.Atom{}, false
	}

	return atom.Atom{
		ID:            id,
		Element:       element,
		Position:      v3.Vec{X: x, Y: y, Z: z},
		AtomName:      atomName,
		ResidueName:   residueName,
		ResidueNumber: residueNumber,
		ChainID:       chainID,
	}, true
}

// resolveElement determines the element symbol, preferring the standard
// element columns 77-78 and falling back to atom-name extraction with
// residue context.
func (p *Parser) resolveElement(line, atomName, residueName string) string {
	if len(line) >= 78 {
		element := normalizeSymbol(strings.TrimSpace(line[76:78]))
		if element != "" && p.registry.Has(element) {
			return element
		}
	}
	return p.extractElement(atomName, residueName)
}

// extractElement derives the element from a PDB atom name. Ambiguous
// names are resolved with residue context first; then two-letter symbols
// are tried before single-letter ones.
func (p *Parser) extractElement(atomName, residueName string) string {
	name := strings.TrimSpace(atomName)
	if name == "" {
		return ""
	}

	if resolved := resolveAmbiguous(name, residueName); resolved != "" && p.registry.Has(resolved) {
		return resolved
	}

	if len(name) > 1 {
		two := normalizeSymbol(name[:2])
		if p.registry.Has(two) {
			return two
		}
	}
	one := strings.ToUpper(name[:1])
	if p.registry.Has(one) {
		return one
	}
	return ""
}

// resolveAmbiguous handles atom names whose element depends on the
// residue. "CA" is the alpha carbon inside an amino acid but calcium in
// a metal site.
func resolveAmbiguous(atomName, residueName string) string {
	if atomName != "CA" {
		return ""
	}
	if isAminoAcid(residueName) {
		return "C"
	}
	return "Ca"
}

var aminoAcids = map[string]bool{
	"ALA": true, "ARG": true, "ASN": true, "ASP": true, "CYS": true,
	"GLN": true, "GLU": true, "GLY": true, "HIS": true, "ILE": true,
	"LEU": true, "LYS": true, "MET": true, "PHE": true, "PRO": true,
	"SER": true, "THR": true, "TRP": true, "TYR": true, "VAL": true,
	"SEC": true, "PYL": true,
}

func isAminoAcid(residueName string) bool {
	return aminoAcids[strings.ToUpper(residueName)]
}

// normalizeSymbol maps a raw symbol to canonical element casing:
// leading capital, rest lower ("CL" -> "Cl").
func normalizeSymbol(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// column returns the slice of line at [start, start+length), clipped to
// the line's end.
func column(line string, start, length int) string {
	if start >= len(line) {
		return ""
	}
	end := start + length
	if end > len(line) {
		end = len(line)
	}
	return line[start:end]
}

func parseCoord(line string, start, length int) (float64, bool) {
	s := strings.TrimSpace(column(line, start, length))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
