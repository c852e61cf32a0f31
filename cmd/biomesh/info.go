package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pausalinas/biomesh/pkg/atom"
	"github.com/pausalinas/biomesh/pkg/geometry"
	"github.com/pausalinas/biomesh/pkg/pdb"
	"github.com/pausalinas/biomesh/pkg/residue"
)

var infoCmd = &cobra.Command{
	Use:   "info [file]",
	Short: "Display information about a PDB structure",
	Long:  "Show atom counts per element, residue categories, and the bounding box of the structure.",
	Args:  cobra.ExactArgs(1),
	Run:   runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) {
	filename := args[0]

	registry := atom.NewSpecRegistry()
	parsed, err := pdb.NewParser(registry).ParseFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing PDB file: %v\n", err)
		os.Exit(1)
	}
	atoms, err := atom.NewBuilder(registry).BuildAll(parsed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error enriching atoms: %v\n", err)
		os.Exit(1)
	}

	box, err := geometry.New(atoms, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing bounding box: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("PDB Structure Information")
	fmt.Println("=========================")
	fmt.Printf("File: %s\n\n", filename)

	fmt.Printf("Atoms: %d\n\n", len(atoms))

	fmt.Println("Elements:")
	counts := map[string]int{}
	for _, a := range atoms {
		counts[a.Element]++
	}
	elements := make([]string, 0, len(counts))
	for e := range counts {
		elements = append(elements, e)
	}
	sort.Strings(elements)
	for _, e := range elements {
		fmt.Printf("  %-2s %d\n", e, counts[e])
	}
	fmt.Println()

	fmt.Println("Residue categories:")
	var protein, nucleic, water, ion, other int
	for _, a := range atoms {
		switch {
		case residue.IsProtein(a.ResidueName):
			protein++
		case residue.IsNucleicAcid(a.ResidueName):
			nucleic++
		case residue.IsWater(a.ResidueName):
			water++
		case residue.IsIon(a.ResidueName):
			ion++
		default:
			other++
		}
	}
	fmt.Printf("  Protein: %d\n", protein)
	fmt.Printf("  Nucleic: %d\n", nucleic)
	fmt.Printf("  Water:   %d\n", water)
	fmt.Printf("  Ions:    %d\n", ion)
	fmt.Printf("  Other:   %d\n\n", other)

	min, max := box.Min(), box.Max()
	dims := box.Dimensions()
	fmt.Println("Bounding box (atom spheres, no padding):")
	fmt.Printf("  Min: (%.3f, %.3f, %.3f)\n", min.X, min.Y, min.Z)
	fmt.Printf("  Max: (%.3f, %.3f, %.3f)\n", max.X, max.Y, max.Z)
	fmt.Printf("  Dimensions: %.3f x %.3f x %.3f\n", dims.X, dims.Y, dims.Z)
	fmt.Printf("  Volume: %.3f cubic angstroms\n", box.Volume())
}
