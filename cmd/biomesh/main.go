package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "biomesh",
	Short: "Voxel-based hexahedral mesh generator for molecular structures",
	Long: `biomesh converts molecular structures (PDB files) into hexahedral
finite element meshes. Atoms are modeled as van der Waals spheres,
rasterized onto a regular voxel grid, and the occupied (or empty) cells
are emitted as a conforming hexahedral mesh in GiD format.`,
	Version: "1.0.0",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
