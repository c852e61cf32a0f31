package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pausalinas/biomesh/pkg/atom"
	"github.com/pausalinas/biomesh/pkg/engine"
)

var scriptCmd = &cobra.Command{
	Use:   "script [file]",
	Short: "Run a biomesh Lisp script",
	Long: `Evaluate a biomesh script in a sandboxed interpreter. Scripts drive
the pipeline with builtins such as (load-pdb ...), (filter ...),
(voxelize ...), (hexmesh ...), and (export-gid ...).`,
	Args: cobra.ExactArgs(1),
	Run:  runScript,
}

func init() {
	rootCmd.AddCommand(scriptCmd)
}

func runScript(cmd *cobra.Command, args []string) {
	filename := args[0]

	source, err := os.ReadFile(filename)
	if err != nil {
		log.WithError(err).Fatal("reading script")
	}

	eng := engine.NewEngine(atom.NewSpecRegistry())
	result, evalErrs, err := eng.Evaluate(string(source))
	if err != nil {
		log.WithError(err).Fatal("evaluating script")
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			if e.Line > 0 {
				fmt.Fprintf(os.Stderr, "%s:%d: %s\n", filename, e.Line, e.Message)
			} else {
				fmt.Fprintf(os.Stderr, "%s: %s\n", filename, e.Message)
			}
		}
		os.Exit(1)
	}

	fields := log.Fields{"atoms": len(result.Atoms), "meshes": len(result.Meshes)}
	if result.Grid != nil {
		fields["voxels"] = result.Grid.TotalCount()
		fields["occupied"] = result.Grid.OccupiedCount()
	}
	log.WithFields(fields).Info("script complete")

	for _, path := range result.Exports {
		log.WithField("file", path).Info("wrote mesh")
	}
}
