package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/urlimport/internal/importer"
	"github.com/jonathan/urlimport/internal/types"
)

var runCmd = &cobra.Command{
	Use:   "run NAME [-- ARGS...]",
	Short: "Import a unit and execute it",
	Long: `Imports NAME and runs its program. Shell units run in an embedded interpreter
with ARGS as positional parameters; CUE units are validated and printed as JSON,
with an optional first ARG selecting a path inside the value.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	chain, _, err := a.finders()
	if err != nil {
		return err
	}
	imp := importer.New(chain, importer.WithLogger(a.logger))

	name := args[0]
	mod, err := imp.Import(cmd.Context(), name)
	if err != nil {
		return a.importError("failed to import "+name, err)
	}
	if a.printer != nil {
		a.printer.PrintModule(mod)
	}

	stdio := types.Stdio{In: cmd.InOrStdin(), Out: a.out, Err: cmd.ErrOrStderr()}
	return mod.Program.Run(cmd.Context(), stdio, args[1:]...)
}
