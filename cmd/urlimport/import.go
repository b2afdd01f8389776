package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/urlimport/internal/importer"
	"github.com/jonathan/urlimport/internal/observability"
)

var importConcurrency int

var importCmd = &cobra.Command{
	Use:   "import NAME...",
	Short: "Import units concurrently and summarize them",
	Long:  "Fetches and compiles each named unit, importing parent packages first, and prints one line per module.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runImport,
}

func init() {
	importCmd.Flags().IntVarP(&importConcurrency, "jobs", "j", importer.DefaultConcurrency, "Number of imports to run at once")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	chain, cache, err := a.finders()
	if err != nil {
		return err
	}
	imp := importer.New(chain, importer.WithLogger(a.logger), importer.WithConcurrency(importConcurrency))

	mods, err := imp.ImportAll(cmd.Context(), args...)
	if err != nil {
		return a.importError("import failed", err)
	}

	for _, mod := range mods {
		if a.printer != nil {
			a.printer.PrintModule(mod)
			continue
		}
		line := fmt.Sprintf("%s\t%s\t%s", mod.Name, mod.Program.Kind(), mod.File)
		if defs := observability.Definitions(mod.Program); len(defs) > 0 {
			line += "\t" + strings.Join(defs, ",")
		}
		_, _ = fmt.Fprintln(a.out, line)
	}
	a.printCacheStats(cache)
	return nil
}
