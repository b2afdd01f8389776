package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/urlimport/internal/importer"
	"github.com/jonathan/urlimport/internal/loader"
	"github.com/jonathan/urlimport/internal/observability"
	"github.com/jonathan/urlimport/internal/resolver"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve NAME...",
	Short: "Show which origin would serve each name",
	Long: `Resolves each dotted name without fetching plain units. Parent packages are
imported first so that nested names resolve against the package's own listing.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	chain, cache, err := a.finders()
	if err != nil {
		return err
	}
	imp := importer.New(chain, importer.WithLogger(a.logger))

	results := make([]observability.Resolution, 0, len(args))
	missing := 0
	for _, name := range args {
		res, err := resolveOne(cmd, chain, imp, name)
		if err != nil {
			return err
		}
		if !res.Found {
			missing++
		}
		results = append(results, res)
	}

	if a.printer != nil {
		a.printer.PrintResolutions(results)
		a.printCacheStats(cache)
	} else {
		for _, r := range results {
			if !r.Found {
				_, _ = fmt.Fprintf(a.out, "%s\tnot found\n", r.Name)
				continue
			}
			what := "module"
			if r.Package {
				what = "package"
			}
			_, _ = fmt.Fprintf(a.out, "%s\t%s\t%s\t%s\n", r.Name, what, r.Origin, r.Finder)
		}
	}

	if missing > 0 {
		return fmt.Errorf("%d of %d names not found", missing, len(args))
	}
	return nil
}

// resolveOne asks each finder in turn so the answering finder can be reported.
func resolveOne(cmd *cobra.Command, chain *resolver.Chain, imp *importer.Importer, name string) (observability.Resolution, error) {
	res := observability.Resolution{Name: name}

	req, err := imp.Request(cmd.Context(), name)
	if err != nil {
		var notFound *importer.NotFoundError
		if errors.As(err, &notFound) {
			return res, nil
		}
		return res, fmt.Errorf("failed to import parent of %s: %w", name, err)
	}

	for _, f := range chain.Finders() {
		l, ok := f.Find(cmd.Context(), req)
		if !ok {
			continue
		}
		res.Found = true
		res.Finder = f.Name()
		switch l := l.(type) {
		case *loader.PackageLoader:
			res.Package = true
			res.Origin = l.Origin()
		case *loader.ModuleLoader:
			res.Origin = l.Origin()
		}
		return res, nil
	}
	return res, nil
}
