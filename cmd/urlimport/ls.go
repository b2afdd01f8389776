package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/urlimport/internal/fetch"
)

var lsCmd = &cobra.Command{
	Use:   "ls [origin]",
	Short: "List the entries an origin publishes",
	Long:  "Scrapes the origin's directory listing and prints each entry. Directories are shown without their trailing slash.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLs,
}

func init() {
	rootCmd.AddCommand(lsCmd)
}

func runLs(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	var arg string
	if len(args) > 0 {
		arg = args[0]
	}
	origin, err := a.origin(arg)
	if err != nil {
		return err
	}

	links := a.scraper(fetch.NewClient(a.cfg.FetchOptions())).Links(cmd.Context(), origin)
	if a.printer != nil {
		a.printer.PrintLinkSet(origin, links)
		return nil
	}
	for _, name := range links.Names() {
		_, _ = fmt.Fprintln(a.out, name)
	}
	return nil
}
