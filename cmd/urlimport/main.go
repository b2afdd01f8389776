// Package main provides the urlimport CLI: resolve, import and run units published on
// a remote origin, or publish a local directory as one.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/urlimport/internal/compile"
)

var rootCmd = &cobra.Command{
	Use:   "urlimport",
	Short: "Import shell and CUE units from a remote directory listing",
	Long: `urlimport resolves dotted names against a web origin that publishes an
Apache-style directory listing. A listed "name.sh" or "name.cue" is a plain unit;
a listed "name/" directory with an __init__ unit is a package whose children
resolve against the directory's own listing.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		var exitErr *compile.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
