package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/urlimport/internal/server"
	"github.com/jonathan/urlimport/internal/server/ratelimit"
)

var (
	serveDir  string
	servePort int
	serveAddr string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Publish a local directory as an origin",
	Long:  `Start an HTTP server that serves a directory as Apache-style listings and raw unit sources.`,
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveDir, "dir", "d", ".", "Directory to publish")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8000, "Port to listen on")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address, overrides --port (e.g. 127.0.0.1:8000)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	sc := a.cfg.Server
	if cmd.Flags().Changed("dir") {
		sc.Dir = serveDir
	}
	if cmd.Flags().Changed("port") {
		sc.Port = servePort
	}

	rl := ratelimit.DefaultConfig()
	rl.Enabled = sc.RateLimit.IsEnabled()
	rl.Limit = sc.RateLimit.Limit
	rl.Window = time.Duration(sc.RateLimit.Window)

	srv, err := server.New(server.Config{
		Dir:       sc.Dir,
		Port:      sc.Port,
		Addr:      serveAddr,
		RateLimit: ratelimit.FromEnv(rl),
		Logger:    a.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.ListenAndServe(cmd.Context())
}
