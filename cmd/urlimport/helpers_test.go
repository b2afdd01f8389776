package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/urlimport/internal/config"
	"github.com/jonathan/urlimport/internal/server"
	"github.com/jonathan/urlimport/internal/server/ratelimit"
)

var units = map[string]string{
	"greet.sh":         "greet() { echo \"hello $1\"; }\ngreet \"$1\"\n",
	"fail.sh":          "exit 3\n",
	"conf.cue":         "server: {\n\thost: \"localhost\"\n\tport: 8080\n}\n",
	"pkg/__init__.sh":  "PKG=1\n",
	"pkg/sub.sh":       "echo sub\n",
	"pkg/settings.cue": "debug: true\n",
}

// newOrigin publishes files through the origin server.
func newOrigin(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}

	s, err := server.New(server.Config{Dir: dir, RateLimit: &ratelimit.Config{Enabled: false}})
	require.NoError(t, err)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv.URL
}

// clearEnv keeps variables from the developer's shell or .env out of the tests.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{config.EnvOrigin, config.EnvKind, config.EnvTimeout, config.EnvUserAgent, config.EnvLogLevel} {
		t.Setenv(key, "")
	}
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// executeCommand runs the CLI in-process and returns what it wrote to stdout and stderr.
func executeCommand(t *testing.T, ctx context.Context, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(bytes.NewReader(nil))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}
