package loader

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/urlimport/internal/compile"
	"github.com/jonathan/urlimport/internal/fetch"
	"github.com/jonathan/urlimport/internal/types"
)

type fakeFetcher struct {
	mu      sync.Mutex
	sources map[string]string
	calls   map[string]int
}

func newFakeFetcher(sources map[string]string) *fakeFetcher {
	return &fakeFetcher{sources: sources, calls: make(map[string]int)}
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[url]++
	src, ok := f.sources[url]
	if !ok {
		return nil, errors.New("HTTP status 404")
	}
	return []byte(src), nil
}

func (f *fakeFetcher) callsFor(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

var root = types.NewOrigin("http://x")

func TestModuleLoader_Materialize(t *testing.T) {
	fetcher := newFakeFetcher(map[string]string{"http://x/mod.sh": `echo "mod $1"`})
	l := NewModuleLoader(root, fetcher, compile.NewShell())

	mod, err := l.Materialize(context.Background(), "mod")
	require.NoError(t, err)
	assert.Equal(t, "mod", mod.Name)
	assert.Equal(t, "http://x/mod.sh", mod.File)
	assert.False(t, mod.Package)
	assert.Nil(t, mod.Path)

	var out bytes.Buffer
	require.NoError(t, mod.Program.Run(context.Background(), types.Stdio{Out: &out}, "ran"))
	assert.Equal(t, "mod ran\n", out.String())
}

func TestModuleLoader_UsesLeafOfDottedName(t *testing.T) {
	pkgOrigin := root.Join("pkg")
	fetcher := newFakeFetcher(map[string]string{"http://x/pkg/sub.sh": "true"})
	l := NewModuleLoader(pkgOrigin, fetcher, compile.NewShell())

	mod, err := l.Materialize(context.Background(), "pkg.sub")
	require.NoError(t, err)
	assert.Equal(t, "pkg.sub", mod.Name)
	assert.Equal(t, "http://x/pkg/sub.sh", mod.File)
	assert.Equal(t, pkgOrigin, l.Origin())
}

func TestModuleLoader_StatelessAcrossNames(t *testing.T) {
	fetcher := newFakeFetcher(map[string]string{
		"http://x/a.sh": "true",
		"http://x/b.sh": "true",
	})
	l := NewModuleLoader(root, fetcher, compile.NewShell())

	a, err := l.Materialize(context.Background(), "a")
	require.NoError(t, err)
	b, err := l.Materialize(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, "a", a.Name)
	assert.Equal(t, "b", b.Name)

	// Plain units are fetched on every materialize.
	_, err = l.Materialize(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.callsFor("http://x/a.sh"))
}

func TestModuleLoader_LoadError(t *testing.T) {
	l := NewModuleLoader(root, newFakeFetcher(nil), compile.NewShell())

	_, err := l.Materialize(context.Background(), "missing")
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "missing", loadErr.Name)
	assert.Equal(t, "http://x/missing.sh", loadErr.URL)
	assert.Contains(t, err.Error(), "404")
}

func TestModuleLoader_CompileError(t *testing.T) {
	fetcher := newFakeFetcher(map[string]string{"http://x/bad.cue": "a: {"})
	l := NewModuleLoader(root, fetcher, compile.NewCUE())

	_, err := l.Materialize(context.Background(), "bad")
	require.Error(t, err)

	var compileErr *CompileError
	require.ErrorAs(t, err, &compileErr)
	var syntaxErr *compile.SyntaxError
	assert.ErrorAs(t, err, &syntaxErr)

	var loadErr *LoadError
	assert.False(t, errors.As(err, &loadErr))
}

func TestModuleLoader_OverHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/settings.cue" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`port: 15000`))
	}))
	defer server.Close()

	l := NewModuleLoader(types.NewOrigin(server.URL), fetch.NewClient(nil), compile.NewCUE())

	mod, err := l.Materialize(context.Background(), "settings")
	require.NoError(t, err)
	var out bytes.Buffer
	require.NoError(t, mod.Program.Run(context.Background(), types.Stdio{Out: &out}))
	assert.JSONEq(t, `{"port": 15000}`, out.String())

	_, err = l.Materialize(context.Background(), "absent")
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	var fetchErr *fetch.Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
}
