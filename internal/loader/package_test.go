package loader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/urlimport/internal/compile"
)

func TestPackageLoader_Materialize(t *testing.T) {
	pkgOrigin := root.Join("pkg")
	fetcher := newFakeFetcher(map[string]string{"http://x/pkg/__init__.sh": "PKG=1"})
	p := NewPackageLoader(pkgOrigin, fetcher, compile.NewShell())

	assert.Equal(t, "http://x/pkg/__init__.sh", p.IndexURL())
	assert.Equal(t, pkgOrigin, p.Origin())

	mod, err := p.Materialize(context.Background(), "pkg")
	require.NoError(t, err)
	assert.Equal(t, "pkg", mod.Name)
	assert.True(t, mod.Package)
	assert.Equal(t, []string{"http://x/pkg"}, mod.Path)
	assert.Equal(t, "http://x/pkg/__init__.sh", mod.File)
}

func TestPackageLoader_RemembersIndex(t *testing.T) {
	fetcher := newFakeFetcher(map[string]string{"http://x/pkg/__init__.sh": "true"})
	p := NewPackageLoader(root.Join("pkg"), fetcher, compile.NewShell())

	first, err := p.Materialize(context.Background(), "pkg")
	require.NoError(t, err)
	second, err := p.Materialize(context.Background(), "pkg")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, fetcher.callsFor("http://x/pkg/__init__.sh"))
}

func TestPackageLoader_IndexMissing(t *testing.T) {
	p := NewPackageLoader(root.Join("pkg"), newFakeFetcher(nil), compile.NewShell())

	_, err := p.Materialize(context.Background(), "pkg")
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "http://x/pkg/__init__.sh", loadErr.URL)
}

func TestPackageLoader_FailureIsNotRemembered(t *testing.T) {
	fetcher := newFakeFetcher(nil)
	p := NewPackageLoader(root.Join("pkg"), fetcher, compile.NewShell())

	_, err := p.Materialize(context.Background(), "pkg")
	require.Error(t, err)

	fetcher.mu.Lock()
	fetcher.sources = map[string]string{"http://x/pkg/__init__.sh": "true"}
	fetcher.mu.Unlock()

	mod, err := p.Materialize(context.Background(), "pkg")
	require.NoError(t, err)
	assert.True(t, mod.Package)
}
