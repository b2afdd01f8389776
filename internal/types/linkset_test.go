package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinkSet_Has(t *testing.T) {
	set := NewLinkSet("pkg", "mod.sh", "")

	assert.True(t, set.Has("pkg"))
	assert.True(t, set.Has("mod.sh"))
	assert.False(t, set.Has("mod"))
	assert.False(t, set.Has(""))
	assert.Equal(t, 2, set.Len())
}

func TestLinkSet_NamesSorted(t *testing.T) {
	set := NewLinkSet("zeta.sh", "alpha", "mid.cue", "alpha")
	assert.Equal(t, []string{"alpha", "mid.cue", "zeta.sh"}, set.Names())
}

func TestLinkSet_ZeroValue(t *testing.T) {
	var set LinkSet
	assert.Equal(t, 0, set.Len())
	assert.False(t, set.Has("anything"))
	assert.Empty(t, set.Names())
}
