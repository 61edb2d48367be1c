package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndLookup(t *testing.T) {
	registry := NewRegistry()
	mock := NewMock("fast", nil)

	require.NoError(t, registry.Register(mock))

	got, err := registry.Lookup("fast")
	require.NoError(t, err)
	assert.Equal(t, "fast", got.Name())
}

func TestRegistry_DuplicateNameRejected(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(NewMock("dup", nil)))

	err := registry.Register(NewMock("dup", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegistry_LookupUnknownFails(t *testing.T) {
	registry := NewRegistry()

	got, err := registry.Lookup("missing")
	require.Error(t, err)
	assert.Nil(t, got)
}

func TestRegistry_NamesSorted(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(NewMock("zeta", nil)))
	require.NoError(t, registry.Register(NewMock("alpha", nil)))
	require.NoError(t, registry.Register(NewMock("mid", nil)))

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, registry.Names())
}
