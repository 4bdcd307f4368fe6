package strata

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefinitionError(t *testing.T) {
	t.Parallel()

	err := NewDefinitionError("num_spots", "precision must be greater than zero")
	assert.EqualError(t, err, "strata: num_spots: precision must be greater than zero")
	assert.True(t, IsDefinition(err))
	assert.True(t, IsDefinition(fmt.Errorf("compile: %w", err)))
	assert.False(t, IsDefinition(errors.New("other")))
	assert.False(t, IsDefinition(nil))

	withModel := &DefinitionError{Model: "Beetle", Property: "num_spots", Reason: "bad scale"}
	assert.EqualError(t, withModel, "strata: Beetle.num_spots: bad scale")
}

func TestUsageError(t *testing.T) {
	t.Parallel()

	err := NewUsageError("lazy context", ErrEmptyLazyContext)
	require.True(t, IsUsage(err))
	assert.True(t, errors.Is(err, ErrEmptyLazyContext))
	assert.EqualError(t, err, "strata: lazy context: strata: empty lazy context request")

	wrapped := fmt.Errorf("read: %w", err)
	assert.True(t, IsUsage(wrapped))
	assert.True(t, errors.Is(wrapped, ErrEmptyLazyContext))
	assert.False(t, IsUsage(ErrEmptyLazyContext))
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Register("beetle", 1)
	r.Register("ant", 2)
	r.Register("beetle", 3) // replace keeps position
	assert.Equal(t, []string{"beetle", "ant"}, r.Names())

	v, ok := r.Lookup("beetle")
	require.True(t, ok)
	assert.Equal(t, 3, v)

	r.Remove("beetle")
	_, ok = r.Lookup("beetle")
	assert.False(t, ok)
	assert.Equal(t, []string{"ant"}, r.Names())

	r.Clear()
	assert.Empty(t, r.Names())
}
