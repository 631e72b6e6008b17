// Package localstatetest holds the behaviour every localstate.Store must
// share, so each implementation runs the same checks.
package localstatetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kidandcat/tracker/internal/localstate"
)

func Run(t *testing.T, s localstate.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		v, ok, err := s.Get(ctx, "nope")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, v)
	})

	t.Run("set get overwrite", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, localstate.TokenKey, "abc"))
		tok, err := localstate.Token(ctx, s)
		require.NoError(t, err)
		assert.Equal(t, "abc", tok)

		require.NoError(t, s.Set(ctx, localstate.TokenKey, "def"))
		tok, err = localstate.Token(ctx, s)
		require.NoError(t, err)
		assert.Equal(t, "def", tok)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "other", "keep"))
		require.NoError(t, s.Delete(ctx, localstate.TokenKey))
		require.NoError(t, s.Delete(ctx, localstate.TokenKey))

		tok, err := localstate.Token(ctx, s)
		require.NoError(t, err)
		assert.Empty(t, tok)

		v, ok, err := s.Get(ctx, "other")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "keep", v)
	})
}
