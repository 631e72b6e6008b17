package filestate

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kidandcat/tracker/internal/localstate"
	"github.com/kidandcat/tracker/internal/localstate/localstatetest"
)

func TestStore(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	localstatetest.Run(t, s)
}

func TestStoreConcurrentWriters(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s, err := Open(dir)
			if !assert.NoError(t, err) {
				return
			}
			assert.NoError(t, s.Set(ctx, "k"+string(rune('a'+n)), "v"))
		}(i)
	}
	wg.Wait()

	s, err := Open(dir)
	require.NoError(t, err)
	for i := 0; i < 8; i++ {
		_, ok, err := s.Get(ctx, "k"+string(rune('a'+i)))
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "state.json"), []byte("{not json"), 0600))

	s, err := Open(dir)
	require.NoError(t, err)
	_, err = localstate.Token(context.Background(), s)
	assert.Error(t, err)
}
