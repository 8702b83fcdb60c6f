package localstore

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "local.json")
	s := NewFileStore(path)

	_, ok, err := s.Get(ctx, "participations")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "participations", "[]"))
	v, ok, err := s.Get(ctx, "participations")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", v)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, s.Remove(ctx, "participations"))
	_, ok, err = NewFileStore(path).Get(ctx, "participations")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStoreUpdateDoesNotLoseWrites(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(filepath.Join(t.TempDir(), "local.json"))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := s.Update(ctx, "list", func(old string, ok bool) (string, error) {
				if old == "" {
					return strconv.Itoa(i), nil
				}
				return old + "," + strconv.Itoa(i), nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	v, _, err := s.Get(ctx, "list")
	require.NoError(t, err)
	assert.Len(t, strings.Split(v, ","), 20)
}

func TestFileStoreCorruptFileIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, _, err := NewFileStore(path).Get(context.Background(), "k")
	assert.Error(t, err)
}
