package clipcache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisk_SetGet(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c, err := NewDisk(filepath.Join(dir, "clips"))
	require.NoError(t, err)
	ctx := context.Background()

	_, found, err := c.Get(ctx, "abc123")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "abc123", []byte{1, 2, 3, 4}))

	data, found, err := c.Get(ctx, "abc123")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte{1, 2, 3, 4}, data)

	entries, err := os.ReadDir(filepath.Join(dir, "clips"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestDisk_Overwrite(t *testing.T) {
	t.Parallel()

	c, err := NewDisk(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte{1}))
	require.NoError(t, c.Set(ctx, "k", []byte{2, 2}))

	data, _, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 2}, data)
}

func TestDisk_RejectsPathKeys(t *testing.T) {
	t.Parallel()

	c, err := NewDisk(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"", "../etc", "a/b", "a.b"} {
		assert.Error(t, c.Set(ctx, key, []byte{1}), key)
		_, _, err := c.Get(ctx, key)
		assert.Error(t, err, key)
	}
}
