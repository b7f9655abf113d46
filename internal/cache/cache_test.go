package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/OpenTracePulse/pkg/extrapolate"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(Config{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestPutGetRoundTrip(t *testing.T) {
	c := openTestCache(t)
	key := Key(Digest([]byte("broadcaster -> a\n")), extrapolate.QueryAggregate, "1000")

	want := &extrapolate.AggregateResult{Presses: 1000, Low: 8000, High: 4000, Product: 32000000, CycleLength: 1}
	require.NoError(t, c.Put(key, want))

	var got extrapolate.AggregateResult
	ok, err := c.Get(key, &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, *want, got)
}

func TestGetMissing(t *testing.T) {
	c := openTestCache(t)

	var got extrapolate.MinResult
	ok, err := c.Get("pulse/none", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDelete(t *testing.T) {
	c := openTestCache(t)
	require.NoError(t, c.Put("k", 1))
	require.NoError(t, c.Delete("k"))

	var n int
	ok, err := c.Get("k", &n)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPersistentDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")

	c, err := Open(Config{Dir: dir})
	require.NoError(t, err)
	require.NoError(t, c.Put("answer", int64(12)))
	require.NoError(t, c.Close())

	c, err = Open(Config{Dir: dir})
	require.NoError(t, err)
	defer c.Close()

	var n int64
	ok, err := c.Get("answer", &n)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(12), n)

	_, err = Open(Config{})
	require.Error(t, err)
}

func TestKeysSeparateInputsAndParams(t *testing.T) {
	a := Digest([]byte("broadcaster -> a\n"))
	b := Digest([]byte("broadcaster -> b\n"))
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, Digest([]byte("broadcaster -> a\n")))

	assert.NotEqual(t, Key(a, "min-presses", "rx"), Key(a, "min-presses", "hub"))
	assert.Equal(t, "pulse/"+a+"/aggregate/1000", Key(a, "aggregate", "1000"))
}
