package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/sole_searcher/internal/db"
)

func newRedisStore(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	client, err := ConnectRedis(context.Background(), RedisConfig{Addr: s.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return NewRedis(client), s
}

func newGormStore(t *testing.T) *Gorm {
	t.Helper()

	ctx := context.Background()
	gdb, err := db.Open(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })

	g, err := NewGorm(ctx, gdb)
	require.NoError(t, err)
	return g
}

func backends(t *testing.T) map[string]Store {
	r, _ := newRedisStore(t)
	return map[string]Store{
		"memory": NewMemory(),
		"redis":  r,
		"gorm":   newGormStore(t),
	}
}

func TestStore_Contract(t *testing.T) {
	for name, s := range backends(t) {
		s := s
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.Get(ctx, "missing")
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Set(ctx, "k", []byte(`"v1"`)))
			got, err := s.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, `"v1"`, string(got))

			require.NoError(t, s.Set(ctx, "k", []byte(`"v2"`)))
			got, err = s.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, `"v2"`, string(got), "last writer wins")

			require.NoError(t, s.Delete(ctx, "k"))
			_, err = s.Get(ctx, "k")
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Delete(ctx, "never-set"))
		})
	}
}

func TestJSONHelpers(t *testing.T) {
	for name, s := range backends(t) {
		s := s
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			var out []string
			found, err := LoadJSON(ctx, s, "list", &out)
			require.NoError(t, err)
			assert.False(t, found)

			require.NoError(t, SaveJSON(ctx, s, "list", []string{"a", "b"}))
			found, err = LoadJSON(ctx, s, "list", &out)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, []string{"a", "b"}, out)

			require.NoError(t, s.Set(ctx, "broken", []byte("{not json")))
			found, err = LoadJSON(ctx, s, "broken", &out)
			assert.True(t, found)
			assert.Error(t, err)
		})
	}
}

func TestMemory_ReturnsCopies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory()
	in := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", in))
	in[0] = 'x'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[0] = 'y'
	again, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestRedis_UnreachableFails(t *testing.T) {
	t.Parallel()

	s, err := miniredis.Run()
	require.NoError(t, err)
	addr := s.Addr()
	s.Close()

	_, err = ConnectRedis(context.Background(), RedisConfig{Addr: addr, Timeout: time.Second})
	assert.Error(t, err)
}

func TestRedis_GetErrorIsWrapped(t *testing.T) {
	t.Parallel()

	r, s := newRedisStore(t)
	s.SetError("boom")

	_, err := r.Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
