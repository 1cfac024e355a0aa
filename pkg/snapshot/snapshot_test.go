package snapshot_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/adaptive/pkg/device"
	"github.com/dmitrymomot/adaptive/pkg/optimize"
	"github.com/dmitrymomot/adaptive/pkg/snapshot"
)

func sample() snapshot.Snapshot {
	info := device.Info{
		Type:    device.TypeMobile,
		OS:      device.OSAndroid,
		Browser: device.BrowserChrome,
		Performance: device.Performance{
			MemoryGB:   2,
			Cores:      4,
			Connection: device.Connection{EffectiveType: device.Connection3G, DownlinkMbps: 1.5, RTTMs: 300},
			Battery:    device.Battery{Level: 0.4},
		},
	}
	return snapshot.Snapshot{
		Info:    info,
		Config:  optimize.ConfigFor(&info),
		SavedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func exerciseStore(t *testing.T, store snapshot.Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Load(ctx, "missing")
	assert.ErrorIs(t, err, snapshot.ErrNotFound)

	want := sample()
	require.NoError(t, store.Save(ctx, "session-1", want))

	got, err := store.Load(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	updated := want
	updated.Config.Images.Quality = 40
	require.NoError(t, store.Save(ctx, "session-1", updated))
	got, err = store.Load(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, 40, got.Config.Images.Quality)

	require.NoError(t, store.Delete(ctx, "session-1"))
	_, err = store.Load(ctx, "session-1")
	assert.ErrorIs(t, err, snapshot.ErrNotFound)
	assert.NoError(t, store.Delete(ctx, "session-1"))

	assert.ErrorIs(t, store.Save(ctx, "", want), snapshot.ErrEmptyKey)
	_, err = store.Load(ctx, "")
	assert.ErrorIs(t, err, snapshot.ErrEmptyKey)
	assert.ErrorIs(t, store.Delete(ctx, ""), snapshot.ErrEmptyKey)
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	t.Run("contract", func(t *testing.T) {
		t.Parallel()
		exerciseStore(t, snapshot.NewMemoryStore())
	})

	t.Run("expiry", func(t *testing.T) {
		t.Parallel()
		clk := &clock{now: time.Unix(1_700_000_000, 0)}
		store := snapshot.NewMemoryStore(snapshot.WithTTL(time.Minute), snapshot.WithClock(clk.Now))
		ctx := context.Background()

		require.NoError(t, store.Save(ctx, "k", sample()))
		clk.Advance(30 * time.Second)
		_, err := store.Load(ctx, "k")
		require.NoError(t, err)

		clk.Advance(31 * time.Second)
		_, err = store.Load(ctx, "k")
		assert.ErrorIs(t, err, snapshot.ErrNotFound)
	})

	t.Run("capacity", func(t *testing.T) {
		t.Parallel()
		store := snapshot.NewMemoryStore(snapshot.WithCapacity(2))
		ctx := context.Background()

		for _, k := range []string{"a", "b", "c"} {
			require.NoError(t, store.Save(ctx, k, sample()))
		}
		assert.Equal(t, 2, store.Len())
		_, err := store.Load(ctx, "a")
		assert.ErrorIs(t, err, snapshot.ErrNotFound)
	})
}

func TestSQLiteStore(t *testing.T) {
	t.Parallel()

	open := func(t *testing.T, opts ...snapshot.Option) *snapshot.SQLiteStore {
		t.Helper()
		path := filepath.Join(t.TempDir(), "nested", "snapshots.db")
		store, err := snapshot.OpenSQLite(context.Background(), path, opts...)
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
		return store
	}

	t.Run("contract", func(t *testing.T) {
		t.Parallel()
		store := open(t)
		require.NoError(t, store.Ping(context.Background()))
		exerciseStore(t, store)
	})

	t.Run("expiry and prune", func(t *testing.T) {
		t.Parallel()
		clk := &clock{now: time.Unix(1_700_000_000, 0)}
		store := open(t, snapshot.WithTTL(time.Minute), snapshot.WithClock(clk.Now))
		ctx := context.Background()

		require.NoError(t, store.Save(ctx, "old", sample()))
		clk.Advance(45 * time.Second)
		require.NoError(t, store.Save(ctx, "new", sample()))
		clk.Advance(30 * time.Second)

		_, err := store.Load(ctx, "old")
		assert.ErrorIs(t, err, snapshot.ErrNotFound)
		_, err = store.Load(ctx, "new")
		assert.NoError(t, err)

		n, err := store.Prune(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("no ttl keeps rows", func(t *testing.T) {
		t.Parallel()
		clk := &clock{now: time.Unix(1_700_000_000, 0)}
		store := open(t, snapshot.WithTTL(0), snapshot.WithClock(clk.Now))
		ctx := context.Background()

		require.NoError(t, store.Save(ctx, "k", sample()))
		clk.Advance(365 * 24 * time.Hour)
		_, err := store.Load(ctx, "k")
		assert.NoError(t, err)

		n, err := store.Prune(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("empty path", func(t *testing.T) {
		t.Parallel()
		_, err := snapshot.OpenSQLite(context.Background(), "")
		assert.ErrorIs(t, err, snapshot.ErrStorage)
	})
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}

	opts, err := goredis.ParseURL(url)
	require.NoError(t, err)
	client := goredis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	prefix := "adaptive:test:" + time.Now().Format("150405.000000") + ":"
	store := snapshot.NewRedisStore(client, snapshot.WithPrefix(prefix), snapshot.WithTTL(time.Minute))
	exerciseStore(t, store)

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "ttl", sample()))
	ttl, err := client.TTL(ctx, prefix+"ttl").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.NoError(t, store.Delete(ctx, "ttl"))
}

func TestNew(t *testing.T) {
	t.Parallel()
	info := device.Info{Type: device.TypeDesktop}
	cfg := optimize.DefaultConfig()

	before := time.Now().UTC()
	s := snapshot.New(info, cfg)
	assert.Equal(t, info, s.Info)
	assert.Equal(t, cfg, s.Config)
	assert.False(t, s.SavedAt.Before(before.Truncate(time.Second)))
	assert.Equal(t, time.UTC, s.SavedAt.Location())
}
