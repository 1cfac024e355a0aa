package app

import (
	"context"
	"errors"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/adaptive/pkg/httpserver"
	"github.com/dmitrymomot/adaptive/pkg/redis"
	"github.com/dmitrymomot/adaptive/pkg/snapshot"
)

// storeHandle is an opened snapshot backend with its lifecycle hooks.
type storeHandle struct {
	kind  string
	store snapshot.Store
	check *httpserver.Check
	prune func(context.Context) (int64, error)
	close func() error
	redis goredis.UniversalClient
}

func openStore(ctx context.Context, cfg Config, log *slog.Logger) (*storeHandle, error) {
	opts := []snapshot.Option{snapshot.WithTTL(cfg.SnapshotTTL)}

	switch cfg.Store {
	case StoreMemory:
		return &storeHandle{
			kind:  StoreMemory,
			store: snapshot.NewMemoryStore(append(opts, snapshot.WithCapacity(cfg.Sessions))...),
		}, nil

	case StoreRedis:
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, errors.Join(ErrStore, err)
		}
		return &storeHandle{
			kind:  StoreRedis,
			store: snapshot.NewRedisStore(client, opts...),
			check: &httpserver.Check{Name: StoreRedis, Fn: redis.Ping(client)},
			close: client.Close,
			redis: client,
		}, nil

	case StoreSQLite:
		db, err := snapshot.OpenSQLite(ctx, cfg.SQLitePath, opts...)
		if err != nil {
			return nil, errors.Join(ErrStore, err)
		}
		return &storeHandle{
			kind:  StoreSQLite,
			store: db,
			check: &httpserver.Check{Name: StoreSQLite, Fn: db.Ping},
			prune: db.Prune,
			close: db.Close,
		}, nil
	}

	log.Warn("snapshot store disabled, sessions will not survive expiry")
	return &storeHandle{kind: StoreNone}, nil
}
