package config

import (
	"context"
	"fmt"
	"log"

	"food_marketplace/internal/repository"
)

// OpenSessionRepository builds the storage the session store persists into.
// The returned close func releases any connection it opened.
func OpenSessionRepository(ctx context.Context, cfg AppConfig) (repository.KVRepository, func(), error) {
	noop := func() {}

	switch cfg.SessionBackend {
	case SessionBackendMemory:
		log.Println("WARN: session storage is in memory, sessions will not survive a restart")
		return repository.NewMemoryKVRepository(), noop, nil

	case SessionBackendFile, "":
		log.Printf("Session will be stored in: %s", cfg.SessionFile)
		return repository.NewFileKVRepository(cfg.SessionFile), noop, nil

	case SessionBackendRedis:
		client, err := ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := client.Close(); err != nil {
				log.Printf("redis close error: %v", err)
			}
		}
		return repository.NewRedisKVRepository(client, cfg.Redis.KeyPrefix), closeFn, nil

	case SessionBackendPostgres:
		dbCfg, err := LoadDBConfig()
		if err != nil {
			return nil, nil, err
		}
		pool, err := ConnectDB(ctx, dbCfg)
		if err != nil {
			return nil, nil, err
		}
		if err := AutoMigrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repository.NewPostgresKVRepository(pool), pool.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
}
