package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"dbmodel/internal/config"
	"dbmodel/internal/db"
)

// Open connects the backend named by cfg.StoreBackend. The MySQL schema is
// migrated on the way.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (Store, error) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		log.Info().Str("addr", cfg.RedisAddr).Int("db", cfg.RedisDB).Msg("redis document store")
		return NewRedis(client), nil

	case config.BackendMySQL:
		gormDB, err := db.NewMySQL(cfg.MySQLDSN, log)
		if err != nil {
			return nil, err
		}
		if err := Migrate(gormDB); err != nil {
			return nil, err
		}
		log.Info().Msg("mysql document store")
		return NewSQL(gormDB), nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
