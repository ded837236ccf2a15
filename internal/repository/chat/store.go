package chat

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"chatrelay/internal/config"
	"chatrelay/internal/pkg/mongodb"
	"chatrelay/internal/pkg/sqldb"
)

// Open 按 store.driver 打开会话存储，并创建索引 / 同步表结构
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Store.Driver {
	case "mongo", "":
		client, err := mongodb.New(ctx, &cfg.Mongo)
		if err != nil {
			return nil, fmt.Errorf("connect mongodb: %w", err)
		}
		if err := mongodb.EnsureIndexes(ctx, client.Database()); err != nil {
			log.Warn().Err(err).Msg("failed to ensure indexes")
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")
		return NewMongoStore(client), nil

	case "mysql", "sqlite":
		db, err := sqldb.Open(cfg)
		if err != nil {
			return nil, err
		}
		if err := sqldb.AutoMigrate(db); err != nil {
			_ = sqldb.Close(db)
			return nil, fmt.Errorf("migrate %s: %w", cfg.Store.Driver, err)
		}
		log.Info().Str("driver", cfg.Store.Driver).Msg("opened SQL store")
		return NewGormStore(db), nil

	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}
