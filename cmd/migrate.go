package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"chatrelay/internal/pkg/mongodb"
	"chatrelay/internal/pkg/sqldb"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create collections, indexes and tables for the conversation store",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().String("store", "mongo", "conversation store driver (mongo/mysql/sqlite)")
	_ = viper.BindPFlag("store.driver", migrateCmd.Flags().Lookup("store"))
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	switch cfg.Store.Driver {
	case "mongo":
		client, err := mongodb.New(ctx, &cfg.Mongo)
		if err != nil {
			return fmt.Errorf("connect mongodb: %w", err)
		}
		defer func() { _ = client.Close(context.Background()) }()

		// 事务内不能隐式建集合，索引创建会先把集合建好
		if err := mongodb.EnsureIndexes(ctx, client.Database()); err != nil {
			return fmt.Errorf("ensure indexes: %w", err)
		}

	case "mysql", "sqlite":
		db, err := sqldb.Open(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = sqldb.Close(db) }()

		if err := sqldb.AutoMigrate(db); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}

	default:
		return fmt.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}

	log.Info().Str("store", cfg.Store.Driver).Msg("migration completed")
	return nil
}
