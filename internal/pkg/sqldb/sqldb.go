// Package sqldb 打开 GORM 数据库连接（MySQL 生产环境 / SQLite 本地与测试）
package sqldb

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"chatrelay/internal/config"
	"chatrelay/internal/model/chat"
	"chatrelay/internal/pkg/logger"
)

const slowQueryThreshold = 500 * time.Millisecond

// OpenMySQL 打开 MySQL 连接并设置连接池
func OpenMySQL(cfg *config.MySQLConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: logger.NewGormLogger(slowQueryThreshold),
	})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return db, nil
}

// OpenSQLite 打开 SQLite 数据库
// path 为 ":memory:" 或 "file:" 开头的 URI 时按内存库/URI 打开
func OpenSQLite(cfg *config.SQLiteConfig) (*gorm.DB, error) {
	dsn := cfg.Path
	switch {
	case cfg.Path == ":memory:":
		dsn = "file::memory:?cache=shared"
	case !strings.HasPrefix(cfg.Path, "file:"):
		dsn = cfg.Path + "?_busy_timeout=5000"
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.NewGormLogger(slowQueryThreshold),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", cfg.Path, err)
	}

	// SQLite 只允许一个写连接
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// AutoMigrate 创建或更新会话相关的表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&chat.Room{}, &chat.Message{})
}

// Open 按 store.driver 打开 mysql 或 sqlite
func Open(cfg *config.Config) (*gorm.DB, error) {
	switch cfg.Store.Driver {
	case "mysql":
		return OpenMySQL(&cfg.MySQL)
	case "sqlite":
		return OpenSQLite(&cfg.SQLite)
	default:
		return nil, fmt.Errorf("not a sql store driver: %s", cfg.Store.Driver)
	}
}

// Close 关闭底层连接池
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
