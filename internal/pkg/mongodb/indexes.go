package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"chatrelay/internal/model/chat"
)

// EnsureIndexes 创建所有模型的索引
// 在应用启动或执行 migrate 命令时调用
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	models := []Model{
		&chat.Room{},
		&chat.Message{},
	}
	return EnsureAllIndexes(ctx, db, models...)
}
