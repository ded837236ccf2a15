package chat

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Room 会话房间实体
// 说明：ID 由存储层分配（自增），同一用户下按 created_at 倒序展示。
type Room struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" bson:"_id" json:"id"`
	UserID    string    `gorm:"size:64;not null;index:idx_rooms_user_created,priority:1" bson:"user_id" json:"user" validate:"required,max=64"`
	Name      string    `gorm:"size:100;not null" bson:"name" json:"name" validate:"required,max=100"`
	Active    bool      `gorm:"not null" bson:"active" json:"active"`
	CreatedAt time.Time `gorm:"not null;index:idx_rooms_user_created,priority:2" bson:"created_at" json:"create_time"`
}

// TableName GORM 表名
func (Room) TableName() string { return "rooms" }

// Collection 返回集合名称
func (r *Room) Collection() string { return "rooms" }

// EnsureIndexes 创建和维护索引
func (r *Room) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(r.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_user_created"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "active", Value: 1}},
			Options: options.Index().SetName("idx_user_active"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}

// ActiveItem 批量更新房间 active 标记的单项
type ActiveItem struct {
	ID     int64 `json:"id" validate:"required,gt=0"`
	Active *bool `json:"active" validate:"required"`
}
