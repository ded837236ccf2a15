package chat

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Role 消息角色
type Role string

const (
	RoleSystem    Role = "system"    // 系统提示
	RoleUser      Role = "user"      // 用户消息
	RoleAssistant Role = "assistant" // 模型回复
)

// IsValid 检查角色是否有效
func (r Role) IsValid() bool {
	return r == RoleSystem || r == RoleUser || r == RoleAssistant
}

// String 返回角色字符串
func (r Role) String() string {
	return string(r)
}

const (
	// DateTimeLayout 消息时间格式（精确到秒）
	DateTimeLayout = "2006-01-02 15:04:05"
	// MaxContentLength 单条消息内容的最大长度（字符）
	MaxContentLength = 65535
)

// Message 消息实体
// 说明：消息只在一次对话结束后成对写入（user + assistant），写入后不再修改。
type Message struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" bson:"_id" json:"id"`
	RoomID   int64  `gorm:"not null;index" bson:"room_id" json:"room" validate:"required,gt=0"`
	UserID   string `gorm:"size:64;not null;index" bson:"user_id" json:"user" validate:"required,max=64"`
	Content  string `gorm:"type:longtext;not null" bson:"content" json:"content" validate:"required,max=65535"`
	Role     Role   `gorm:"size:20;not null" bson:"role" json:"role" validate:"required,oneof=system user assistant"`
	Model    string `gorm:"size:100;not null" bson:"model" json:"model" validate:"required,max=100"`
	DateTime string `gorm:"size:100;not null" bson:"date_time" json:"date_time" validate:"required,max=100"`
}

// TableName GORM 表名
func (Message) TableName() string { return "messages" }

// Collection 返回集合名称
func (m *Message) Collection() string { return "messages" }

// EnsureIndexes 创建和维护索引
func (m *Message) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(m.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "room_id", Value: 1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("idx_room_id"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_user_id"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
