package chat

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"chatrelay/internal/model/chat"
	"chatrelay/internal/pkg/mongodb"
)

// 自增序列名
const (
	roomSequence    = "rooms"
	messageSequence = "messages"
)

// MongoStore 基于 MongoDB 的会话存储
// 说明：事务依赖副本集部署
type MongoStore struct {
	client   *mongodb.Client
	rooms    *MongoRoomRepo
	messages *MongoMessageRepo
}

// NewMongoStore 创建 MongoDB 会话存储
func NewMongoStore(client *mongodb.Client) *MongoStore {
	db := client.Database()
	return &MongoStore{
		client: client,
		rooms: &MongoRoomRepo{
			client:   client.Client(),
			db:       db,
			rooms:    db.Collection((&chat.Room{}).Collection()),
			messages: db.Collection((&chat.Message{}).Collection()),
		},
		messages: &MongoMessageRepo{
			client:     client.Client(),
			db:         db,
			collection: db.Collection((&chat.Message{}).Collection()),
		},
	}
}

// Rooms 房间仓库
func (s *MongoStore) Rooms() RoomRepository { return s.rooms }

// Messages 消息仓库
func (s *MongoStore) Messages() MessageRepository { return s.messages }

// Ping 检查连接
func (s *MongoStore) Ping(ctx context.Context) error { return s.client.Ping(ctx) }

// Close 关闭连接
func (s *MongoStore) Close(ctx context.Context) error { return s.client.Close(ctx) }

// MongoRoomRepo 房间仓库（MongoDB）
type MongoRoomRepo struct {
	client   *mongo.Client
	db       *mongo.Database
	rooms    *mongo.Collection
	messages *mongo.Collection
}

// Create 创建房间
func (r *MongoRoomRepo) Create(ctx context.Context, room *chat.Room) error {
	id, err := mongodb.NextSequence(ctx, r.db, roomSequence, 1)
	if err != nil {
		return err
	}
	room.ID = id
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now()
	}
	// MongoDB 只保存毫秒精度
	room.CreatedAt = room.CreatedAt.UTC().Truncate(time.Millisecond)

	_, err = r.rooms.InsertOne(ctx, room)
	return err
}

// FindByID 根据 ID 查询
func (r *MongoRoomRepo) FindByID(ctx context.Context, id int64) (*chat.Room, error) {
	var room chat.Room
	err := r.rooms.FindOne(ctx, bson.M{"_id": id}).Decode(&room)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// Rename 修改名称
func (r *MongoRoomRepo) Rename(ctx context.Context, id int64, name string) error {
	result, err := r.rooms.UpdateByID(ctx, id, bson.M{"$set": bson.M{"name": name}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete 删除房间及其消息
func (r *MongoRoomRepo) Delete(ctx context.Context, id int64) error {
	return mongodb.WithTransaction(ctx, r.client, func(sc mongo.SessionContext) error {
		if _, err := r.messages.DeleteMany(sc, bson.M{"room_id": id}); err != nil {
			return err
		}
		result, err := r.rooms.DeleteOne(sc, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if result.DeletedCount == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ListByUser 查询用户的房间
func (r *MongoRoomRepo) ListByUser(ctx context.Context, userID, search string) ([]*chat.Room, error) {
	filter := bson.M{"user_id": userID}
	if search = strings.TrimSpace(search); search != "" {
		filter["name"] = bson.M{"$regex": regexp.QuoteMeta(search), "$options": "i"}
	}
	return r.find(ctx, filter)
}

// ListCreatedBetween 查询 [from, to) 内创建的房间
func (r *MongoRoomRepo) ListCreatedBetween(ctx context.Context, userID string, from, to time.Time) ([]*chat.Room, error) {
	filter := bson.M{
		"user_id":    userID,
		"created_at": bson.M{"$gte": from, "$lt": to},
	}
	return r.find(ctx, filter)
}

func (r *MongoRoomRepo) find(ctx context.Context, filter bson.M) ([]*chat.Room, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: -1},
	})

	cursor, err := r.rooms.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	rooms := make([]*chat.Room, 0)
	if err := cursor.All(ctx, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// BulkSetActive 批量设置 active 标记
func (r *MongoRoomRepo) BulkSetActive(ctx context.Context, userID string, items []chat.ActiveItem) ([]*chat.Room, error) {
	ids, final := dedupeActiveItems(items)
	updated := make(map[int64]*chat.Room, len(ids))

	err := mongodb.WithTransaction(ctx, r.client, func(sc mongo.SessionContext) error {
		cursor, err := r.rooms.Find(sc, bson.M{"_id": bson.M{"$in": ids}, "user_id": userID})
		if err != nil {
			return err
		}
		var rooms []*chat.Room
		if err := cursor.All(sc, &rooms); err != nil {
			return err
		}
		if len(rooms) != len(ids) {
			return ErrNotFound
		}

		models := make([]mongo.WriteModel, 0, len(rooms))
		for _, room := range rooms {
			room.Active = final[room.ID]
			updated[room.ID] = room
			models = append(models, mongo.NewUpdateOneModel().
				SetFilter(bson.M{"_id": room.ID}).
				SetUpdate(bson.M{"$set": bson.M{"active": room.Active}}))
		}
		_, err = r.rooms.BulkWrite(sc, models, options.BulkWrite().SetOrdered(true))
		return err
	})
	if err != nil {
		return nil, err
	}
	return orderByRequest(items, updated), nil
}

// MongoMessageRepo 消息仓库（MongoDB）
type MongoMessageRepo struct {
	client     *mongo.Client
	db         *mongo.Database
	collection *mongo.Collection
}

// ListLatest 返回最近 limit 条消息（升序）
func (r *MongoMessageRepo) ListLatest(ctx context.Context, roomID int64, limit int) ([]*chat.Message, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetLimit(int64(limit))

	messages, err := r.find(ctx, bson.M{"room_id": roomID}, opts)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// ListByRoom 返回房间全部消息（升序）
func (r *MongoMessageRepo) ListByRoom(ctx context.Context, roomID int64) ([]*chat.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	return r.find(ctx, bson.M{"room_id": roomID}, opts)
}

func (r *MongoMessageRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*chat.Message, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	messages := make([]*chat.Message, 0)
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// CreatePair 写入一轮对话
func (r *MongoMessageRepo) CreatePair(ctx context.Context, user, assistant *chat.Message) error {
	// 序列在事务外分配，回滚只会留下空号
	first, err := mongodb.NextSequence(ctx, r.db, messageSequence, 2)
	if err != nil {
		return err
	}

	return mongodb.WithTransaction(ctx, r.client, func(sc mongo.SessionContext) error {
		user.ID = first
		assistant.ID = first + 1
		_, err := r.collection.InsertMany(sc, []interface{}{user, assistant})
		return err
	})
}
