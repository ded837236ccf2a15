// Package chat 会话存储：房间与消息的持久化
// 提供 MongoDB 与 GORM（MySQL/SQLite）两套实现，对上层暴露同一组接口
package chat

import (
	"context"
	"errors"
	"time"

	"chatrelay/internal/model/chat"
)

// ErrNotFound 记录不存在（或不属于当前用户）
var ErrNotFound = errors.New("record not found")

// RoomRepository 房间仓库
type RoomRepository interface {
	// Create 创建房间，写入后 room.ID 与 room.CreatedAt 被填充
	Create(ctx context.Context, room *chat.Room) error
	// FindByID 根据 ID 查询，不存在返回 ErrNotFound
	FindByID(ctx context.Context, id int64) (*chat.Room, error)
	// Rename 修改名称
	Rename(ctx context.Context, id int64, name string) error
	// Delete 删除房间及其全部消息（同一事务）
	Delete(ctx context.Context, id int64) error
	// ListByUser 查询用户的房间，按创建时间倒序；search 非空时按名称模糊匹配（不区分大小写）
	ListByUser(ctx context.Context, userID, search string) ([]*chat.Room, error)
	// ListCreatedBetween 查询用户在 [from, to) 内创建的房间，按创建时间倒序
	ListCreatedBetween(ctx context.Context, userID string, from, to time.Time) ([]*chat.Room, error)
	// BulkSetActive 在一个事务中批量设置 active 标记
	// 任一房间不存在或不属于 userID 时返回 ErrNotFound，且不写入任何数据
	// 返回值与 items 一一对应（重复 ID 以最后一项为准）
	BulkSetActive(ctx context.Context, userID string, items []chat.ActiveItem) ([]*chat.Room, error)
}

// MessageRepository 消息仓库
type MessageRepository interface {
	// ListLatest 返回房间最近 limit 条消息，按 ID 升序
	ListLatest(ctx context.Context, roomID int64, limit int) ([]*chat.Message, error)
	// ListByRoom 返回房间全部消息，按 ID 升序
	ListByRoom(ctx context.Context, roomID int64) ([]*chat.Message, error)
	// CreatePair 在一个事务中写入一轮对话（user 在前，assistant 在后）
	CreatePair(ctx context.Context, user, assistant *chat.Message) error
}

// Store 会话存储
type Store interface {
	Rooms() RoomRepository
	Messages() MessageRepository
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// dedupeActiveItems 合并重复 ID，后出现的值覆盖先出现的值，保持首次出现的顺序
func dedupeActiveItems(items []chat.ActiveItem) ([]int64, map[int64]bool) {
	ids := make([]int64, 0, len(items))
	final := make(map[int64]bool, len(items))
	for _, item := range items {
		if _, seen := final[item.ID]; !seen {
			ids = append(ids, item.ID)
		}
		final[item.ID] = item.Active != nil && *item.Active
	}
	return ids, final
}

// orderByRequest 按请求顺序组装返回值
func orderByRequest(items []chat.ActiveItem, rooms map[int64]*chat.Room) []*chat.Room {
	result := make([]*chat.Room, 0, len(items))
	for _, item := range items {
		result = append(result, rooms[item.ID])
	}
	return result
}
