package service

import (
	"context"

	"chatrelay/internal/ai"
	chatrepo "chatrelay/internal/repository/chat"
)

// HistoryLoader 读取房间最近的消息作为上下文窗口
type HistoryLoader struct {
	rooms    chatrepo.RoomRepository
	messages chatrepo.MessageRepository
	limit    int
}

// NewHistoryLoader 创建历史加载器，limit 为上下文窗口的消息条数
func NewHistoryLoader(store chatrepo.Store, limit int) *HistoryLoader {
	return &HistoryLoader{
		rooms:    store.Rooms(),
		messages: store.Messages(),
		limit:    limit,
	}
}

// Load 返回房间最近 limit 条消息（时间正序），只保留 role 与 content
// 房间不存在或不属于 userID 时返回 ErrRoomNotFound
func (l *HistoryLoader) Load(ctx context.Context, userID string, roomID int64) ([]ai.Message, error) {
	if _, err := findOwnedRoom(ctx, l.rooms, userID, roomID); err != nil {
		return nil, err
	}

	messages, err := l.messages.ListLatest(ctx, roomID, l.limit)
	if err != nil {
		return nil, err
	}

	history := make([]ai.Message, 0, len(messages))
	for _, m := range messages {
		history = append(history, ai.Message{Role: m.Role.String(), Content: m.Content})
	}
	return history, nil
}
