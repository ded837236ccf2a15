package model

import "chatrelay/internal/model/chat"

// ChatChunk 流式对话片段
type ChatChunk struct {
	Content string `json:"content,omitempty"`
	Error   bool   `json:"error,omitempty"`
	Done    bool   `json:"done,omitempty"`
}

// CategorizedRooms 按创建时间分组的房间列表
type CategorizedRooms struct {
	Today     []*chat.Room `json:"today_room"`
	Yesterday []*chat.Room `json:"yesterday_room"`
	ThreeDays []*chat.Room `json:"three_days_room"`
	SevenDays []*chat.Room `json:"seven_days_room"`
	OneMonth  []*chat.Room `json:"one_month_room"`
	Active    []*chat.Room `json:"active_room"`
}

// RoomList 房间列表
type RoomList struct {
	Rooms []*chat.Room `json:"rooms"`
	Total int          `json:"total"`
}

// MessageList 消息列表
type MessageList struct {
	Messages []*chat.Message `json:"messages"`
	Total    int             `json:"total"`
}
