package model

import "chatrelay/internal/model/chat"

// ChatRequest 对话请求（model 通过 query 参数传入）
type ChatRequest struct {
	Content string `json:"content" binding:"required"`
	Room    int64  `json:"room" binding:"required"`
}

// ChatFrame WebSocket 对话帧
type ChatFrame struct {
	Content string `json:"content"`
	Room    int64  `json:"room"`
	Model   string `json:"model"`
}

// CreateRoomRequest 创建房间请求
type CreateRoomRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// RenameRoomRequest 重命名房间请求
type RenameRoomRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// UpdateActiveRequest 批量更新 active 标记请求（JSON 数组）
type UpdateActiveRequest []chat.ActiveItem
