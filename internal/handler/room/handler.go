package room

import (
	"chatrelay/internal/service"
)

// Handler 房间处理器
// 所有 room 相关的 Handler 方法都通过这个结构体访问 Service
type Handler struct {
	roomService *service.RoomService
}

// NewHandler 创建房间处理器
func NewHandler(roomService *service.RoomService) *Handler {
	return &Handler{
		roomService: roomService,
	}
}
