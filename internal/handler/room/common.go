package room

import (
	"chatrelay/internal/handler/respond"
)

// ErrorResponse 错误响应类型别名
type ErrorResponse = respond.ErrorResponse

// RoomURI 路径中的房间 ID
type RoomURI struct {
	ID int64 `uri:"id" binding:"required,gt=0"` // 房间ID（必填）
}
