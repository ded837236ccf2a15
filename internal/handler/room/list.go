package room

import (
	"github.com/gin-gonic/gin"

	"chatrelay/internal/handler/respond"
	"chatrelay/internal/model"
)

// List 房间列表
// @Summary      房间列表
// @Description  列出当前用户的房间，按创建时间倒序，可按名称搜索
// @Tags         房间
// @Produce      json
// @Security     BearerAuth
// @Param        search  query     string  false  "名称关键字"
// @Success      200     {object}  map[string]interface{}
// @Failure      401     {object}  ErrorResponse
// @Router       /api/v1/rooms [get]
func (h *Handler) List(c *gin.Context) {
	userID, ok := respond.UserID(c)
	if !ok {
		return
	}

	rooms, err := h.roomService.List(c.Request.Context(), userID, c.Query("search"))
	if err != nil {
		respond.Error(c, err)
		return
	}

	respond.OK(c, "success", model.RoomList{Rooms: rooms, Total: len(rooms)})
}
