package room

import (
	"github.com/gin-gonic/gin"

	"chatrelay/internal/handler/respond"
	"chatrelay/internal/model"
)

// Create 创建房间
// @Summary      创建房间
// @Description  为当前用户创建一个会话房间
// @Tags         房间
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      model.CreateRoomRequest  true  "房间名称"
// @Success      200      {object}  map[string]interface{}  "{\"code\": 0, \"message\": \"success\", \"data\": {...}}"
// @Failure      400      {object}  ErrorResponse
// @Failure      401      {object}  ErrorResponse
// @Failure      422      {object}  ErrorResponse
// @Router       /api/v1/rooms [post]
func (h *Handler) Create(c *gin.Context) {
	userID, ok := respond.UserID(c)
	if !ok {
		return
	}

	var req model.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "Invalid request body", err)
		return
	}

	room, err := h.roomService.Create(c.Request.Context(), userID, req.Name)
	if err != nil {
		respond.Error(c, err)
		return
	}

	respond.OK(c, "success", room)
}
