package room

import (
	"github.com/gin-gonic/gin"

	"chatrelay/internal/handler/respond"
	"chatrelay/internal/model"
)

// Messages 房间消息列表
// @Summary      房间消息列表
// @Description  按 ID 升序返回房间的全部消息
// @Tags         房间
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "房间ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/rooms/{id}/messages [get]
func (h *Handler) Messages(c *gin.Context) {
	userID, ok := respond.UserID(c)
	if !ok {
		return
	}

	var uri RoomURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respond.BadRequest(c, "Invalid room id", err)
		return
	}

	messages, err := h.roomService.Messages(c.Request.Context(), userID, uri.ID)
	if err != nil {
		respond.Error(c, err)
		return
	}

	respond.OK(c, "success", model.MessageList{Messages: messages, Total: len(messages)})
}
