package room

import (
	"github.com/gin-gonic/gin"

	"chatrelay/internal/handler/respond"
)

// Delete 删除房间
// @Summary      删除房间
// @Description  删除房间及其全部消息
// @Tags         房间
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "房间ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/rooms/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	userID, ok := respond.UserID(c)
	if !ok {
		return
	}

	var uri RoomURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respond.BadRequest(c, "Invalid room id", err)
		return
	}

	if err := h.roomService.Delete(c.Request.Context(), userID, uri.ID); err != nil {
		respond.Error(c, err)
		return
	}

	respond.OK(c, "deleted", nil)
}
