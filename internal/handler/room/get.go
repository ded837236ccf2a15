package room

import (
	"github.com/gin-gonic/gin"

	"chatrelay/internal/handler/respond"
)

// Get 房间详情
// @Summary      房间详情
// @Tags         房间
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "房间ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/rooms/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	userID, ok := respond.UserID(c)
	if !ok {
		return
	}

	var uri RoomURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respond.BadRequest(c, "Invalid room id", err)
		return
	}

	room, err := h.roomService.Get(c.Request.Context(), userID, uri.ID)
	if err != nil {
		respond.Error(c, err)
		return
	}

	respond.OK(c, "success", room)
}
