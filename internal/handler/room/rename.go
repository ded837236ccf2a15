package room

import (
	"github.com/gin-gonic/gin"

	"chatrelay/internal/handler/respond"
	"chatrelay/internal/model"
)

// Rename 重命名房间
// @Summary      重命名房间
// @Tags         房间
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                      true  "房间ID"
// @Param        request  body      model.RenameRoomRequest  true  "新名称"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Failure      422      {object}  ErrorResponse
// @Router       /api/v1/rooms/{id} [patch]
func (h *Handler) Rename(c *gin.Context) {
	userID, ok := respond.UserID(c)
	if !ok {
		return
	}

	var uri RoomURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respond.BadRequest(c, "Invalid room id", err)
		return
	}
	var req model.RenameRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "Invalid request body", err)
		return
	}

	room, err := h.roomService.Rename(c.Request.Context(), userID, uri.ID, req.Name)
	if err != nil {
		respond.Error(c, err)
		return
	}

	respond.OK(c, "success", room)
}
