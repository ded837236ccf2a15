package room

import (
	"github.com/gin-gonic/gin"

	"chatrelay/internal/handler/respond"
	"chatrelay/internal/model"
)

// UpdateActive 批量更新 active 标记
// @Summary      批量更新 active
// @Description  请求体为数组 [{id, active}]，全部成功或全部不生效
// @Tags         房间
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      model.UpdateActiveRequest  true  "更新列表"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Router       /api/v1/rooms/update_active [patch]
func (h *Handler) UpdateActive(c *gin.Context) {
	userID, ok := respond.UserID(c)
	if !ok {
		return
	}

	var req model.UpdateActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "Expected a list of items", err)
		return
	}
	if req == nil {
		respond.BadRequest(c, "Expected a list of items", nil)
		return
	}

	rooms, err := h.roomService.UpdateActive(c.Request.Context(), userID, req)
	if err != nil {
		respond.Error(c, err)
		return
	}

	respond.OK(c, "success", rooms)
}
