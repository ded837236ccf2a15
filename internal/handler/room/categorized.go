package room

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"chatrelay/internal/handler/respond"
	httputil "chatrelay/internal/pkg/http"
)

// Categorized 按创建时间分组的房间
// @Summary      房间分组
// @Description  today_room / yesterday_room / three_days_room / seven_days_room / one_month_room 以及 active_room
// @Tags         房间
// @Produce      json
// @Security     BearerAuth
// @Param        user  query     string  false  "用户ID（默认当前用户）"
// @Success      200   {object}  map[string]interface{}
// @Failure      403   {object}  ErrorResponse
// @Router       /api/v1/rooms/categorized [get]
func (h *Handler) Categorized(c *gin.Context) {
	userID, ok := respond.UserID(c)
	if !ok {
		return
	}

	if user := c.Query("user"); user != "" && user != userID {
		respond.Fail(c, http.StatusForbidden, httputil.CodeForbidden, "无权查看其他用户的房间")
		return
	}

	result, err := h.roomService.Categorize(c.Request.Context(), userID, time.Now())
	if err != nil {
		respond.Error(c, err)
		return
	}

	respond.OK(c, "success", result)
}
