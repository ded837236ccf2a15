// Package respond 统一的 JSON 响应与错误码映射
package respond

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"chatrelay/internal/pkg/ctxutil"
	httputil "chatrelay/internal/pkg/http"
	"chatrelay/internal/service"
)

// ErrorResponse 错误响应类型别名（使用共用的 http.ErrorResponse）
type ErrorResponse = httputil.ErrorResponse

// OK 返回成功响应
func OK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, httputil.NewSuccessResponse(message, data))
}

// Fail 返回指定错误码
func Fail(c *gin.Context, status, code int, message string, detail ...string) {
	c.JSON(status, httputil.NewErrorResponse(code, message, detail...))
}

// BadRequest 参数错误
func BadRequest(c *gin.Context, message string, err error) {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	Fail(c, http.StatusBadRequest, httputil.CodeInvalidRequest, message, detail)
}

// Error 根据错误类型映射 HTTP 状态码与业务错误码
func Error(c *gin.Context, err error) {
	var ve *service.ValidationError
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		Fail(c, http.StatusBadRequest, httputil.CodeInvalidRequest, service.ErrInvalidRequest.Error(), err.Error())
	case errors.Is(err, service.ErrRoomNotFound):
		Fail(c, http.StatusNotFound, httputil.CodeNotFound, err.Error())
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"code":    httputil.CodeValidationFailed,
			"message": "数据校验失败",
			"detail":  ve.Error(),
			"data":    ve.Fields,
		})
	default:
		log.Error().Err(err).
			Str("path", c.Request.URL.Path).
			Str("request_id", ctxutil.GetRequestID(c.Request.Context())).
			Msg("request failed")
		Fail(c, http.StatusInternalServerError, httputil.CodeInternal, "服务器内部错误")
	}
}

// UserID 返回认证中间件注入的用户 ID，不存在时写入 401 并返回 false
func UserID(c *gin.Context) (string, bool) {
	userID, ok := ctxutil.GetUserID(c.Request.Context())
	if !ok {
		Fail(c, http.StatusUnauthorized, httputil.CodeUnauthorized, "未授权")
		return "", false
	}
	return userID, true
}
