package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"chatrelay/internal/handler/respond"
	"chatrelay/internal/model"
	"chatrelay/internal/service"
)

// ChatHandler 对话处理器
type ChatHandler struct {
	chatSvc  *service.ChatService
	upgrader websocket.Upgrader

	// WebSocket 心跳
	pongWait   time.Duration
	pingPeriod time.Duration
}

// NewChatHandler 创建对话处理器
func NewChatHandler(chatSvc *service.ChatService) *ChatHandler {
	return &ChatHandler{
		chatSvc: chatSvc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// 跨域由 CORS 中间件处理
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		pongWait:   wsPongWait,
		pingPeriod: wsPingPeriod,
	}
}

// Chat 流式对话接口
// @Summary      流式对话
// @Description  向房间发送一条消息并流式返回模型回复。默认逐段输出原始文本，出错时以 "Error: <message>" 结尾；
// @Description  format=sse 时每段为一个 message 事件（data 为 {"content": ...}），错误为 error 事件（{"content", "error": true}），最后是 done 事件（{"done": true}）。
// @Tags         对话
// @Accept       json
// @Produce      text/event-stream
// @Security     BearerAuth
// @Param        model    query     string             false  "模型名称（默认使用配置的模型）"
// @Param        format   query     string             false  "输出格式：raw（默认）或 sse"
// @Param        request  body      model.ChatRequest  true   "对话请求"
// @Success      200      {string}  string             "流式文本"
// @Failure      400      {object}  respond.ErrorResponse
// @Failure      404      {object}  respond.ErrorResponse
// @Router       /api/v1/chat [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	userID, ok := respond.UserID(c)
	if !ok {
		return
	}

	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "Invalid request body", err)
		return
	}

	stream, err := h.chatSvc.RunTurn(c.Request.Context(), &service.Turn{
		RoomID:  req.Room,
		UserID:  userID,
		Model:   c.Query("model"),
		Content: req.Content,
	})
	if err != nil {
		respond.Error(c, err)
		return
	}

	// 设置流式响应 headers
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	// SSE 的 data 字段会被客户端去掉一个前导空格，片段以 JSON 发送才能原样还原
	sse := c.Query("format") == "sse"
	for chunk := range stream.Chunks {
		switch {
		case sse && chunk.Error:
			c.SSEvent("error", chunk)
		case sse:
			c.SSEvent("message", chunk)
		default:
			_, _ = c.Writer.WriteString(chunk.Content)
		}
		c.Writer.Flush()
	}
	if sse && c.Request.Context().Err() == nil {
		c.SSEvent("done", &model.ChatChunk{Done: true})
		c.Writer.Flush()
	}

	// 等待记录写入完成后再结束请求
	stream.Wait()
}
