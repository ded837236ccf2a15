package handler

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"chatrelay/internal/handler/respond"
	"chatrelay/internal/model"
	"chatrelay/internal/service"
)

const (
	wsReadLimit  = 1 << 20 // 1MB
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
	wsWriteWait  = 10 * time.Second

	// 对话进行中最多排队的帧数，超出后关闭连接
	wsMaxPendingFrames = 8
)

// ChatWS WebSocket 对话接口
// 客户端协议（JSON 文本帧）:
//
//	-> {content, room, model}
//	<- {content}              每个片段一帧
//	<- {content, error: true} 出错时
//	<- {done: true}           一轮结束
//
// @Summary      WebSocket 对话
// @Description  每个文本帧运行一轮对话；浏览器可通过 ?token= 传递令牌
// @Tags         对话
// @Security     BearerAuth
// @Router       /api/v1/chat/ws [get]
func (h *ChatHandler) ChatWS(c *gin.Context) {
	userID, ok := respond.UserID(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	// 连接断开时取消正在进行的对话
	ctx, cancel := context.WithCancel(context.WithoutCancel(c.Request.Context()))
	defer cancel()

	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(h.pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.pongWait))
	})

	// 读协程不能阻塞在投递上：pong 只在 ReadJSON 内处理，停止读取会让读超时过期
	frames := make(chan model.ChatFrame, wsMaxPendingFrames)
	go func() {
		defer cancel()
		defer close(frames)
		for {
			var frame model.ChatFrame
			if err := conn.ReadJSON(&frame); err != nil {
				var closeErr *websocket.CloseError
				if !errors.As(err, &closeErr) {
					log.Debug().Err(err).Str("user_id", userID).Msg("websocket read finished")
				}
				return
			}
			_ = conn.SetReadDeadline(time.Now().Add(h.pongWait))
			select {
			case frames <- frame:
			case <-ctx.Done():
				return
			default:
				log.Warn().Str("user_id", userID).Int("pending", len(frames)).Msg("too many pending websocket frames")
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "too many pending frames"),
					time.Now().Add(wsWriteWait))
				return
			}
		}
	}()

	ticker := time.NewTicker(h.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := ping(conn); err != nil {
				return
			}
		case frame, ok := <-frames:
			if !ok {
				return
			}
			if err := h.runFrame(ctx, conn, ticker, userID, frame); err != nil {
				log.Debug().Err(err).Str("user_id", userID).Msg("websocket write failed")
				return
			}
		}
	}
}

// runFrame 运行一轮对话并把片段写回连接，对话期间继续发送心跳
func (h *ChatHandler) runFrame(ctx context.Context, conn *websocket.Conn, ticker *time.Ticker, userID string, frame model.ChatFrame) error {
	write := func(chunk *model.ChatChunk) error {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		return conn.WriteJSON(chunk)
	}

	stream, err := h.chatSvc.RunTurn(ctx, &service.Turn{
		RoomID:  frame.Room,
		UserID:  userID,
		Model:   frame.Model,
		Content: frame.Content,
	})
	if err != nil {
		if werr := write(&model.ChatChunk{Content: "Error: " + err.Error(), Error: true}); werr != nil {
			return werr
		}
		return write(&model.ChatChunk{Done: true})
	}

	var writeErr error
	for {
		select {
		case chunk, ok := <-stream.Chunks:
			if !ok {
				stream.Wait()
				if writeErr != nil {
					return writeErr
				}
				return write(&model.ChatChunk{Done: true})
			}
			// 写失败后继续读完，让对话正常结束并写入记录
			if writeErr == nil {
				writeErr = write(chunk)
			}
		case <-ticker.C:
			if writeErr == nil {
				writeErr = ping(conn)
			}
		}
	}
}

func ping(conn *websocket.Conn) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteMessage(websocket.PingMessage, nil)
}
