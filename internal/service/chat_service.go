package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"chatrelay/internal/ai"
	"chatrelay/internal/config"
	"chatrelay/internal/model"
	"chatrelay/internal/model/chat"
)

// Outcome 一轮对话的结束状态
type Outcome string

const (
	OutcomeCompleted     Outcome = "completed"      // 正常结束且有回复
	OutcomeUpstreamError Outcome = "upstream_error" // 上游失败，但已有部分回复
	OutcomeEmpty         Outcome = "empty"          // 没有任何回复
)

// Turn 一轮对话的输入
type Turn struct {
	RoomID  int64
	UserID  string
	Model   string
	Content string
}

// StreamResult 一轮对话的结果
type StreamResult struct {
	Turn        Turn
	Text        string    // 累积的回复
	Outcome     Outcome   // 结束状态
	Err         error     // 上游错误
	RequestedAt time.Time // 收到请求的时间，用作 user 消息时间
	FinishedAt  time.Time // 流结束的时间，用作 assistant 消息时间

	persisted atomic.Bool
}

// ShouldPersist 是否需要写入记录
func (r *StreamResult) ShouldPersist() bool {
	if r.Text == "" {
		return false
	}
	return r.Outcome == OutcomeCompleted || r.Outcome == OutcomeUpstreamError
}

// Persisted 是否已尝试写入
func (r *StreamResult) Persisted() bool {
	return r.persisted.Load()
}

// TurnStream 正在进行的一轮对话
// 调用方需要读完 Chunks（直到关闭）或取消 context，否则生产方会一直阻塞
type TurnStream struct {
	Chunks <-chan *model.ChatChunk

	result *StreamResult
	done   chan struct{}
}

// Wait 等待流结束及记录写入完成，返回本轮结果
func (s *TurnStream) Wait() *StreamResult {
	<-s.done
	return s.result
}

// ChatService 对话编排服务
// 业务流程: 1. 校验并加载历史 -> 2. 流式调用模型并转发 -> 3. 结束后写入记录
type ChatService struct {
	completer      ai.Completer
	history        *HistoryLoader
	transcript     *TranscriptWriter
	aiCfg          *config.AIConfig
	systemPrompt   string
	persistTimeout time.Duration
	now            func() time.Time
}

// NewChatService 创建对话服务
func NewChatService(
	completer ai.Completer,
	history *HistoryLoader,
	transcript *TranscriptWriter,
	aiCfg *config.AIConfig,
	chatCfg *config.ChatConfig,
) *ChatService {
	persistTimeout := chatCfg.PersistTimeout
	if persistTimeout <= 0 {
		persistTimeout = 10 * time.Second
	}
	return &ChatService{
		completer:      completer,
		history:        history,
		transcript:     transcript,
		aiCfg:          aiCfg,
		systemPrompt:   chatCfg.SystemPrompt,
		persistTimeout: persistTimeout,
		now:            time.Now,
	}
}

// RunTurn 开始一轮对话
// 参数错误或房间不存在时同步返回错误，此时尚未调用模型；否则返回 TurnStream，
// 片段按上游顺序逐个送出，出错时最后送出一个 "Error: <message>" 片段，随后 Chunks 关闭。
func (s *ChatService) RunTurn(ctx context.Context, turn *Turn) (*TurnStream, error) {
	requestedAt := s.now()

	if err := s.validateTurn(turn); err != nil {
		return nil, err
	}

	history, err := s.history.Load(ctx, turn.UserID, turn.RoomID)
	if err != nil {
		return nil, err
	}

	messages := make([]ai.Message, 0, len(history)+2)
	messages = append(messages, ai.Message{Role: chat.RoleSystem.String(), Content: s.systemPrompt})
	messages = append(messages, history...)
	messages = append(messages, ai.Message{Role: chat.RoleUser.String(), Content: turn.Content})

	chunks := make(chan *model.ChatChunk)
	stream := &TurnStream{
		Chunks: chunks,
		result: &StreamResult{Turn: *turn, RequestedAt: requestedAt},
		done:   make(chan struct{}),
	}

	go s.relay(ctx, &ai.CompletionRequest{Model: turn.Model, Messages: messages}, chunks, stream)

	return stream, nil
}

// validateTurn 校验输入，并补全默认模型
func (s *ChatService) validateTurn(turn *Turn) error {
	if turn.UserID == "" {
		return invalidRequest("user is required")
	}
	if turn.RoomID <= 0 {
		return invalidRequest("room is required")
	}
	if strings.TrimSpace(turn.Content) == "" {
		return invalidRequest("content is required")
	}
	if utf8.RuneCountInString(turn.Content) > chat.MaxContentLength {
		return invalidRequest("content exceeds %d characters", chat.MaxContentLength)
	}

	if turn.Model == "" {
		turn.Model = s.aiCfg.Model
	}
	if turn.Model == "" {
		return invalidRequest("model is required")
	}
	if utf8.RuneCountInString(turn.Model) > 100 {
		return invalidRequest("model exceeds 100 characters")
	}
	if len(s.aiCfg.Models) > 0 && !s.inCatalog(turn.Model) {
		return invalidRequest("unknown model %q", turn.Model)
	}
	return nil
}

func (s *ChatService) inCatalog(name string) bool {
	for _, m := range s.aiCfg.Models {
		if m.Name == name {
			return true
		}
	}
	return false
}

// relay 运行在独立 goroutine 中：读取上游片段，累积并转发，结束后写入记录
func (s *ChatService) relay(ctx context.Context, req *ai.CompletionRequest, chunks chan<- *model.ChatChunk, stream *TurnStream) {
	defer close(stream.done)

	result := stream.result
	logger := log.With().
		Int64("room_id", result.Turn.RoomID).
		Str("user_id", result.Turn.UserID).
		Str("model", result.Turn.Model).
		Logger()

	send := func(chunk *model.ChatChunk) bool {
		select {
		case chunks <- chunk:
			return true
		case <-ctx.Done():
			return false
		}
	}

	var sb strings.Builder
	err := func() error {
		reader, err := s.completer.Stream(ctx, req)
		if err != nil {
			return err
		}
		defer reader.Close()

		for {
			fragment, err := reader.Recv()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			// 只累积已送达调用方的片段
			if !send(&model.ChatChunk{Content: fragment}) {
				return ctx.Err()
			}
			sb.WriteString(fragment)
		}
	}()

	result.Text = sb.String()
	result.FinishedAt = s.now()
	switch {
	case err != nil:
		result.Err = err
		result.Outcome = OutcomeEmpty
		if result.Text != "" {
			result.Outcome = OutcomeUpstreamError
		}
		send(&model.ChatChunk{Content: "Error: " + err.Error(), Error: true})
		logger.Warn().Err(err).Int("reply_len", len(result.Text)).Msg("chat stream failed")
	case result.Text == "":
		result.Outcome = OutcomeEmpty
		logger.Warn().Msg("chat stream ended without content")
	default:
		result.Outcome = OutcomeCompleted
	}
	close(chunks)

	// 客户端断开后仍需写入，使用与请求解耦的 context
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.persistTimeout)
	defer cancel()
	_ = s.transcript.Persist(persistCtx, result)

	logger.Info().
		Str("outcome", string(result.Outcome)).
		Int("reply_len", len(result.Text)).
		Dur("latency", result.FinishedAt.Sub(result.RequestedAt)).
		Msg("chat turn finished")
}
