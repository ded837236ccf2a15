package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"chatrelay/internal/model/chat"
	chatrepo "chatrelay/internal/repository/chat"
)

// TranscriptWriter 在一轮对话结束后写入 user / assistant 消息对
type TranscriptWriter struct {
	messages chatrepo.MessageRepository
	loc      *time.Location
}

// NewTranscriptWriter 创建记录写入器，loc 决定 date_time 的时区
func NewTranscriptWriter(messages chatrepo.MessageRepository, loc *time.Location) *TranscriptWriter {
	return &TranscriptWriter{messages: messages, loc: loc}
}

// Persist 写入一轮对话
// 只有 completed / upstream_error 且回复非空时才写入；同一个 StreamResult 至多写入一次，重复调用直接返回
func (w *TranscriptWriter) Persist(ctx context.Context, result *StreamResult) error {
	if !result.ShouldPersist() {
		return nil
	}
	if !result.persisted.CompareAndSwap(false, true) {
		return nil
	}

	logger := log.With().
		Int64("room_id", result.Turn.RoomID).
		Str("user_id", result.Turn.UserID).
		Str("model", result.Turn.Model).
		Logger()

	user := &chat.Message{
		RoomID:   result.Turn.RoomID,
		UserID:   result.Turn.UserID,
		Content:  result.Turn.Content,
		Role:     chat.RoleUser,
		Model:    result.Turn.Model,
		DateTime: result.RequestedAt.In(w.loc).Format(chat.DateTimeLayout),
	}
	assistant := &chat.Message{
		RoomID:   result.Turn.RoomID,
		UserID:   result.Turn.UserID,
		Content:  result.Text,
		Role:     chat.RoleAssistant,
		Model:    result.Turn.Model,
		DateTime: result.FinishedAt.In(w.loc).Format(chat.DateTimeLayout),
	}

	for _, m := range []*chat.Message{user, assistant} {
		if err := validateStruct(m); err != nil {
			logger.Error().Err(err).Str("role", m.Role.String()).Msg("transcript validation failed")
			return err
		}
	}

	if err := w.messages.CreatePair(ctx, user, assistant); err != nil {
		logger.Error().Err(err).Msg("failed to persist transcript")
		return err
	}

	logger.Debug().
		Int64("user_message_id", user.ID).
		Int64("assistant_message_id", assistant.ID).
		Str("outcome", string(result.Outcome)).
		Msg("transcript persisted")
	return nil
}
