package ai

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	"chatrelay/internal/ai/component"
	"chatrelay/internal/config"
)

// Message 发往模型的一条上下文消息
type Message struct {
	Role    string
	Content string
}

// CompletionRequest 流式补全请求
type CompletionRequest struct {
	Model    string    // 本次请求使用的模型，为空时使用配置的默认模型
	Messages []Message // 系统提示 + 历史 + 本轮用户消息
}

// FragmentReader 增量文本读取器
// Recv 返回 io.EOF 表示正常结束，其他错误表示上游中途失败
type FragmentReader interface {
	Recv() (string, error)
	Close()
}

// Completer 流式补全能力
type Completer interface {
	Stream(ctx context.Context, req *CompletionRequest) (FragmentReader, error)
}

// Client AI 能力层客户端
// 职责: 把 eino ChatModel 的流式输出适配为 FragmentReader
type Client struct {
	cfg       *config.AIConfig
	chatModel model.BaseChatModel
}

// NewCompleter 按配置创建补全客户端
// 未配置 API Key 时返回 MockCompleter，便于本地调试
func NewCompleter(ctx context.Context, cfg *config.AIConfig) (Completer, error) {
	if cfg.APIKey == "" {
		log.Warn().Msg("AI API key not configured, using mock mode")
		return NewMockCompleter(), nil
	}

	chatModel, err := component.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return NewClient(cfg, chatModel), nil
}

// NewClient 使用已创建的 ChatModel 构造客户端
func NewClient(cfg *config.AIConfig, chatModel model.BaseChatModel) *Client {
	return &Client{
		cfg:       cfg,
		chatModel: chatModel,
	}
}

// Stream 发起一次流式补全
func (c *Client) Stream(ctx context.Context, req *CompletionRequest) (FragmentReader, error) {
	messages := make([]*schema.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, &schema.Message{
			Role:    schema.RoleType(m.Role),
			Content: m.Content,
		})
	}

	modelName := req.Model
	if modelName == "" {
		modelName = c.cfg.Model
	}

	sr, err := c.chatModel.Stream(ctx, messages, model.WithModel(modelName))
	if err != nil {
		return nil, err
	}
	return &streamReader{sr: sr}, nil
}

// streamReader 将 schema.StreamReader 适配为 FragmentReader
type streamReader struct {
	sr *schema.StreamReader[*schema.Message]
}

// Recv 读取下一段非空文本
// 只携带角色或用量信息的分片没有文本，直接跳过
func (r *streamReader) Recv() (string, error) {
	for {
		msg, err := r.sr.Recv()
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		if err != nil {
			return "", err
		}
		if msg == nil || msg.Content == "" {
			continue
		}
		return msg.Content, nil
	}
}

func (r *streamReader) Close() {
	r.sr.Close()
}
