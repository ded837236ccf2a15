package ai

import (
	"context"
	"io"
	"strings"
	"time"
)

// MockCompleter 模拟补全，未配置 API Key 时使用
type MockCompleter struct {
	// Delay 每个片段之间的间隔，模拟逐字输出
	Delay time.Duration
}

// NewMockCompleter 创建模拟补全
func NewMockCompleter() *MockCompleter {
	return &MockCompleter{Delay: 50 * time.Millisecond}
}

// Stream 返回固定片段，并回显最后一条用户消息
func (m *MockCompleter) Stream(ctx context.Context, req *CompletionRequest) (FragmentReader, error) {
	var last string
	if n := len(req.Messages); n > 0 {
		last = req.Messages[n-1].Content
	}

	fragments := []string{"Hello! ", "This is ", "a mock ", "response"}
	if last != "" {
		fragments = append(fragments, " to: ", strings.TrimSpace(last))
	}
	fragments = append(fragments, ".")

	return &sliceReader{ctx: ctx, fragments: fragments, delay: m.Delay}, nil
}

// sliceReader 逐个返回预设片段
type sliceReader struct {
	ctx       context.Context
	fragments []string
	delay     time.Duration
	pos       int
}

func (r *sliceReader) Recv() (string, error) {
	if r.pos >= len(r.fragments) {
		return "", io.EOF
	}
	if r.delay > 0 {
		select {
		case <-r.ctx.Done():
			return "", r.ctx.Err()
		case <-time.After(r.delay):
		}
	} else if err := r.ctx.Err(); err != nil {
		return "", err
	}

	fragment := r.fragments[r.pos]
	r.pos++
	return fragment, nil
}

func (r *sliceReader) Close() {}
