package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"chatrelay/internal/ai"
	"chatrelay/internal/config"
	"chatrelay/internal/model"
	"chatrelay/internal/model/chat"
	chatrepo "chatrelay/internal/repository/chat"
)

type chatFixture struct {
	store     chatrepo.Store
	completer *fakeCompleter
	svc       *ChatService
	room      *chat.Room
}

func newChatFixture(t *testing.T, completer *fakeCompleter, aiCfg *config.AIConfig) *chatFixture {
	store := newTestStore(t)
	loc := mustLocation(t, "Asia/Shanghai")

	room := &chat.Room{UserID: "u1", Name: "room"}
	if err := store.Rooms().Create(context.Background(), room); err != nil {
		t.Fatalf("create room: %v", err)
	}

	chatCfg := &config.ChatConfig{
		HistoryLimit:   50,
		SystemPrompt:   "You are a helpful assistant.",
		PersistTimeout: 5 * time.Second,
	}
	svc := NewChatService(
		completer,
		NewHistoryLoader(store, chatCfg.HistoryLimit),
		NewTranscriptWriter(store.Messages(), loc),
		aiCfg,
		chatCfg,
	)
	return &chatFixture{store: store, completer: completer, svc: svc, room: room}
}

// drain 读取全部片段直到通道关闭
func drain(stream *TurnStream) []*model.ChatChunk {
	var chunks []*model.ChatChunk
	for c := range stream.Chunks {
		chunks = append(chunks, c)
	}
	return chunks
}

func contents(chunks []*model.ChatChunk) []string {
	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, c.Content)
	}
	return out
}

func TestChatService_RunTurn(t *testing.T) {
	aiCfg := &config.AIConfig{Model: "gpt-4o-mini"}

	Convey("ChatService.RunTurn", t, func() {
		ctx := context.Background()

		Convey("正常结束：逐片转发并写入一对消息", func() {
			f := newChatFixture(t, &fakeCompleter{fragments: []string{"Hel", "lo"}}, aiCfg)
			So(f.store.Messages().CreatePair(ctx,
				&chat.Message{RoomID: f.room.ID, UserID: "u1", Content: "earlier q", Role: chat.RoleUser, Model: "gpt-4o-mini", DateTime: "2024-05-19 10:00:00"},
				&chat.Message{RoomID: f.room.ID, UserID: "u1", Content: "earlier a", Role: chat.RoleAssistant, Model: "gpt-4o-mini", DateTime: "2024-05-19 10:00:01"},
			), ShouldBeNil)

			stream, err := f.svc.RunTurn(ctx, &Turn{RoomID: f.room.ID, UserID: "u1", Model: "gpt-4o-mini", Content: "Hi"})
			So(err, ShouldBeNil)

			chunks := drain(stream)
			So(contents(chunks), ShouldResemble, []string{"Hel", "lo"})

			result := stream.Wait()
			So(result.Outcome, ShouldEqual, OutcomeCompleted)
			So(result.Text, ShouldEqual, "Hello")
			So(result.Persisted(), ShouldBeTrue)

			req := f.completer.lastRequest()
			So(req.Model, ShouldEqual, "gpt-4o-mini")
			So(req.Messages, ShouldResemble, []ai.Message{
				{Role: "system", Content: "You are a helpful assistant."},
				{Role: "user", Content: "earlier q"},
				{Role: "assistant", Content: "earlier a"},
				{Role: "user", Content: "Hi"},
			})

			msgs, err := f.store.Messages().ListByRoom(ctx, f.room.ID)
			So(err, ShouldBeNil)
			So(len(msgs), ShouldEqual, 4)
			So(msgs[2].Role, ShouldEqual, chat.RoleUser)
			So(msgs[2].Content, ShouldEqual, "Hi")
			So(msgs[3].Role, ShouldEqual, chat.RoleAssistant)
			So(msgs[3].Content, ShouldEqual, "Hello")
			So(msgs[3].Model, ShouldEqual, "gpt-4o-mini")
			So(msgs[3].ID, ShouldEqual, msgs[2].ID+1)
		})

		Convey("上下文窗口只取最近 50 条", func() {
			f := newChatFixture(t, &fakeCompleter{fragments: []string{"ok"}}, aiCfg)
			for i := 0; i < 30; i++ {
				So(f.store.Messages().CreatePair(ctx,
					&chat.Message{RoomID: f.room.ID, UserID: "u1", Content: fmt.Sprintf("q%d", i), Role: chat.RoleUser, Model: "m", DateTime: "2024-05-19 10:00:00"},
					&chat.Message{RoomID: f.room.ID, UserID: "u1", Content: fmt.Sprintf("a%d", i), Role: chat.RoleAssistant, Model: "m", DateTime: "2024-05-19 10:00:00"},
				), ShouldBeNil)
			}

			stream, err := f.svc.RunTurn(ctx, &Turn{RoomID: f.room.ID, UserID: "u1", Content: "next"})
			So(err, ShouldBeNil)
			drain(stream)
			stream.Wait()

			req := f.completer.lastRequest()
			So(len(req.Messages), ShouldEqual, 52)
			So(req.Messages[1].Content, ShouldEqual, "q5")
			So(req.Messages[50].Content, ShouldEqual, "a29")
			So(req.Messages[51].Content, ShouldEqual, "next")
		})

		Convey("未指定模型时使用默认模型", func() {
			f := newChatFixture(t, &fakeCompleter{fragments: []string{"ok"}}, aiCfg)
			stream, err := f.svc.RunTurn(ctx, &Turn{RoomID: f.room.ID, UserID: "u1", Content: "Hi"})
			So(err, ShouldBeNil)
			drain(stream)
			So(stream.Wait().Turn.Model, ShouldEqual, "gpt-4o-mini")
			So(f.completer.lastRequest().Model, ShouldEqual, "gpt-4o-mini")
		})

		Convey("上游没有输出任何片段时不写入记录", func() {
			f := newChatFixture(t, &fakeCompleter{}, aiCfg)
			stream, err := f.svc.RunTurn(ctx, &Turn{RoomID: f.room.ID, UserID: "u1", Content: "Hi"})
			So(err, ShouldBeNil)

			So(drain(stream), ShouldBeEmpty)
			result := stream.Wait()
			So(result.Outcome, ShouldEqual, OutcomeEmpty)
			So(result.Persisted(), ShouldBeFalse)

			msgs, _ := f.store.Messages().ListByRoom(ctx, f.room.ID)
			So(msgs, ShouldBeEmpty)
		})

		Convey("输出部分片段后失败：转发错误片段并写入部分回复", func() {
			f := newChatFixture(t, &fakeCompleter{
				fragments: []string{"par"},
				recvErr:   errors.New("connection reset"),
			}, aiCfg)
			stream, err := f.svc.RunTurn(ctx, &Turn{RoomID: f.room.ID, UserID: "u1", Content: "Hi"})
			So(err, ShouldBeNil)

			chunks := drain(stream)
			So(contents(chunks), ShouldResemble, []string{"par", "Error: connection reset"})
			So(chunks[0].Error, ShouldBeFalse)
			So(chunks[1].Error, ShouldBeTrue)

			result := stream.Wait()
			So(result.Outcome, ShouldEqual, OutcomeUpstreamError)
			So(result.Err, ShouldNotBeNil)

			msgs, _ := f.store.Messages().ListByRoom(ctx, f.room.ID)
			So(len(msgs), ShouldEqual, 2)
			So(msgs[1].Content, ShouldEqual, "par")
		})

		Convey("请求上游失败：只转发错误片段，不写入记录", func() {
			f := newChatFixture(t, &fakeCompleter{streamErr: errors.New("401 unauthorized")}, aiCfg)
			stream, err := f.svc.RunTurn(ctx, &Turn{RoomID: f.room.ID, UserID: "u1", Content: "Hi"})
			So(err, ShouldBeNil)

			So(contents(drain(stream)), ShouldResemble, []string{"Error: 401 unauthorized"})
			result := stream.Wait()
			So(result.Outcome, ShouldEqual, OutcomeEmpty)

			msgs, _ := f.store.Messages().ListByRoom(ctx, f.room.ID)
			So(msgs, ShouldBeEmpty)
		})

		Convey("客户端断开后仍写入已送达的回复", func() {
			f := newChatFixture(t, &fakeCompleter{fragments: []string{"par", "tial", "never"}}, aiCfg)
			turnCtx, cancel := context.WithCancel(ctx)
			stream, err := f.svc.RunTurn(turnCtx, &Turn{RoomID: f.room.ID, UserID: "u1", Content: "Hi"})
			So(err, ShouldBeNil)

			first := <-stream.Chunks
			So(first.Content, ShouldEqual, "par")
			cancel()

			result := stream.Wait()
			So(result.Outcome, ShouldEqual, OutcomeUpstreamError)
			So(errors.Is(result.Err, context.Canceled), ShouldBeTrue)
			// "tial" 已从上游读出但未送达，不计入回复
			So(result.Text, ShouldEqual, "par")

			msgs, _ := f.store.Messages().ListByRoom(ctx, f.room.ID)
			So(len(msgs), ShouldEqual, 2)
			So(msgs[1].Content, ShouldEqual, "par")
		})

		Convey("消息时间：user 为请求时间，assistant 为结束时间", func() {
			f := newChatFixture(t, &fakeCompleter{fragments: []string{"ok"}}, aiCfg)
			times := []time.Time{
				time.Date(2024, 5, 20, 0, 0, 1, 0, time.UTC),
				time.Date(2024, 5, 20, 0, 0, 9, 0, time.UTC),
			}
			call := 0
			f.svc.now = func() time.Time {
				ts := times[call]
				if call < len(times)-1 {
					call++
				}
				return ts
			}

			stream, err := f.svc.RunTurn(ctx, &Turn{RoomID: f.room.ID, UserID: "u1", Content: "Hi"})
			So(err, ShouldBeNil)
			drain(stream)
			stream.Wait()

			msgs, _ := f.store.Messages().ListByRoom(ctx, f.room.ID)
			So(len(msgs), ShouldEqual, 2)
			So(msgs[0].DateTime, ShouldEqual, "2024-05-20 08:00:01")
			So(msgs[1].DateTime, ShouldEqual, "2024-05-20 08:00:09")
		})

		Convey("参数错误时不调用上游", func() {
			f := newChatFixture(t, &fakeCompleter{fragments: []string{"x"}}, aiCfg)

			cases := []*Turn{
				{RoomID: f.room.ID, UserID: "u1", Content: "   "},
				{RoomID: 0, UserID: "u1", Content: "Hi"},
				{RoomID: f.room.ID, UserID: "", Content: "Hi"},
				{RoomID: f.room.ID, UserID: "u1", Content: strings.Repeat("长", chat.MaxContentLength+1)},
			}
			for _, turn := range cases {
				_, err := f.svc.RunTurn(ctx, turn)
				So(errors.Is(err, ErrInvalidRequest), ShouldBeTrue)
			}
			So(f.completer.calls(), ShouldEqual, 0)
		})

		Convey("房间不存在或属于其他用户时返回 ErrRoomNotFound", func() {
			f := newChatFixture(t, &fakeCompleter{fragments: []string{"x"}}, aiCfg)

			_, err := f.svc.RunTurn(ctx, &Turn{RoomID: 99999, UserID: "u1", Content: "Hi"})
			So(err, ShouldEqual, ErrRoomNotFound)

			_, err = f.svc.RunTurn(ctx, &Turn{RoomID: f.room.ID, UserID: "u2", Content: "Hi"})
			So(err, ShouldEqual, ErrRoomNotFound)
			So(f.completer.calls(), ShouldEqual, 0)
		})

		Convey("配置了模型目录时只接受目录中的模型", func() {
			catalog := &config.AIConfig{
				Model:  "gpt-4o-mini",
				Models: []config.ModelConfig{{Name: "gpt-4o-mini", Default: true}, {Name: "gpt-4o"}},
			}
			f := newChatFixture(t, &fakeCompleter{fragments: []string{"x"}}, catalog)

			_, err := f.svc.RunTurn(ctx, &Turn{RoomID: f.room.ID, UserID: "u1", Model: "llama", Content: "Hi"})
			So(errors.Is(err, ErrInvalidRequest), ShouldBeTrue)

			stream, err := f.svc.RunTurn(ctx, &Turn{RoomID: f.room.ID, UserID: "u1", Model: "gpt-4o", Content: "Hi"})
			So(err, ShouldBeNil)
			drain(stream)
			So(stream.Wait().Outcome, ShouldEqual, OutcomeCompleted)
		})
	})
}
