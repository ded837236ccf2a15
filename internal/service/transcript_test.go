package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"chatrelay/internal/model/chat"
)

func TestTranscriptWriter_Persist(t *testing.T) {
	Convey("TranscriptWriter.Persist", t, func() {
		ctx := context.Background()
		store := newTestStore(t)
		loc := mustLocation(t, "Asia/Shanghai")
		writer := NewTranscriptWriter(store.Messages(), loc)

		room := &chat.Room{UserID: "u1", Name: "room"}
		So(store.Rooms().Create(ctx, room), ShouldBeNil)

		newResult := func(text string, outcome Outcome) *StreamResult {
			return &StreamResult{
				Turn:        Turn{RoomID: room.ID, UserID: "u1", Model: "gpt-4o-mini", Content: "Hi"},
				Text:        text,
				Outcome:     outcome,
				RequestedAt: time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC),
				FinishedAt:  time.Date(2024, 5, 20, 0, 0, 3, 0, time.UTC),
			}
		}

		Convey("重复调用只写入一次", func() {
			result := newResult("Hello", OutcomeCompleted)
			So(writer.Persist(ctx, result), ShouldBeNil)
			So(writer.Persist(ctx, result), ShouldBeNil)

			msgs, _ := store.Messages().ListByRoom(ctx, room.ID)
			So(len(msgs), ShouldEqual, 2)
			So(msgs[0].DateTime, ShouldEqual, "2024-05-20 08:00:00")
			So(msgs[1].DateTime, ShouldEqual, "2024-05-20 08:00:03")
		})

		Convey("空回复不写入", func() {
			So(writer.Persist(ctx, newResult("", OutcomeEmpty)), ShouldBeNil)
			So(writer.Persist(ctx, newResult("", OutcomeUpstreamError)), ShouldBeNil)
			msgs, _ := store.Messages().ListByRoom(ctx, room.ID)
			So(msgs, ShouldBeEmpty)
		})

		Convey("部分回复在上游失败时写入", func() {
			So(writer.Persist(ctx, newResult("par", OutcomeUpstreamError)), ShouldBeNil)
			msgs, _ := store.Messages().ListByRoom(ctx, room.ID)
			So(len(msgs), ShouldEqual, 2)
			So(msgs[1].Content, ShouldEqual, "par")
		})

		Convey("回复超长时校验失败，不写入任何消息", func() {
			err := writer.Persist(ctx, newResult(strings.Repeat("a", chat.MaxContentLength+1), OutcomeCompleted))
			var ve *ValidationError
			So(errors.As(err, &ve), ShouldBeTrue)
			So(ve.Fields[0].Rule, ShouldEqual, "max")

			msgs, _ := store.Messages().ListByRoom(ctx, room.ID)
			So(msgs, ShouldBeEmpty)
		})

		Convey("存储失败时返回错误", func() {
			failing := NewTranscriptWriter(failingMessageRepo{}, loc)
			result := newResult("Hello", OutcomeCompleted)
			So(failing.Persist(ctx, result), ShouldNotBeNil)
			So(result.Persisted(), ShouldBeTrue)
		})
	})
}
