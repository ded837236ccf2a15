package service

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"chatrelay/internal/model/chat"
)

func roomIDs(rooms []*chat.Room) []int64 {
	ids := make([]int64, 0, len(rooms))
	for _, r := range rooms {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestCategorize(t *testing.T) {
	Convey("Categorize 按相对时间分组", t, func() {
		loc := mustLocation(t, "Asia/Shanghai")
		now := time.Date(2024, 5, 20, 8, 0, 0, 0, loc)

		rooms := []*chat.Room{
			{ID: 7, CreatedAt: now.Add(30 * time.Hour)},                     // 明天，不在任何区间
			{ID: 1, CreatedAt: now, Active: true},                           // 今天
			{ID: 2, CreatedAt: now.Add(-12 * time.Hour)},                    // 5-19 20:00 昨天
			{ID: 3, CreatedAt: now.Add(-36 * time.Hour)},                    // 5-18 20:00 三天内
			{ID: 4, CreatedAt: now.Add(-5 * 24 * time.Hour)},                // 5-15 七天内
			{ID: 5, CreatedAt: now.Add(-10 * 24 * time.Hour)},               // 5-10 一个月内
			{ID: 6, CreatedAt: now.Add(-45 * 24 * time.Hour), Active: true}, // 超出一个月
		}

		result := Categorize(rooms, now, loc)
		So(roomIDs(result.Today), ShouldResemble, []int64{1})
		So(roomIDs(result.Yesterday), ShouldResemble, []int64{2})
		So(roomIDs(result.ThreeDays), ShouldResemble, []int64{3})
		So(roomIDs(result.SevenDays), ShouldResemble, []int64{4})
		So(roomIDs(result.OneMonth), ShouldResemble, []int64{5})
		So(roomIDs(result.Active), ShouldResemble, []int64{1, 6})

		Convey("区间边界左闭右开", func() {
			todayStart := time.Date(2024, 5, 20, 0, 0, 0, 0, loc)
			edge := []*chat.Room{
				{ID: 1, CreatedAt: todayStart},
				{ID: 2, CreatedAt: todayStart.Add(-time.Nanosecond)},
				{ID: 3, CreatedAt: todayStart.AddDate(0, 0, -1)},
				{ID: 4, CreatedAt: todayStart.AddDate(0, 0, -3)},
				{ID: 5, CreatedAt: todayStart.AddDate(0, 0, -7)},
				{ID: 6, CreatedAt: todayStart.AddDate(0, 0, -30)},
				{ID: 7, CreatedAt: todayStart.AddDate(0, 0, -30).Add(-time.Second)},
			}
			r := Categorize(edge, now, loc)
			So(roomIDs(r.Today), ShouldResemble, []int64{1})
			// 每个区间的左端点属于该区间
			So(roomIDs(r.Yesterday), ShouldResemble, []int64{2, 3})
			So(roomIDs(r.ThreeDays), ShouldResemble, []int64{4})
			So(roomIDs(r.SevenDays), ShouldResemble, []int64{5})
			So(roomIDs(r.OneMonth), ShouldResemble, []int64{6})
			// 早于一个月区间的房间不出现在任何分组
			total := len(r.Today) + len(r.Yesterday) + len(r.ThreeDays) + len(r.SevenDays) + len(r.OneMonth)
			So(total, ShouldEqual, 6)
		})

		Convey("今天的零点按配置的时区计算", func() {
			// UTC 5-19 17:00 在上海已是 5-20 01:00
			created := time.Date(2024, 5, 19, 17, 0, 0, 0, time.UTC)
			r := Categorize([]*chat.Room{{ID: 1, CreatedAt: created}}, now, loc)
			So(roomIDs(r.Today), ShouldResemble, []int64{1})

			r = Categorize([]*chat.Room{{ID: 1, CreatedAt: created}}, now, time.UTC)
			So(roomIDs(r.Yesterday), ShouldResemble, []int64{1})
		})

		Convey("没有房间时各分组为空数组", func() {
			r := Categorize(nil, now, loc)
			So(r.Today, ShouldNotBeNil)
			So(r.Today, ShouldBeEmpty)
			So(r.Active, ShouldNotBeNil)
		})
	})
}

func TestRoomBucketer_Categorize(t *testing.T) {
	Convey("RoomBucketer 只查询 [now-30d, now+1d) 内的房间", t, func() {
		ctx := context.Background()
		store := newTestStore(t)
		loc := mustLocation(t, "Asia/Shanghai")
		now := time.Date(2024, 5, 20, 8, 0, 0, 0, loc)

		offsets := []time.Duration{0, -12 * time.Hour, -36 * time.Hour, -5 * 24 * time.Hour, -10 * 24 * time.Hour, -45 * 24 * time.Hour}
		var created []*chat.Room
		for i, off := range offsets {
			room := &chat.Room{UserID: "u1", Name: "r", CreatedAt: now.Add(off), Active: i == 5}
			So(store.Rooms().Create(ctx, room), ShouldBeNil)
			created = append(created, room)
		}
		other := &chat.Room{UserID: "u2", Name: "other", CreatedAt: now}
		So(store.Rooms().Create(ctx, other), ShouldBeNil)

		bucketer := NewRoomBucketer(store.Rooms(), loc, nil, 0)
		result, err := bucketer.Categorize(ctx, "u1", now)
		So(err, ShouldBeNil)

		So(roomIDs(result.Today), ShouldResemble, []int64{created[0].ID})
		So(roomIDs(result.Yesterday), ShouldResemble, []int64{created[1].ID})
		So(roomIDs(result.ThreeDays), ShouldResemble, []int64{created[2].ID})
		So(roomIDs(result.SevenDays), ShouldResemble, []int64{created[3].ID})
		So(roomIDs(result.OneMonth), ShouldResemble, []int64{created[4].ID})
		// 45 天前的房间不在查询窗口内，即使 active 也不返回
		So(result.Active, ShouldBeEmpty)
	})
}

func TestRoomBucketer_CacheConsistency(t *testing.T) {
	Convey("分组缓存", t, func() {
		ctx := context.Background()
		store := newTestStore(t)
		loc := mustLocation(t, "Asia/Shanghai")
		now := time.Date(2024, 5, 20, 10, 0, 0, 0, loc)

		recent := &chat.Room{UserID: "u1", Name: "recent", CreatedAt: now.Add(-time.Hour)}
		edge := &chat.Room{UserID: "u1", Name: "edge", CreatedAt: now.AddDate(0, 0, -30).Add(time.Hour)}
		So(store.Rooms().Create(ctx, recent), ShouldBeNil)
		So(store.Rooms().Create(ctx, edge), ShouldBeNil)

		rooms := &hookedRoomRepo{RoomRepository: store.Rooms()}
		bucketer := NewRoomBucketer(rooms, loc, newMemoryRoomCache(), time.Minute)
		svc := NewRoomService(store, bucketer)

		Convey("查询期间发生的变更不会被旧结果覆盖", func() {
			// 存储读取完成后、写缓存之前，另一个请求更新了 active
			rooms.afterList = func() {
				_, err := svc.UpdateActive(ctx, "u1", []chat.ActiveItem{{ID: recent.ID, Active: boolPtr(true)}})
				So(err, ShouldBeNil)
			}

			stale, err := bucketer.Categorize(ctx, "u1", now)
			So(err, ShouldBeNil)
			So(stale.Active, ShouldBeEmpty)

			fresh, err := bucketer.Categorize(ctx, "u1", now)
			So(err, ShouldBeNil)
			So(roomIDs(fresh.Active), ShouldResemble, []int64{recent.ID})
			So(rooms.calls, ShouldEqual, 2)
		})

		Convey("命中缓存时按当前时刻重新划定查询窗口", func() {
			first, err := bucketer.Categorize(ctx, "u1", now)
			So(err, ShouldBeNil)
			So(roomIDs(first.Today), ShouldResemble, []int64{recent.ID})
			So(roomIDs(first.OneMonth), ShouldResemble, []int64{edge.ID})

			// 两小时后 edge 已早于 now-30d
			later, err := bucketer.Categorize(ctx, "u1", now.Add(2*time.Hour))
			So(err, ShouldBeNil)
			So(rooms.calls, ShouldEqual, 1)
			So(roomIDs(later.Today), ShouldResemble, []int64{recent.ID})
			So(later.OneMonth, ShouldBeEmpty)
		})

		Convey("结果与不使用缓存时一致", func() {
			plain := NewRoomBucketer(store.Rooms(), loc, nil, 0)
			for _, at := range []time.Time{now, now.Add(2 * time.Hour), now.Add(13 * time.Hour)} {
				cached, err := bucketer.Categorize(ctx, "u1", at)
				So(err, ShouldBeNil)
				direct, err := plain.Categorize(ctx, "u1", at)
				So(err, ShouldBeNil)
				So(roomIDs(cached.Today), ShouldResemble, roomIDs(direct.Today))
				So(roomIDs(cached.Yesterday), ShouldResemble, roomIDs(direct.Yesterday))
				So(roomIDs(cached.OneMonth), ShouldResemble, roomIDs(direct.OneMonth))
				So(roomIDs(cached.Active), ShouldResemble, roomIDs(direct.Active))
			}
		})
	})
}
