package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"chatrelay/internal/model"
	"chatrelay/internal/model/chat"
	"chatrelay/internal/pkg/cache"
	chatrepo "chatrelay/internal/repository/chat"
)

// 分组查询窗口
const (
	bucketLookbackDays  = 30
	bucketLookaheadDays = 1
)

// RoomCache 房间分组使用的缓存
type RoomCache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
	GetInt64(ctx context.Context, key string) (int64, error)
	DeleteByPattern(ctx context.Context, pattern string) error
}

// RoomBucketer 按创建时间把房间分为今天、昨天、三天内、七天内、一个月内
type RoomBucketer struct {
	rooms chatrepo.RoomRepository
	loc   *time.Location
	cache RoomCache // 可选
	ttl   time.Duration
}

// NewRoomBucketer 创建分组服务，roomCache 为 nil 时不缓存
func NewRoomBucketer(rooms chatrepo.RoomRepository, loc *time.Location, roomCache RoomCache, ttl time.Duration) *RoomBucketer {
	return &RoomBucketer{
		rooms: rooms,
		loc:   loc,
		cache: roomCache,
		ttl:   ttl,
	}
}

// Categorize 返回用户在 [now-30d, now+1d) 内创建的房间的分组结果
func (b *RoomBucketer) Categorize(ctx context.Context, userID string, now time.Time) (*model.CategorizedRooms, error) {
	from := now.AddDate(0, 0, -bucketLookbackDays)
	to := now.AddDate(0, 0, bucketLookaheadDays)

	if b.cache == nil || b.ttl <= 0 {
		rooms, err := b.rooms.ListCreatedBetween(ctx, userID, from, to)
		if err != nil {
			return nil, err
		}
		return Categorize(rooms, now, b.loc), nil
	}

	rooms, err := b.cachedRooms(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	return Categorize(createdBetween(rooms, from, to), now, b.loc), nil
}

// cachedRooms 读取 [今天零点-30d, 今天零点+2d) 内的房间，当天任意时刻的查询窗口都落在其中。
// 缓存 key 带版本号，版本号在查询存储之前读取：查询期间发生的变更会递增版本，
// 本次写入的旧版本 key 不会再被读取。
func (b *RoomBucketer) cachedRooms(ctx context.Context, userID string, now time.Time) ([]*chat.Room, error) {
	todayStart := startOfDay(now, b.loc)
	load := func() ([]*chat.Room, error) {
		return b.rooms.ListCreatedBetween(ctx, userID,
			todayStart.AddDate(0, 0, -bucketLookbackDays),
			todayStart.AddDate(0, 0, bucketLookaheadDays+1))
	}

	version, err := b.cache.GetInt64(ctx, cache.RoomCategoriesVersionKey(userID))
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("failed to read room categories cache version")
		return load()
	}

	key := cache.RoomCategoriesKey(userID, version, todayStart)
	var rooms []*chat.Room
	err = b.cache.Get(ctx, key, &rooms)
	if err == nil {
		return rooms, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		log.Warn().Err(err).Str("key", key).Msg("failed to read room categories cache")
	}

	rooms, err = load()
	if err != nil {
		return nil, err
	}
	if err := b.cache.Set(ctx, key, rooms, b.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to write room categories cache")
	}
	return rooms, nil
}

// Invalidate 使用户的分组缓存失效，房间变更后调用
func (b *RoomBucketer) Invalidate(ctx context.Context, userID string) {
	if b.cache == nil {
		return
	}
	if _, err := b.cache.Incr(ctx, cache.RoomCategoriesVersionKey(userID)); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("failed to bump room categories cache version")
	}
	// 旧版本的 key 已不可达，这里只是提前释放
	if err := b.cache.DeleteByPattern(ctx, cache.RoomCategoriesPattern(userID)); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("failed to invalidate room categories cache")
	}
}

// createdBetween 保留创建时间在 [from, to) 内的房间，保持原有顺序
func createdBetween(rooms []*chat.Room, from, to time.Time) []*chat.Room {
	out := make([]*chat.Room, 0, len(rooms))
	for _, room := range rooms {
		if !room.CreatedAt.Before(from) && room.CreatedAt.Before(to) {
			out = append(out, room)
		}
	}
	return out
}

// Categorize 对已按创建时间倒序排列的房间分组
// 区间均为左闭右开，按 今天 > 昨天 > 三天 > 七天 > 一个月 的顺序取第一个匹配的区间；
// 不落在任何区间的房间（例如创建时间晚于今天结束）不出现在分组中。
// Active 包含所有 active=true 的房间，与分组互不影响。
func Categorize(rooms []*chat.Room, now time.Time, loc *time.Location) *model.CategorizedRooms {
	result := &model.CategorizedRooms{
		Today:     []*chat.Room{},
		Yesterday: []*chat.Room{},
		ThreeDays: []*chat.Room{},
		SevenDays: []*chat.Room{},
		OneMonth:  []*chat.Room{},
		Active:    []*chat.Room{},
	}

	ts := startOfDay(now, loc)
	buckets := []timeBucket{
		{from: ts, to: ts.AddDate(0, 0, 1), list: &result.Today},
		{from: ts.AddDate(0, 0, -1), to: ts, list: &result.Yesterday},
		{from: ts.AddDate(0, 0, -3), to: ts.AddDate(0, 0, -1), list: &result.ThreeDays},
		{from: ts.AddDate(0, 0, -7), to: ts.AddDate(0, 0, -3), list: &result.SevenDays},
		{from: ts.AddDate(0, 0, -30), to: ts.AddDate(0, 0, -7), list: &result.OneMonth},
	}

	for _, room := range rooms {
		for _, bucket := range buckets {
			if bucket.contains(room.CreatedAt) {
				*bucket.list = append(*bucket.list, room)
				break
			}
		}
		if room.Active {
			result.Active = append(result.Active, room)
		}
	}
	return result
}

type timeBucket struct {
	from, to time.Time
	list     *[]*chat.Room
}

func (b timeBucket) contains(t time.Time) bool {
	return !t.Before(b.from) && t.Before(b.to)
}

// startOfDay 返回 t 在 loc 时区当天的零点
func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
