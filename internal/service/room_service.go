package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"chatrelay/internal/model"
	"chatrelay/internal/model/chat"
	chatrepo "chatrelay/internal/repository/chat"
)

// RoomService 房间服务
type RoomService struct {
	rooms    chatrepo.RoomRepository
	messages chatrepo.MessageRepository
	bucketer *RoomBucketer
}

// NewRoomService 创建房间服务
func NewRoomService(store chatrepo.Store, bucketer *RoomBucketer) *RoomService {
	return &RoomService{
		rooms:    store.Rooms(),
		messages: store.Messages(),
		bucketer: bucketer,
	}
}

// findOwnedRoom 查询属于 userID 的房间，其他用户的房间同样视为不存在
func findOwnedRoom(ctx context.Context, rooms chatrepo.RoomRepository, userID string, roomID int64) (*chat.Room, error) {
	if roomID <= 0 {
		return nil, ErrRoomNotFound
	}
	room, err := rooms.FindByID(ctx, roomID)
	if errors.Is(err, chatrepo.ErrNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	if room.UserID != userID {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// Create 创建房间
func (s *RoomService) Create(ctx context.Context, userID, name string) (*chat.Room, error) {
	room := &chat.Room{
		UserID:    userID,
		Name:      strings.TrimSpace(name),
		CreatedAt: time.Now(),
	}
	if err := validateStruct(room); err != nil {
		return nil, err
	}
	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, err
	}

	s.bucketer.Invalidate(ctx, userID)
	log.Info().Int64("room_id", room.ID).Str("user_id", userID).Msg("room created")
	return room, nil
}

// List 列出用户的房间，search 按名称模糊匹配
func (s *RoomService) List(ctx context.Context, userID, search string) ([]*chat.Room, error) {
	return s.rooms.ListByUser(ctx, userID, search)
}

// Get 查询房间
func (s *RoomService) Get(ctx context.Context, userID string, roomID int64) (*chat.Room, error) {
	return findOwnedRoom(ctx, s.rooms, userID, roomID)
}

// Rename 重命名房间
func (s *RoomService) Rename(ctx context.Context, userID string, roomID int64, name string) (*chat.Room, error) {
	room, err := findOwnedRoom(ctx, s.rooms, userID, roomID)
	if err != nil {
		return nil, err
	}

	room.Name = strings.TrimSpace(name)
	if err := validateStruct(room); err != nil {
		return nil, err
	}
	if err := s.rooms.Rename(ctx, roomID, room.Name); err != nil {
		if errors.Is(err, chatrepo.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	s.bucketer.Invalidate(ctx, userID)
	return room, nil
}

// Delete 删除房间及其消息
func (s *RoomService) Delete(ctx context.Context, userID string, roomID int64) error {
	if _, err := findOwnedRoom(ctx, s.rooms, userID, roomID); err != nil {
		return err
	}
	if err := s.rooms.Delete(ctx, roomID); err != nil {
		if errors.Is(err, chatrepo.ErrNotFound) {
			return ErrRoomNotFound
		}
		return err
	}

	s.bucketer.Invalidate(ctx, userID)
	log.Info().Int64("room_id", roomID).Str("user_id", userID).Msg("room deleted")
	return nil
}

// Messages 列出房间的全部消息（按 ID 升序）
func (s *RoomService) Messages(ctx context.Context, userID string, roomID int64) ([]*chat.Message, error) {
	if _, err := findOwnedRoom(ctx, s.rooms, userID, roomID); err != nil {
		return nil, err
	}
	return s.messages.ListByRoom(ctx, roomID)
}

// Categorize 按创建时间分组用户的房间
func (s *RoomService) Categorize(ctx context.Context, userID string, now time.Time) (*model.CategorizedRooms, error) {
	return s.bucketer.Categorize(ctx, userID, now)
}

// UpdateActive 批量设置 active 标记
// 先逐项校验，任一项无效则整体失败；任一房间不存在则不写入任何数据
func (s *RoomService) UpdateActive(ctx context.Context, userID string, items []chat.ActiveItem) ([]*chat.Room, error) {
	for i := range items {
		if err := validateStruct(&items[i]); err != nil {
			return nil, invalidRequest("item %d: %v", i, err)
		}
	}
	if len(items) == 0 {
		return []*chat.Room{}, nil
	}

	rooms, err := s.rooms.BulkSetActive(ctx, userID, items)
	if errors.Is(err, chatrepo.ErrNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}

	s.bucketer.Invalidate(ctx, userID)
	log.Info().Int("count", len(items)).Str("user_id", userID).Msg("room active flags updated")
	return rooms, nil
}
