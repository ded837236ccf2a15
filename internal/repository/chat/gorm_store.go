package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"chatrelay/internal/model/chat"
	"chatrelay/internal/pkg/sqldb"
)

// GormStore 基于 GORM 的会话存储（MySQL/SQLite）
type GormStore struct {
	db       *gorm.DB
	rooms    *GormRoomRepo
	messages *GormMessageRepo
}

// NewGormStore 创建 GORM 会话存储
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db:       db,
		rooms:    &GormRoomRepo{db: db},
		messages: &GormMessageRepo{db: db},
	}
}

// Rooms 房间仓库
func (s *GormStore) Rooms() RoomRepository { return s.rooms }

// Messages 消息仓库
func (s *GormStore) Messages() MessageRepository { return s.messages }

// Ping 检查连接
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close 关闭连接
func (s *GormStore) Close(ctx context.Context) error {
	return sqldb.Close(s.db)
}

// GormRoomRepo 房间仓库（GORM）
type GormRoomRepo struct {
	db *gorm.DB
}

// Create 创建房间
func (r *GormRoomRepo) Create(ctx context.Context, room *chat.Room) error {
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now()
	}
	// 统一按 UTC 存储，SQLite 以文本比较时间
	room.CreatedAt = room.CreatedAt.UTC()
	return r.db.WithContext(ctx).Create(room).Error
}

// FindByID 根据 ID 查询
func (r *GormRoomRepo) FindByID(ctx context.Context, id int64) (*chat.Room, error) {
	var room chat.Room
	err := r.db.WithContext(ctx).First(&room, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// Rename 修改名称
func (r *GormRoomRepo) Rename(ctx context.Context, id int64, name string) error {
	result := r.db.WithContext(ctx).Model(&chat.Room{}).Where("id = ?", id).Update("name", name)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete 删除房间及其消息
func (r *GormRoomRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", id).Delete(&chat.Message{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&chat.Room{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ListByUser 查询用户的房间
func (r *GormRoomRepo) ListByUser(ctx context.Context, userID, search string) ([]*chat.Room, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if search = strings.TrimSpace(search); search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var rooms []*chat.Room
	if err := query.Order("created_at DESC").Order("id DESC").Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}

// ListCreatedBetween 查询 [from, to) 内创建的房间
func (r *GormRoomRepo) ListCreatedBetween(ctx context.Context, userID string, from, to time.Time) ([]*chat.Room, error) {
	var rooms []*chat.Room
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, from.UTC(), to.UTC()).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

// BulkSetActive 批量设置 active 标记
func (r *GormRoomRepo) BulkSetActive(ctx context.Context, userID string, items []chat.ActiveItem) ([]*chat.Room, error) {
	ids, final := dedupeActiveItems(items)
	updated := make(map[int64]*chat.Room, len(ids))

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rooms []*chat.Room
		err := tx.Where("id IN ? AND user_id = ?", ids, userID).
			Find(&rooms).Error
		if err != nil {
			return err
		}
		if len(rooms) != len(ids) {
			return ErrNotFound
		}

		for _, room := range rooms {
			active := final[room.ID]
			if err := tx.Model(&chat.Room{}).Where("id = ?", room.ID).Update("active", active).Error; err != nil {
				return err
			}
			room.Active = active
			updated[room.ID] = room
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return orderByRequest(items, updated), nil
}

// GormMessageRepo 消息仓库（GORM）
type GormMessageRepo struct {
	db *gorm.DB
}

// ListLatest 返回最近 limit 条消息（升序）
func (r *GormMessageRepo) ListLatest(ctx context.Context, roomID int64, limit int) ([]*chat.Message, error) {
	var messages []*chat.Message
	// 先倒序取最近 limit 条，再按 ID 升序返回
	subQuery := r.db.Model(&chat.Message{}).
		Where("room_id = ?", roomID).
		Order("id DESC").
		Limit(limit)
	err := r.db.WithContext(ctx).
		Table("(?) AS latest", subQuery).
		Order("id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// ListByRoom 返回房间全部消息（升序）
func (r *GormMessageRepo) ListByRoom(ctx context.Context, roomID int64) ([]*chat.Message, error) {
	var messages []*chat.Message
	err := r.db.WithContext(ctx).Where("room_id = ?", roomID).Order("id ASC").Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// CreatePair 写入一轮对话
func (r *GormMessageRepo) CreatePair(ctx context.Context, user, assistant *chat.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return tx.Create(assistant).Error
	})
}
