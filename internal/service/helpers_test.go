package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"chatrelay/internal/ai"
	"chatrelay/internal/config"
	"chatrelay/internal/model/chat"
	"chatrelay/internal/pkg/cache"
	"chatrelay/internal/pkg/sqldb"
	chatrepo "chatrelay/internal/repository/chat"
)

func newTestStore(t *testing.T) chatrepo.Store {
	db, err := sqldb.OpenSQLite(&config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "chat.db")})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := sqldb.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return chatrepo.NewGormStore(db)
}

func mustLocation(t *testing.T, name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("load location %s: %v", name, err)
	}
	return loc
}

func boolPtr(v bool) *bool { return &v }

// fakeCompleter 按预设片段输出，并记录收到的请求
type fakeCompleter struct {
	fragments []string
	streamErr error // Stream 直接返回的错误
	recvErr   error // 输出完片段后返回的错误

	mu       sync.Mutex
	requests []*ai.CompletionRequest
}

func (f *fakeCompleter) Stream(ctx context.Context, req *ai.CompletionRequest) (ai.FragmentReader, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.streamErr != nil {
		return nil, f.streamErr
	}
	return &fakeReader{fragments: f.fragments, err: f.recvErr}, nil
}

func (f *fakeCompleter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeCompleter) lastRequest() *ai.CompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	return f.requests[len(f.requests)-1]
}

type fakeReader struct {
	fragments []string
	err       error
	pos       int
	closed    bool
}

func (r *fakeReader) Recv() (string, error) {
	if r.pos < len(r.fragments) {
		r.pos++
		return r.fragments[r.pos-1], nil
	}
	if r.err != nil {
		return "", r.err
	}
	return "", io.EOF
}

func (r *fakeReader) Close() { r.closed = true }

// failingMessageRepo CreatePair 总是失败
type failingMessageRepo struct {
	chatrepo.MessageRepository
}

func (failingMessageRepo) CreatePair(ctx context.Context, user, assistant *chat.Message) error {
	return errors.New("disk full")
}

// memoryRoomCache 内存实现的 RoomCache，值按 JSON 保存，与 Redis 的行为一致
type memoryRoomCache struct {
	mu       sync.Mutex
	values   map[string][]byte
	counters map[string]int64
}

func newMemoryRoomCache() *memoryRoomCache {
	return &memoryRoomCache{values: map[string][]byte{}, counters: map[string]int64{}}
}

func (c *memoryRoomCache) Get(ctx context.Context, key string, dest any) error {
	c.mu.Lock()
	data, ok := c.values[key]
	c.mu.Unlock()
	if !ok {
		return cache.ErrMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *memoryRoomCache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.values[key] = data
	c.mu.Unlock()
	return nil
}

func (c *memoryRoomCache) Incr(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[key]++
	return c.counters[key], nil
}

func (c *memoryRoomCache) GetInt64(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counters[key], nil
}

// DeleteByPattern 只支持以 * 结尾的前缀模式
func (c *memoryRoomCache) DeleteByPattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.values {
		if strings.HasPrefix(key, prefix) {
			delete(c.values, key)
		}
	}
	return nil
}

// hookedRoomRepo 统计 ListCreatedBetween 调用次数，并可在查询返回前执行一次 afterList
type hookedRoomRepo struct {
	chatrepo.RoomRepository
	calls     int
	afterList func()
}

func (r *hookedRoomRepo) ListCreatedBetween(ctx context.Context, userID string, from, to time.Time) ([]*chat.Room, error) {
	r.calls++
	rooms, err := r.RoomRepository.ListCreatedBetween(ctx, userID, from, to)
	if hook := r.afterList; hook != nil {
		r.afterList = nil
		hook()
	}
	return rooms, err
}
