package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"kanban-api/domain"
)

type backend interface {
	ListBoards(ctx context.Context) ([]domain.Board, error)
	GetBoard(ctx context.Context, id string) (domain.Board, error)
	SaveBoard(ctx context.Context, b domain.Board) error
	DeleteBoard(ctx context.Context, id string) error
}

// Cache wraps a board store with Redis-backed caching for read operations.
// Redis trouble never fails a request; reads fall back to the backing store.
type Cache struct {
	base  backend
	redis *redis.Client
	ttl   time.Duration
}

// NewCache creates a caching wrapper using the provided Redis client and TTL.
func NewCache(base backend, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("storage.NewCache: base store is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{base: base, redis: client, ttl: ttl}
}

func (c *Cache) ListBoards(ctx context.Context) ([]domain.Board, error) {
	if boards, ok := c.loadList(ctx); ok {
		return boards, nil
	}
	boards, err := c.base.ListBoards(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, listCacheKey(), boards)
	return boards, nil
}

func (c *Cache) GetBoard(ctx context.Context, id string) (domain.Board, error) {
	if board, ok := c.loadBoard(ctx, id); ok {
		return board, nil
	}
	board, err := c.base.GetBoard(ctx, id)
	if err != nil {
		return domain.Board{}, err
	}
	c.store(ctx, boardCacheKey(id), board)
	return board, nil
}

func (c *Cache) SaveBoard(ctx context.Context, b domain.Board) error {
	if err := c.base.SaveBoard(ctx, b); err != nil {
		return err
	}
	c.evict(ctx, b.ID)
	return nil
}

func (c *Cache) DeleteBoard(ctx context.Context, id string) error {
	if err := c.base.DeleteBoard(ctx, id); err != nil {
		return err
	}
	c.evict(ctx, id)
	return nil
}

func (c *Cache) loadList(ctx context.Context) ([]domain.Board, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, listCacheKey()).Bytes()
	if err != nil {
		if err != redis.Nil {
			_ = c.redis.Del(ctx, listCacheKey()).Err()
		}
		return nil, false
	}
	var boards []domain.Board
	if err := json.Unmarshal(data, &boards); err != nil {
		_ = c.redis.Del(ctx, listCacheKey()).Err()
		return nil, false
	}
	return boards, true
}

func (c *Cache) loadBoard(ctx context.Context, id string) (domain.Board, bool) {
	if c.redis == nil {
		return domain.Board{}, false
	}
	data, err := c.redis.Get(ctx, boardCacheKey(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			_ = c.redis.Del(ctx, boardCacheKey(id)).Err()
		}
		return domain.Board{}, false
	}
	var board domain.Board
	if err := json.Unmarshal(data, &board); err != nil {
		_ = c.redis.Del(ctx, boardCacheKey(id)).Err()
		return domain.Board{}, false
	}
	return board, true
}

func (c *Cache) store(ctx context.Context, key string, value any) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.ttl).Err()
}

func (c *Cache) evict(ctx context.Context, boardID string) {
	if c.redis == nil {
		return
	}
	_, _ = c.redis.Del(ctx, boardCacheKey(boardID), listCacheKey()).Result()
}

func boardCacheKey(id string) string {
	return "board:" + id
}

func listCacheKey() string {
	return "boards:all"
}
