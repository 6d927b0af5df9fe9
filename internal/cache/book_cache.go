package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/bookmarket/internal/model"
)

// BookCache 书籍详情的旁路缓存。详情页读多写少，
// 下单将书籍置为已售时按 ID 失效。
type BookCache struct {
	cache *redis.Client
	ttl   time.Duration
}

// NewBookCache 创建书籍缓存；ttl 为 0 时默认 10 分钟
func NewBookCache(cache *redis.Client, ttl time.Duration) *BookCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &BookCache{cache: cache, ttl: ttl}
}

func bookKey(bookID int64) string {
	return fmt.Sprintf("book:detail:%d", bookID)
}

// cachedBook 缓存专用包装。Book 的 Seller 关联在 JSON 序列化时被
// json:"-" 剔除，这里单独携带卖家快照，命中后重新挂回，
// 保证冷热读返回同样的详情（含 seller_name / seller_credit）。
type cachedBook struct {
	Book   *model.Book `json:"book"`
	Seller *sellerInfo `json:"seller,omitempty"`
}

type sellerInfo struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Credit   int    `json:"credit"`
}

// Get 读取缓存中的书籍详情；未命中返回 (nil, nil)
func (c *BookCache) Get(ctx context.Context, bookID int64) (*model.Book, error) {
	data, err := c.cache.Get(ctx, bookKey(bookID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var entry cachedBook
	if err := json.Unmarshal(data, &entry); err != nil || entry.Book == nil {
		// 脏数据当作未命中，顺手清掉
		_ = c.cache.Del(ctx, bookKey(bookID)).Err()
		return nil, nil
	}
	if entry.Seller != nil {
		entry.Book.Seller = &model.User{
			ID:       entry.Seller.ID,
			Username: entry.Seller.Username,
			Credit:   entry.Seller.Credit,
		}
	}
	return entry.Book, nil
}

// Set 写入书籍详情；序列化失败只影响缓存，不影响主流程
func (c *BookCache) Set(ctx context.Context, book *model.Book) {
	entry := cachedBook{Book: book}
	if book.Seller != nil {
		entry.Seller = &sellerInfo{
			ID:       book.Seller.ID,
			Username: book.Seller.Username,
			Credit:   book.Seller.Credit,
		}
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return
	}
	_ = c.cache.Set(ctx, bookKey(book.ID), payload, c.ttl).Err()
}

// Invalidate 删除书籍详情缓存（售出后调用）
func (c *BookCache) Invalidate(ctx context.Context, bookID int64) {
	_ = c.cache.Del(ctx, bookKey(bookID)).Err()
}
