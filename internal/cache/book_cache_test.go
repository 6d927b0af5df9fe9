package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/bookmarket/internal/model"
)

func setupCache(t *testing.T) (*BookCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewBookCache(client, time.Minute), mr
}

func TestBookCacheRoundTrip(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	miss, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, miss, "未命中返回 nil")

	book := &model.Book{ID: 1, Title: "高等数学", CourseTag: "高等数学", Price: 15, Status: model.BookStatusOnSale}
	c.Set(ctx, book)

	got, err := c.Get(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, book.Title, got.Title)
	assert.Equal(t, book.Price, got.Price)
}

func TestBookCacheKeepsSeller(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	book := &model.Book{
		ID: 5, Title: "高等数学", Status: model.BookStatusOnSale,
		SellerID: 7,
		Seller:   &model.User{ID: 7, Username: "seller_demo", Credit: 70},
	}
	c.Set(ctx, book)

	got, err := c.Get(ctx, 5)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.Seller, "卖家信息要随缓存一起存取")
	assert.Equal(t, "seller_demo", got.Seller.Username)
	assert.Equal(t, 70, got.Seller.Credit)
}

func TestBookCacheInvalidate(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	c.Set(ctx, &model.Book{ID: 2, Title: "数据结构", Status: model.BookStatusOnSale})
	c.Invalidate(ctx, 2)

	got, err := c.Get(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, got, "失效后视为未命中")
}

func TestBookCacheExpiry(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	c.Set(ctx, &model.Book{ID: 3, Title: "计算机网络", Status: model.BookStatusOnSale})
	mr.FastForward(2 * time.Minute)

	got, err := c.Get(ctx, 3)
	require.NoError(t, err)
	assert.Nil(t, got, "过期后视为未命中")
}

func TestBookCacheCorruptPayload(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("book:detail:4", "not-json"))
	got, err := c.Get(ctx, 4)
	require.NoError(t, err)
	assert.Nil(t, got, "脏数据当作未命中")
	assert.False(t, mr.Exists("book:detail:4"), "脏数据被清除")
}
