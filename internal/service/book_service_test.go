package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/bookmarket/internal/cache"
	"github.com/d60-Lab/bookmarket/internal/model"
	"github.com/d60-Lab/bookmarket/internal/repository"
)

func newTestBookService(db *gorm.DB) BookService {
	return NewBookService(repository.NewBookRepository(db), nil)
}

func seedCatalog(t *testing.T, db *gorm.DB, svc BookService, sellerID int64) {
	t.Helper()
	ctx := context.Background()
	books := []BookCreateParams{
		{Title: "高等数学（上册）", CourseTag: "高等数学", GradeTag: "大一", Condition: "4", Price: 15},
		{Title: "高等数学（下册）", CourseTag: "高等数学", GradeTag: "大一", Condition: "3", Price: 18},
		{Title: "数据结构（C语言版）", CourseTag: "数据结构", GradeTag: "大二", Condition: "5", Price: 25},
		{Title: "计算机网络（第7版）", CourseTag: "计算机网络", GradeTag: "大三", Condition: "4", Price: 40},
	}
	for _, params := range books {
		_, err := svc.Create(ctx, sellerID, params)
		require.NoError(t, err)
	}
}

func TestSearchFilters(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestBookService(db)
	ctx := context.Background()

	seller := seedUser(t, db, "seller_a")
	seedCatalog(t, db, svc, seller.ID)

	books, total, err := svc.Search(ctx, repository.BookFilter{CourseTag: "高等数学"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, books, 2)

	books, total, err = svc.Search(ctx, repository.BookFilter{Keyword: "数学"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	books, total, err = svc.Search(ctx, repository.BookFilter{GradeTag: "大二"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "数据结构（C语言版）", books[0].Title)

	minP, maxP := 16.0, 30.0
	books, total, err = svc.Search(ctx, repository.BookFilter{MinPrice: &minP, MaxPrice: &maxP})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	// 条件之间为 AND
	books, total, err = svc.Search(ctx, repository.BookFilter{CourseTag: "高等数学", MinPrice: &minP})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "高等数学（下册）", books[0].Title)

	_, total, err = svc.Search(ctx, repository.BookFilter{CourseTag: "不存在的课程"})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestSearchExcludesSold(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestBookService(db)
	ctx := context.Background()

	seller := seedUser(t, db, "seller_a")
	seedCatalog(t, db, svc, seller.ID)
	require.NoError(t, db.Model(&model.Book{}).
		Where("title = ?", "数据结构（C语言版）").
		Update("status", model.BookStatusSold).Error)

	filters := []repository.BookFilter{
		{},
		{CourseTag: "数据结构"},
		{Keyword: "数据"},
		{GradeTag: "大二"},
	}
	for _, f := range filters {
		books, _, err := svc.Search(ctx, f)
		require.NoError(t, err)
		for _, b := range books {
			assert.Equal(t, model.BookStatusOnSale, b.Status, "检索结果不应包含已售书籍")
		}
	}
}

func TestSearchSortAndPagination(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestBookService(db)
	ctx := context.Background()

	seller := seedUser(t, db, "seller_a")
	seedCatalog(t, db, svc, seller.ID)

	books, _, err := svc.Search(ctx, repository.BookFilter{SortBy: repository.SortByPrice, Order: repository.OrderAsc})
	require.NoError(t, err)
	for i := 1; i < len(books); i++ {
		assert.LessOrEqual(t, books[i-1].Price, books[i].Price)
	}

	books, _, err = svc.Search(ctx, repository.BookFilter{SortBy: repository.SortByPrice, Order: repository.OrderDesc})
	require.NoError(t, err)
	for i := 1; i < len(books); i++ {
		assert.GreaterOrEqual(t, books[i-1].Price, books[i].Price)
	}

	page1, total, err := svc.Search(ctx, repository.BookFilter{Page: 1, PageSize: 3})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total, "total 为全量条数")
	assert.Len(t, page1, 3)

	page2, _, err := svc.Search(ctx, repository.BookFilter{Page: 2, PageSize: 3})
	require.NoError(t, err)
	assert.Len(t, page2, 1)

	// 非法分页参数回落到默认值
	all, _, err := svc.Search(ctx, repository.BookFilter{Page: 0, PageSize: -1})
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestGetBook(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestBookService(db)
	ctx := context.Background()

	seller := seedUser(t, db, "seller_a")
	book, err := svc.Create(ctx, seller.ID, BookCreateParams{
		Title: "高等数学（上册)", CourseTag: "高等数学", Condition: "4", Price: 15,
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, book.Title, got.Title)
	require.NotNil(t, got.Seller, "详情带卖家信息")
	assert.Equal(t, seller.Username, got.Seller.Username)

	_, err = svc.Get(ctx, 9999)
	assert.ErrorIs(t, err, ErrBookNotFound)

	// 已售出视为不存在
	require.NoError(t, db.Model(&model.Book{}).Where("id = ?", book.ID).
		Update("status", model.BookStatusSold).Error)
	_, err = svc.Get(ctx, book.ID)
	assert.ErrorIs(t, err, ErrBookNotFound)
}

// 启用缓存后，冷读与热读返回同样的详情（含卖家信息）
func TestGetBookWarmReadKeepsSeller(t *testing.T) {
	db := setupTestDB(t)
	mr := miniredis.RunT(t)
	bookCache := cache.NewBookCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	svc := NewBookService(repository.NewBookRepository(db), bookCache)
	ctx := context.Background()

	seller := seedUser(t, db, "seller_a")
	book, err := svc.Create(ctx, seller.ID, BookCreateParams{
		Title: "高等数学（上册）", CourseTag: "高等数学", Condition: "4", Price: 15,
	})
	require.NoError(t, err)

	cold, err := svc.Get(ctx, book.ID)
	require.NoError(t, err)
	require.NotNil(t, cold.Seller, "冷读带卖家信息")

	warm, err := svc.Get(ctx, book.ID)
	require.NoError(t, err)
	require.NotNil(t, warm.Seller, "缓存命中时卖家信息不能丢")
	assert.Equal(t, cold.Seller.Username, warm.Seller.Username)
	assert.Equal(t, cold.Seller.Credit, warm.Seller.Credit)
	assert.Equal(t, cold.Title, warm.Title)
}
