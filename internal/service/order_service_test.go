package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/bookmarket/internal/model"
	"github.com/d60-Lab/bookmarket/internal/repository"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "open db")
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Book{}, &model.Order{}), "migrate")
	return db
}

func newTestOrderService(db *gorm.DB) OrderService {
	return NewOrderService(db, repository.NewOrderRepository(db), repository.NewBookRepository(db), nil)
}

func seedUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()
	user := &model.User{
		Phone:        fmt.Sprintf("138%08d", len(username)*1000+int(username[len(username)-1])),
		Username:     username,
		PasswordHash: "x",
		Credit:       model.DefaultCredit,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedBook(t *testing.T, db *gorm.DB, sellerID int64, price float64) *model.Book {
	t.Helper()
	book := &model.Book{
		Title:     "数据结构",
		CourseTag: "数据结构",
		Condition: "4",
		Price:     price,
		SellerID:  sellerID,
		Status:    model.BookStatusOnSale,
	}
	require.NoError(t, db.Create(book).Error)
	return book
}

func sellerCredit(t *testing.T, db *gorm.DB, sellerID int64) int {
	t.Helper()
	var user model.User
	require.NoError(t, db.First(&user, sellerID).Error)
	return user.Credit
}

func TestCreateOrder(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestOrderService(db)
	ctx := context.Background()

	seller := seedUser(t, db, "seller_a")
	buyer := seedUser(t, db, "buyer_b")
	book := seedBook(t, db, seller.ID, 50)

	order, err := svc.Create(ctx, buyer.ID, book.ID)
	require.NoError(t, err)
	assert.Equal(t, buyer.ID, order.BuyerID)
	assert.Equal(t, seller.ID, order.SellerID, "卖家取自书籍发布者")
	assert.Equal(t, book.ID, order.BookID)
	assert.Equal(t, 50.0, order.Price, "成交价取下单时的书价")
	assert.Equal(t, model.OrderStatusAwaitingPayment, order.Status)
	assert.NotEmpty(t, order.OrderNo)

	var got model.Book
	require.NoError(t, db.First(&got, book.ID).Error)
	assert.Equal(t, model.BookStatusSold, got.Status, "下单后书籍应为已售")
}

func TestCreateOrderPriceDecoupledFromBookEdits(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestOrderService(db)
	ctx := context.Background()

	seller := seedUser(t, db, "seller_a")
	buyer := seedUser(t, db, "buyer_b")
	book := seedBook(t, db, seller.ID, 50)

	order, err := svc.Create(ctx, buyer.ID, book.ID)
	require.NoError(t, err)

	// 书价事后变动不影响已创建订单
	require.NoError(t, db.Model(&model.Book{}).Where("id = ?", book.ID).Update("price", 99).Error)
	got, err := svc.Get(ctx, buyer.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, got.Price)
}

func TestCreateOrderSoldBook(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestOrderService(db)
	ctx := context.Background()

	seller := seedUser(t, db, "seller_a")
	buyer := seedUser(t, db, "buyer_b")
	book := seedBook(t, db, seller.ID, 50)
	require.NoError(t, db.Model(&model.Book{}).Where("id = ?", book.ID).Update("status", model.BookStatusSold).Error)

	_, err := svc.Create(ctx, buyer.ID, book.ID)
	assert.ErrorIs(t, err, ErrBookUnavailable)

	var cnt int64
	require.NoError(t, db.Model(&model.Order{}).Count(&cnt).Error)
	assert.Zero(t, cnt, "失败时不应产生订单")
}

func TestCreateOrderMissingBook(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestOrderService(db)

	buyer := seedUser(t, db, "buyer_b")
	_, err := svc.Create(context.Background(), buyer.ID, 9999)
	assert.ErrorIs(t, err, ErrBookUnavailable)
}

// staleBookRepo 模拟读到过期快照的并发对手：GetByID 返回在售副本，
// 而库里该行已被抢先置为已售
type staleBookRepo struct {
	repository.BookRepository
}

func (r *staleBookRepo) GetByID(ctx context.Context, id int64) (*model.Book, error) {
	book, err := r.BookRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	stale := *book
	stale.Status = model.BookStatusOnSale
	return &stale, nil
}

// 事务内置售失败（0行受影响）时，已插入的订单必须一起回滚
func TestCreateOrderRollsBackWhenBookFlipLosesRace(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOrderService(db, repository.NewOrderRepository(db),
		&staleBookRepo{repository.NewBookRepository(db)}, nil)
	ctx := context.Background()

	seller := seedUser(t, db, "seller_a")
	buyer := seedUser(t, db, "buyer_b")
	book := seedBook(t, db, seller.ID, 50)
	// 另一笔交易已抢先售出
	require.NoError(t, db.Model(&model.Book{}).Where("id = ?", book.ID).
		Update("status", model.BookStatusSold).Error)

	_, err := svc.Create(ctx, buyer.ID, book.ID)
	assert.ErrorIs(t, err, ErrBookUnavailable)

	var cnt int64
	require.NoError(t, db.Model(&model.Order{}).Count(&cnt).Error)
	assert.Zero(t, cnt, "订单插入与置售要么同时生效要么同时回滚")

	var got model.Book
	require.NoError(t, db.First(&got, book.ID).Error)
	assert.Equal(t, model.BookStatusSold, got.Status)
}

func TestCreateOrderSelfTrade(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestOrderService(db)
	ctx := context.Background()

	seller := seedUser(t, db, "seller_a")
	book := seedBook(t, db, seller.ID, 50)

	_, err := svc.Create(ctx, seller.ID, book.ID)
	assert.ErrorIs(t, err, ErrSelfTrade)

	var got model.Book
	require.NoError(t, db.First(&got, book.ID).Error)
	assert.Equal(t, model.BookStatusOnSale, got.Status, "驳回后书籍仍在售")

	var cnt int64
	require.NoError(t, db.Model(&model.Order{}).Count(&cnt).Error)
	assert.Zero(t, cnt)
}

// 状态机矩阵：当前状态 × 目标状态 × 操作者
func TestUpdateStatusMatrix(t *testing.T) {
	type actor int
	const (
		asBuyer actor = iota
		asSeller
		asStranger
	)

	cases := []struct {
		name    string
		current int8
		target  int8
		who     actor
		wantErr error
	}{
		{"买家支付", model.OrderStatusAwaitingPayment, model.OrderStatusPaid, asBuyer, nil},
		{"卖家不能代付", model.OrderStatusAwaitingPayment, model.OrderStatusPaid, asSeller, ErrNoPermission},
		{"路人不能支付", model.OrderStatusAwaitingPayment, model.OrderStatusPaid, asStranger, ErrNoPermission},
		{"卖家发货", model.OrderStatusPaid, model.OrderStatusShipped, asSeller, nil},
		{"买家不能发货", model.OrderStatusPaid, model.OrderStatusShipped, asBuyer, ErrNoPermission},
		{"买家确认收货", model.OrderStatusShipped, model.OrderStatusReceived, asBuyer, nil},
		{"卖家不能代收", model.OrderStatusShipped, model.OrderStatusReceived, asSeller, ErrNoPermission},
		{"买家完成订单", model.OrderStatusReceived, model.OrderStatusCompleted, asBuyer, nil},
		{"卖家完成订单", model.OrderStatusReceived, model.OrderStatusCompleted, asSeller, nil},
		{"路人不能完成", model.OrderStatusReceived, model.OrderStatusCompleted, asStranger, ErrNoPermission},
		{"不能跳级发货", model.OrderStatusAwaitingPayment, model.OrderStatusShipped, asSeller, ErrIllegalTransition},
		{"不能跳级收货", model.OrderStatusAwaitingPayment, model.OrderStatusReceived, asBuyer, ErrIllegalTransition},
		{"不能回退支付", model.OrderStatusShipped, model.OrderStatusPaid, asBuyer, ErrIllegalTransition},
		{"终态无出边", model.OrderStatusCompleted, model.OrderStatusCompleted, asBuyer, ErrIllegalTransition},
		{"无效状态值", model.OrderStatusShipped, 9, asBuyer, ErrInvalidStatus},
		{"状态值0无效", model.OrderStatusAwaitingPayment, 0, asBuyer, ErrInvalidStatus},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := setupTestDB(t)
			svc := newTestOrderService(db)
			ctx := context.Background()

			seller := seedUser(t, db, "seller_a")
			buyer := seedUser(t, db, "buyer_b")
			stranger := seedUser(t, db, "stranger_c")
			book := seedBook(t, db, seller.ID, 50)

			order := &model.Order{
				OrderNo:  "test-no",
				BuyerID:  buyer.ID,
				SellerID: seller.ID,
				BookID:   book.ID,
				Price:    50,
				Status:   tc.current,
			}
			require.NoError(t, db.Create(order).Error)

			actorID := buyer.ID
			switch tc.who {
			case asSeller:
				actorID = seller.ID
			case asStranger:
				actorID = stranger.ID
			}

			updated, err := svc.UpdateStatus(ctx, actorID, order.ID, tc.target)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				var got model.Order
				require.NoError(t, db.First(&got, order.ID).Error)
				assert.Equal(t, tc.current, got.Status, "失败时状态不变")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.target, updated.Status)
		})
	}
}

// 权限校验先于流转合法性校验：非法边 + 错误操作者 → 报无权限
func TestUpdateStatusAuthCheckedBeforeEdge(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestOrderService(db)
	ctx := context.Background()

	seller := seedUser(t, db, "seller_a")
	buyer := seedUser(t, db, "buyer_b")
	book := seedBook(t, db, seller.ID, 50)
	order := &model.Order{
		OrderNo: "test-no", BuyerID: buyer.ID, SellerID: seller.ID,
		BookID: book.ID, Price: 50, Status: model.OrderStatusCompleted,
	}
	require.NoError(t, db.Create(order).Error)

	// 终态下支付本就非法，但卖家发起时应先报无权限
	_, err := svc.UpdateStatus(ctx, seller.ID, order.ID, model.OrderStatusPaid)
	assert.ErrorIs(t, err, ErrNoPermission)
}

func TestUpdateStatusOrderNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestOrderService(db)
	buyer := seedUser(t, db, "buyer_b")

	_, err := svc.UpdateStatus(context.Background(), buyer.ID, 9999, model.OrderStatusPaid)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

// 完整生命周期的信用分轨迹：100 → 70 → 70 → 100 → 100
func TestCreditRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestOrderService(db)
	ctx := context.Background()

	seller := seedUser(t, db, "seller_a")
	buyer := seedUser(t, db, "buyer_b")
	book := seedBook(t, db, seller.ID, 50)

	order, err := svc.Create(ctx, buyer.ID, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, sellerCredit(t, db, seller.ID), "下单本身不动信用分")

	_, err = svc.UpdateStatus(ctx, buyer.ID, order.ID, model.OrderStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, 70, sellerCredit(t, db, seller.ID), "支付后暂扣30")

	_, err = svc.UpdateStatus(ctx, seller.ID, order.ID, model.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, 70, sellerCredit(t, db, seller.ID), "发货不动信用分")

	_, err = svc.UpdateStatus(ctx, buyer.ID, order.ID, model.OrderStatusReceived)
	require.NoError(t, err)
	assert.Equal(t, 100, sellerCredit(t, db, seller.ID), "收货返还30")

	updated, err := svc.UpdateStatus(ctx, seller.ID, order.ID, model.OrderStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCompleted, updated.Status)
	assert.Equal(t, 100, sellerCredit(t, db, seller.ID), "完成不动信用分")

	// 终态后任何流转均被拒绝
	for _, target := range []int8{
		model.OrderStatusPaid, model.OrderStatusShipped,
		model.OrderStatusReceived, model.OrderStatusCompleted,
	} {
		_, err := svc.UpdateStatus(ctx, buyer.ID, order.ID, target)
		assert.ErrorIs(t, err, ErrIllegalTransition, "target=%d", target)
	}
}

// 信用分写入失败时整个事务回滚，订单状态不变
func TestUpdateStatusRollbackOnCreditFailure(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestOrderService(db)
	ctx := context.Background()

	seller := seedUser(t, db, "seller_a")
	buyer := seedUser(t, db, "buyer_b")
	book := seedBook(t, db, seller.ID, 50)

	order, err := svc.Create(ctx, buyer.ID, book.ID)
	require.NoError(t, err)

	// 卖家记录消失，信用分扣减无行可更，事务必须整体回滚
	require.NoError(t, db.Delete(&model.User{}, seller.ID).Error)

	_, err = svc.UpdateStatus(ctx, buyer.ID, order.ID, model.OrderStatusPaid)
	require.Error(t, err)

	var got model.Order
	require.NoError(t, db.First(&got, order.ID).Error)
	assert.Equal(t, model.OrderStatusAwaitingPayment, got.Status, "状态写入应随信用分一起回滚")
}

func TestGetOrderBuyerOnly(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestOrderService(db)
	ctx := context.Background()

	seller := seedUser(t, db, "seller_a")
	buyer := seedUser(t, db, "buyer_b")
	book := seedBook(t, db, seller.ID, 50)
	order, err := svc.Create(ctx, buyer.ID, book.ID)
	require.NoError(t, err)

	got, err := svc.Get(ctx, buyer.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	// 详情接口对卖家也关闭（与列表接口不对称，历史行为）
	_, err = svc.Get(ctx, seller.ID, order.ID)
	assert.ErrorIs(t, err, ErrNoPermission)

	_, err = svc.Get(ctx, buyer.ID, 9999)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestListOrdersByViewpoint(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestOrderService(db)
	ctx := context.Background()

	seller := seedUser(t, db, "seller_a")
	buyer := seedUser(t, db, "buyer_b")
	for i := 0; i < 3; i++ {
		book := seedBook(t, db, seller.ID, float64(10+i))
		_, err := svc.Create(ctx, buyer.ID, book.ID)
		require.NoError(t, err)
	}

	asBuyer, err := svc.List(ctx, buyer.ID, ViewpointBuyer)
	require.NoError(t, err)
	assert.Len(t, asBuyer, 3)
	for i := 1; i < len(asBuyer); i++ {
		assert.False(t, asBuyer[i].CreatedAt.After(asBuyer[i-1].CreatedAt), "按创建时间倒序")
	}

	asSeller, err := svc.List(ctx, seller.ID, ViewpointSeller)
	require.NoError(t, err)
	assert.Len(t, asSeller, 3)

	empty, err := svc.List(ctx, seller.ID, ViewpointBuyer)
	require.NoError(t, err)
	assert.Empty(t, empty, "卖家的买家视角为空")
}
