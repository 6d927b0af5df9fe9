package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/bookmarket/internal/cache"
	"github.com/d60-Lab/bookmarket/internal/model"
	"github.com/d60-Lab/bookmarket/internal/repository"
)

var (
	ErrBookUnavailable   = errors.New("书籍不存在或已售出")
	ErrSelfTrade         = errors.New("不能购买自己发布的书籍")
	ErrOrderNotFound     = errors.New("订单不存在")
	ErrNoPermission      = errors.New("无权限操作此订单")
	ErrInvalidStatus     = errors.New("无效的状态值")
	ErrIllegalTransition = errors.New("不支持的状态流转")
)

// Viewpoint 查询订单列表的视角
type Viewpoint string

const (
	ViewpointBuyer  Viewpoint = "buyer"
	ViewpointSeller Viewpoint = "seller"
)

// creditPenalty 托管式信用分：支付后暂扣卖家 30 分，买家确认收货后返还
const creditPenalty = 30

// validTransitions 合法的状态流转边。终态（已完成）没有出边。
var validTransitions = map[int8][]int8{
	model.OrderStatusAwaitingPayment: {model.OrderStatusPaid},
	model.OrderStatusPaid:            {model.OrderStatusShipped},
	model.OrderStatusShipped:         {model.OrderStatusReceived},
	model.OrderStatusReceived:        {model.OrderStatusCompleted},
	model.OrderStatusCompleted:       {},
}

// OrderService 订单服务：创建、状态机流转、信用分联动
type OrderService interface {
	// Create 买家对在售书籍下单；订单落库与书籍置为已售在同一事务内完成
	Create(ctx context.Context, buyerID, bookID int64) (*model.Order, error)

	// UpdateStatus 推进订单状态；支付/收货时联动调整卖家信用分
	UpdateStatus(ctx context.Context, actorID, orderID int64, newStatus int8) (*model.Order, error)

	// Get 查询订单详情（仅买家可见）
	Get(ctx context.Context, actorID, orderID int64) (*model.Order, error)

	// List 按视角查询本人订单，按创建时间倒序
	List(ctx context.Context, actorID int64, viewpoint Viewpoint) ([]*model.Order, error)
}

type orderService struct {
	db        *gorm.DB
	orderRepo repository.OrderRepository
	bookRepo  repository.BookRepository
	bookCache *cache.BookCache
}

// NewOrderService 创建订单服务；bookCache 可为 nil（不启用缓存）
func NewOrderService(db *gorm.DB, orderRepo repository.OrderRepository, bookRepo repository.BookRepository, bookCache *cache.BookCache) OrderService {
	return &orderService{db: db, orderRepo: orderRepo, bookRepo: bookRepo, bookCache: bookCache}
}

// newOrderNo 订单号 = 秒级时间戳 + 买家ID + 4位随机数。
// 不做冲突重试，唯一性由 order_no 的唯一索引兜底。
func newOrderNo(buyerID int64) string {
	return fmt.Sprintf("%d%d%04d", time.Now().Unix(), buyerID, 1000+rand.Intn(9000))
}

func (s *orderService) Create(ctx context.Context, buyerID, bookID int64) (*model.Order, error) {
	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookUnavailable
		}
		return nil, err
	}
	if book.Status != model.BookStatusOnSale {
		return nil, ErrBookUnavailable
	}
	if book.SellerID == buyerID {
		return nil, ErrSelfTrade
	}

	order := &model.Order{
		OrderNo:  newOrderNo(buyerID),
		BuyerID:  buyerID,
		SellerID: book.SellerID, // 卖家取自书籍发布者
		BookID:   book.ID,
		Price:    book.Price, // 成交价取下单时的书价
		Status:   model.OrderStatusAwaitingPayment,
	}

	// 订单创建与书籍置为已售必须同时生效
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		res := tx.Model(&model.Book{}).
			Where("id = ? AND status = ?", book.ID, model.BookStatusOnSale).
			Update("status", model.BookStatusSold)
		if res.Error != nil {
			return res.Error
		}
		// 并发下单时另一事务已抢先售出
		if res.RowsAffected == 0 {
			return ErrBookUnavailable
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.bookCache != nil {
		s.bookCache.Invalidate(ctx, book.ID)
	}
	// 回查带出买卖双方与书籍信息，供接口返回
	created, err := s.orderRepo.GetByID(ctx, order.ID)
	if err != nil {
		return order, nil
	}
	return created, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, actorID, orderID int64, newStatus int8) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	// 权限按目标状态校验，且先于流转合法性校验
	switch newStatus {
	case model.OrderStatusPaid, model.OrderStatusReceived:
		// 支付、确认收货：仅买家
		if order.BuyerID != actorID {
			return nil, ErrNoPermission
		}
	case model.OrderStatusShipped:
		// 发货：仅卖家
		if order.SellerID != actorID {
			return nil, ErrNoPermission
		}
	case model.OrderStatusCompleted:
		// 完成：买卖双方均可
		if order.BuyerID != actorID && order.SellerID != actorID {
			return nil, ErrNoPermission
		}
	default:
		return nil, ErrInvalidStatus
	}

	// 防止跳级或回退
	allowed := false
	for _, next := range validTransitions[order.Status] {
		if next == newStatus {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w：%s → %s", ErrIllegalTransition,
			model.OrderStatusText(order.Status), model.OrderStatusText(newStatus))
	}

	// 状态写入与信用分变动同一事务提交
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Order{}).
			Where("id = ? AND status = ?", order.ID, order.Status).
			Update("status", newStatus)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrIllegalTransition
		}

		var delta int
		switch newStatus {
		case model.OrderStatusPaid:
			delta = -creditPenalty
		case model.OrderStatusReceived:
			delta = creditPenalty
		}
		if delta != 0 {
			res := tx.Model(&model.User{}).
				Where("id = ?", order.SellerID).
				UpdateColumn("credit", gorm.Expr("credit + ?", delta))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("卖家 %d 不存在，信用分变动失败", order.SellerID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order.Status = newStatus
	return order, nil
}

func (s *orderService) Get(ctx context.Context, actorID, orderID int64) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	// 详情仅买家可见（列表接口对买卖双方对称）
	if order.BuyerID != actorID {
		return nil, ErrNoPermission
	}
	return order, nil
}

func (s *orderService) List(ctx context.Context, actorID int64, viewpoint Viewpoint) ([]*model.Order, error) {
	if viewpoint == ViewpointSeller {
		return s.orderRepo.ListBySeller(ctx, actorID)
	}
	return s.orderRepo.ListByBuyer(ctx, actorID)
}
