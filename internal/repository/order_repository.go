package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/bookmarket/internal/model"
)

// OrderRepository 订单仓储接口
type OrderRepository interface {
	// GetByID 根据订单ID查询订单
	GetByID(ctx context.Context, id int64) (*model.Order, error)

	// ListByBuyer 买家视角的订单列表（按创建时间倒序）
	ListByBuyer(ctx context.Context, buyerID int64) ([]*model.Order, error)

	// ListBySeller 卖家视角的订单列表（按创建时间倒序）
	ListBySeller(ctx context.Context, sellerID int64) ([]*model.Order, error)
}

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepository{db: db} }

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Buyer").
		Preload("Seller").
		Preload("Book").
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) ListByBuyer(ctx context.Context, buyerID int64) ([]*model.Order, error) {
	return r.list(ctx, "buyer_id = ?", buyerID)
}

func (r *orderRepository) ListBySeller(ctx context.Context, sellerID int64) ([]*model.Order, error) {
	return r.list(ctx, "seller_id = ?", sellerID)
}

func (r *orderRepository) list(ctx context.Context, cond string, id int64) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Where(cond, id).
		Order("created_at DESC").
		Preload("Buyer").
		Preload("Seller").
		Preload("Book").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}
