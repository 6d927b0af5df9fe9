package model

import "time"

// Order 订单模型
type Order struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	OrderNo   string    `json:"order_no" gorm:"type:varchar(32);uniqueIndex:ux_order_no;not null"`
	BuyerID   int64     `json:"buyer_id" gorm:"index:idx_order_buyer_created;not null"`
	SellerID  int64     `json:"seller_id" gorm:"index:idx_order_seller_created;not null"`
	BookID    int64     `json:"book_id" gorm:"index:idx_order_book;not null"`
	Price     float64   `json:"price" gorm:"type:decimal(10,2);not null"` // 下单时的成交价，与书价解耦
	Status    int8      `json:"status" gorm:"index;not null"`
	CreatedAt time.Time `json:"create_time" gorm:"index:idx_order_buyer_created;index:idx_order_seller_created"`
	UpdatedAt time.Time `json:"-"`

	Buyer  *User `json:"-" gorm:"foreignKey:BuyerID"`
	Seller *User `json:"-" gorm:"foreignKey:SellerID"`
	Book   *Book `json:"-" gorm:"foreignKey:BookID"`
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// OrderStatus 订单状态常量
// 状态流转：1 待支付 → 2 已支付 → 3 已发货 → 4 已收货 → 5 已完成
const (
	OrderStatusAwaitingPayment int8 = 1
	OrderStatusPaid            int8 = 2
	OrderStatusShipped         int8 = 3
	OrderStatusReceived        int8 = 4
	OrderStatusCompleted       int8 = 5
)

var orderStatusText = map[int8]string{
	OrderStatusAwaitingPayment: "待支付",
	OrderStatusPaid:            "已支付",
	OrderStatusShipped:         "已发货",
	OrderStatusReceived:        "已收货",
	OrderStatusCompleted:       "已完成",
}

// OrderStatusText 状态码转中文描述
func OrderStatusText(status int8) string {
	if text, ok := orderStatusText[status]; ok {
		return text
	}
	return "未知状态"
}

// StatusText 当前订单状态的中文描述
func (o *Order) StatusText() string { return OrderStatusText(o.Status) }
