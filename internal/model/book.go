package model

import "time"

// Book 书籍（在售即为“商品”）
type Book struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"type:varchar(100);index:idx_book_title;not null"`
	Author      string    `json:"author" gorm:"type:varchar(100)"`
	CourseTag   string    `json:"course_tag" gorm:"type:varchar(50);index:idx_book_course;not null"`
	GradeTag    string    `json:"grade_tag" gorm:"type:varchar(20)"` // 大一/大二/...
	Condition   string    `json:"condition" gorm:"type:varchar(50);not null"` // 新旧程度 1-5
	Price       float64   `json:"price" gorm:"type:decimal(10,2);not null"`
	Description string    `json:"description" gorm:"type:text"`
	Images      string    `json:"images" gorm:"type:varchar(500)"` // 多图 URL 逗号分隔
	SellerID    int64     `json:"seller_id" gorm:"index:idx_book_seller;not null"`
	Status      int8      `json:"status" gorm:"index:idx_book_status;not null;default:1"`
	CreatedAt   time.Time `json:"create_time" gorm:"index:idx_book_created"`
	UpdatedAt   time.Time `json:"-"`

	Seller *User `json:"-" gorm:"foreignKey:SellerID"`
}

func (Book) TableName() string { return "books" }

// 书籍在售状态
const (
	BookStatusSold   int8 = 0 // 已售出
	BookStatusOnSale int8 = 1 // 在售
)

// StatusText 状态中文描述
func (b *Book) StatusText() string {
	if b.Status == BookStatusOnSale {
		return "在售"
	}
	return "已售"
}
