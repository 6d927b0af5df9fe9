package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/bookmarket/internal/model"
)

// 检索排序键
const (
	SortByCreatedAt = "create_time"
	SortByPrice     = "price"

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// BookFilter 在售书籍检索条件（各条件之间为 AND 关系）
type BookFilter struct {
	Keyword   string   // 书名模糊匹配
	CourseTag string   // 课程标签精确匹配
	GradeTag  string   // 年级标签精确匹配
	MinPrice  *float64 // 价格下限（含）
	MaxPrice  *float64 // 价格上限（含）
	SortBy    string   // create_time / price
	Order     string   // asc / desc
	Page      int
	PageSize  int
}

// BookRepository 书籍仓储接口
type BookRepository interface {
	// Create 发布书籍
	Create(ctx context.Context, book *model.Book) error

	// GetByID 根据书籍ID查询（不限状态）
	GetByID(ctx context.Context, id int64) (*model.Book, error)

	// Search 检索在售书籍，返回当页数据与总条数
	Search(ctx context.Context, filter BookFilter) ([]*model.Book, int64, error)

	// ListBySeller 某卖家发布的书籍
	ListBySeller(ctx context.Context, sellerID int64) ([]*model.Book, error)
}

type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建书籍仓储
func NewBookRepository(db *gorm.DB) BookRepository { return &bookRepository{db: db} }

func (r *bookRepository) Create(ctx context.Context, book *model.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

func (r *bookRepository) GetByID(ctx context.Context, id int64) (*model.Book, error) {
	var book model.Book
	if err := r.db.WithContext(ctx).Preload("Seller").First(&book, id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) Search(ctx context.Context, filter BookFilter) ([]*model.Book, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Book{}).Where("status = ?", model.BookStatusOnSale)
	if filter.Keyword != "" {
		q = q.Where("title LIKE ?", "%"+filter.Keyword+"%")
	}
	if filter.CourseTag != "" {
		q = q.Where("course_tag = ?", filter.CourseTag)
	}
	if filter.GradeTag != "" {
		q = q.Where("grade_tag = ?", filter.GradeTag)
	}
	if filter.MinPrice != nil {
		q = q.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("price <= ?", *filter.MaxPrice)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column := "created_at"
	if filter.SortBy == SortByPrice {
		column = "price"
	}
	direction := "DESC"
	if filter.Order == OrderAsc {
		direction = "ASC"
	}

	var books []*model.Book
	err := q.Order(column + " " + direction).
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Preload("Seller").
		Find(&books).Error
	if err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

func (r *bookRepository) ListBySeller(ctx context.Context, sellerID int64) ([]*model.Book, error) {
	var books []*model.Book
	err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&books).Error
	return books, err
}
