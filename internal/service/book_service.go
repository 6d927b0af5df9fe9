package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/d60-Lab/bookmarket/internal/cache"
	"github.com/d60-Lab/bookmarket/internal/model"
	"github.com/d60-Lab/bookmarket/internal/repository"
)

var ErrBookNotFound = errors.New("书籍不存在或已售出")

// BookCreateParams 发布书籍参数
type BookCreateParams struct {
	Title       string
	Author      string
	CourseTag   string
	GradeTag    string
	Condition   string
	Price       float64
	Description string
	Images      string
}

// BookService 书籍服务：发布、检索、详情
type BookService interface {
	// Create 发布书籍，卖家为当前用户
	Create(ctx context.Context, sellerID int64, params BookCreateParams) (*model.Book, error)

	// Search 多条件检索在售书籍
	Search(ctx context.Context, filter repository.BookFilter) ([]*model.Book, int64, error)

	// Get 书籍详情；不存在或已售出均视为不存在
	Get(ctx context.Context, bookID int64) (*model.Book, error)

	// ListBySeller 某卖家发布的全部书籍（含已售）
	ListBySeller(ctx context.Context, sellerID int64) ([]*model.Book, error)
}

type bookService struct {
	bookRepo  repository.BookRepository
	bookCache *cache.BookCache
}

// NewBookService 创建书籍服务；bookCache 可为 nil（不启用缓存）
func NewBookService(bookRepo repository.BookRepository, bookCache *cache.BookCache) BookService {
	return &bookService{bookRepo: bookRepo, bookCache: bookCache}
}

func (s *bookService) Create(ctx context.Context, sellerID int64, params BookCreateParams) (*model.Book, error) {
	book := &model.Book{
		Title:       params.Title,
		Author:      params.Author,
		CourseTag:   params.CourseTag,
		GradeTag:    params.GradeTag,
		Condition:   params.Condition,
		Price:       params.Price,
		Description: params.Description,
		Images:      params.Images,
		SellerID:    sellerID,
		Status:      model.BookStatusOnSale,
	}
	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

func (s *bookService) Search(ctx context.Context, filter repository.BookFilter) ([]*model.Book, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 10
	}
	return s.bookRepo.Search(ctx, filter)
}

func (s *bookService) Get(ctx context.Context, bookID int64) (*model.Book, error) {
	if s.bookCache != nil {
		if cached, err := s.bookCache.Get(ctx, bookID); err == nil && cached != nil {
			if cached.Status != model.BookStatusOnSale {
				return nil, ErrBookNotFound
			}
			return cached, nil
		}
	}
	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	if book.Status != model.BookStatusOnSale {
		return nil, ErrBookNotFound
	}
	if s.bookCache != nil {
		s.bookCache.Set(ctx, book)
	}
	return book, nil
}

func (s *bookService) ListBySeller(ctx context.Context, sellerID int64) ([]*model.Book, error) {
	return s.bookRepo.ListBySeller(ctx, sellerID)
}
