package handler

import (
	"github.com/d60-Lab/bookmarket/internal/model"
	"github.com/d60-Lab/bookmarket/internal/service"
	"github.com/d60-Lab/bookmarket/pkg/jwtauth"
	"github.com/d60-Lab/bookmarket/pkg/upload"
)

// Handler 聚合全部 HTTP 处理器的依赖
type Handler struct {
	userService  service.UserService
	bookService  service.BookService
	orderService service.OrderService
	issuer       *jwtauth.Issuer
	storage      *upload.LocalStorage
}

// NewHandler 创建 Handler
func NewHandler(
	userService service.UserService,
	bookService service.BookService,
	orderService service.OrderService,
	issuer *jwtauth.Issuer,
	storage *upload.LocalStorage,
) *Handler {
	return &Handler{
		userService:  userService,
		bookService:  bookService,
		orderService: orderService,
		issuer:       issuer,
		storage:      storage,
	}
}

func userDTO(u *model.User) map[string]any {
	return map[string]any{
		"id":          u.ID,
		"phone":       u.Phone,
		"username":    u.Username,
		"identity":    u.Identity,
		"major":       u.Major,
		"grade":       u.Grade,
		"credit":      u.Credit,
		"create_time": u.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func bookDTO(b *model.Book) map[string]any {
	out := map[string]any{
		"id":          b.ID,
		"title":       b.Title,
		"author":      b.Author,
		"course_tag":  b.CourseTag,
		"grade_tag":   b.GradeTag,
		"condition":   b.Condition,
		"price":       b.Price,
		"description": b.Description,
		"images":      b.Images,
		"seller_id":   b.SellerID,
		"status":      b.Status,
		"status_text": b.StatusText(),
		"create_time": b.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if b.Seller != nil {
		out["seller_name"] = b.Seller.Username
		out["seller_credit"] = b.Seller.Credit
	}
	return out
}

func orderDTO(o *model.Order) map[string]any {
	out := map[string]any{
		"id":          o.ID,
		"order_no":    o.OrderNo,
		"buyer_id":    o.BuyerID,
		"seller_id":   o.SellerID,
		"book_id":     o.BookID,
		"price":       o.Price,
		"status":      o.Status,
		"status_text": o.StatusText(),
		"create_time": o.CreatedAt.Format("2006-01-02 15:04"),
	}
	if o.Buyer != nil {
		out["buyer_name"] = o.Buyer.Username
	}
	if o.Seller != nil {
		out["seller_name"] = o.Seller.Username
	}
	if o.Book != nil {
		out["book_title"] = o.Book.Title
	}
	return out
}
