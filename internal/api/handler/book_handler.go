package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/bookmarket/internal/api/middleware"
	"github.com/d60-Lab/bookmarket/internal/repository"
	"github.com/d60-Lab/bookmarket/internal/service"
	"github.com/d60-Lab/bookmarket/pkg/response"
	"github.com/d60-Lab/bookmarket/pkg/upload"
)

type createBookForm struct {
	Title       string  `form:"title" binding:"required,max=100"`
	Author      string  `form:"author" binding:"max=100"`
	CourseTag   string  `form:"course_tag" binding:"required,max=50"`
	GradeTag    string  `form:"grade_tag" binding:"max=20"`
	Condition   string  `form:"condition" binding:"required,max=50"`
	Price       float64 `form:"price" binding:"required,gte=0"`
	Description string  `form:"description"`
}

// CreateBook 发布书籍（multipart 表单，可带一张图片）
// @Summary 发布书籍
// @Tags 书籍
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param title formData string true "书名"
// @Param course_tag formData string true "课程标签"
// @Param condition formData string true "新旧程度"
// @Param price formData number true "价格"
// @Param author formData string false "作者"
// @Param grade_tag formData string false "年级标签"
// @Param description formData string false "描述"
// @Param image formData file false "图片"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/book/create [post]
func (h *Handler) CreateBook(c *gin.Context) {
	var form createBookForm
	if err := c.ShouldBind(&form); err != nil {
		response.BadRequest(c, "缺少必要的文本参数(title, course_tag, condition, price)")
		return
	}

	imageURL := ""
	if file, err := c.FormFile("image"); err == nil && file != nil {
		url, err := h.storage.Store(file, c.SaveUploadedFile)
		if err != nil {
			if errors.Is(err, upload.ErrUnsupportedType) {
				response.BadRequest(c, err.Error())
				return
			}
			response.InternalError(c, err)
			return
		}
		imageURL = url
	}

	book, err := h.bookService.Create(c.Request.Context(), middleware.CurrentUserID(c), service.BookCreateParams{
		Title:       form.Title,
		Author:      form.Author,
		CourseTag:   form.CourseTag,
		GradeTag:    form.GradeTag,
		Condition:   form.Condition,
		Price:       form.Price,
		Description: form.Description,
		Images:      imageURL,
	})
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.SuccessMsg(c, "书籍发布成功", bookDTO(book))
}

// ListBooks 多条件检索在售书籍
// @Summary 检索在售书籍
// @Tags 书籍
// @Produce json
// @Param search query string false "书名模糊匹配"
// @Param course_tag query string false "课程标签"
// @Param grade_tag query string false "年级标签"
// @Param min_price query number false "最低价"
// @Param max_price query number false "最高价"
// @Param sort_by query string false "排序键：create_time / price" default(create_time)
// @Param order query string false "asc / desc" default(desc)
// @Param page query int false "页码" default(1)
// @Param per_page query int false "每页数量" default(10)
// @Success 200 {object} response.Response
// @Router /api/v1/book/list [get]
func (h *Handler) ListBooks(c *gin.Context) {
	filter := repository.BookFilter{
		Keyword:   c.Query("search"),
		CourseTag: c.Query("course_tag"),
		GradeTag:  c.Query("grade_tag"),
		SortBy:    c.DefaultQuery("sort_by", repository.SortByCreatedAt),
		Order:     c.DefaultQuery("order", repository.OrderDesc),
	}
	if raw := c.Query("min_price"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			filter.MinPrice = &v
		}
	}
	if raw := c.Query("max_price"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			filter.MaxPrice = &v
		}
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("per_page", "10"))
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 10
	}

	books, total, err := h.bookService.Search(c.Request.Context(), filter)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	items := make([]map[string]any, len(books))
	for i, b := range books {
		items[i] = bookDTO(b)
	}
	pages := (total + int64(filter.PageSize) - 1) / int64(filter.PageSize)
	response.Success(c, gin.H{
		"books":    items,
		"total":    total,
		"page":     filter.Page,
		"per_page": filter.PageSize,
		"pages":    pages,
	})
}

// GetBook 书籍详情（已售出视为不存在）
// @Summary 书籍详情
// @Tags 书籍
// @Produce json
// @Param id path int true "书籍ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/book/{id} [get]
func (h *Handler) GetBook(c *gin.Context) {
	bookID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "无效的书籍ID")
		return
	}
	book, err := h.bookService.Get(c.Request.Context(), bookID)
	if err != nil {
		if errors.Is(err, service.ErrBookNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, bookDTO(book))
}
