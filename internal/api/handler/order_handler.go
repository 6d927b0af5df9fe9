package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/bookmarket/internal/api/middleware"
	"github.com/d60-Lab/bookmarket/internal/service"
	"github.com/d60-Lab/bookmarket/pkg/response"
)

type createOrderRequest struct {
	BookID int64 `json:"book_id" binding:"required"`
}

// Status 用指针区分“未传”和“传了 0”：缺参报 400，
// 传了非法值交给服务层按无效状态值处理
type updateOrderRequest struct {
	Status *int8 `json:"status" binding:"required"`
}

// CreateOrder 买家下单
// @Summary 创建订单
// @Tags 订单
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createOrderRequest true "下单信息"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/order/create [post]
func (h *Handler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "缺少必要参数：book_id")
		return
	}
	order, err := h.orderService.Create(c.Request.Context(), middleware.CurrentUserID(c), req.BookID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBookUnavailable):
			response.NotFound(c, err.Error())
		case errors.Is(err, service.ErrSelfTrade):
			response.BadRequest(c, "想买自己的书？驳回！")
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.SuccessMsg(c, "订单创建成功", orderDTO(order))
}

// ListOrders 查询本人订单列表（买家/卖家视角）
// @Summary 订单列表
// @Tags 订单
// @Produce json
// @Security BearerAuth
// @Param role query string false "buyer / seller" default(buyer)
// @Success 200 {object} response.Response
// @Router /api/v1/order/list [get]
func (h *Handler) ListOrders(c *gin.Context) {
	viewpoint := service.Viewpoint(c.DefaultQuery("role", string(service.ViewpointBuyer)))
	orders, err := h.orderService.List(c.Request.Context(), middleware.CurrentUserID(c), viewpoint)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	items := make([]map[string]any, len(orders))
	for i, o := range orders {
		items[i] = orderDTO(o)
	}
	response.Success(c, gin.H{"orders": items, "total": len(items)})
}

// GetOrder 订单详情。历史行为：详情仅买家可见，卖家走列表接口。
// @Summary 订单详情
// @Tags 订单
// @Produce json
// @Security BearerAuth
// @Param id path int true "订单ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/order/{id} [get]
func (h *Handler) GetOrder(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "无效的订单ID")
		return
	}
	order, err := h.orderService.Get(c.Request.Context(), middleware.CurrentUserID(c), orderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, service.ErrNoPermission):
			response.Forbidden(c, "无权访问该订单详情")
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Success(c, orderDTO(order))
}

// UpdateOrderStatus 推进订单状态（支付/发货/收货/完成）
// @Summary 更新订单状态
// @Tags 订单
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "订单ID"
// @Param request body updateOrderRequest true "目标状态"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/order/{id}/update [post]
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "无效的订单ID")
		return
	}
	var req updateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "缺少必要参数：status")
		return
	}
	order, err := h.orderService.UpdateStatus(c.Request.Context(), middleware.CurrentUserID(c), orderID, *req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, service.ErrNoPermission):
			response.Forbidden(c, err.Error())
		case errors.Is(err, service.ErrInvalidStatus), errors.Is(err, service.ErrIllegalTransition):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.SuccessMsg(c, "订单状态更新成功", orderDTO(order))
}
