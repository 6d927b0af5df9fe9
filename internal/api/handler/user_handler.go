package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/bookmarket/internal/api/middleware"
	"github.com/d60-Lab/bookmarket/internal/service"
	"github.com/d60-Lab/bookmarket/pkg/response"
)

type registerRequest struct {
	Phone    string `json:"phone" binding:"required,phone"`
	Username string `json:"username" binding:"required,max=50"`
	Password string `json:"password" binding:"required,min=6"`
	Identity string `json:"identity" binding:"omitempty,oneof=buyer seller"`
	Major    string `json:"major"`
	Grade    string `json:"grade"`
}

type loginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateInfoRequest struct {
	Username *string `json:"username" binding:"omitempty,max=50"`
	Major    *string `json:"major"`
	Grade    *string `json:"grade"`
}

// Register 用户注册
// @Summary 用户注册
// @Tags 用户
// @Accept json
// @Produce json
// @Param request body registerRequest true "注册信息"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/user/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "缺少必填的参数，请检查（手机号/密码/用户名）")
		return
	}
	user, err := h.userService.Register(c.Request.Context(), service.RegisterParams{
		Phone:    req.Phone,
		Username: req.Username,
		Password: req.Password,
		Identity: req.Identity,
		Major:    req.Major,
		Grade:    req.Grade,
	})
	if err != nil {
		if errors.Is(err, service.ErrPhoneTaken) || errors.Is(err, service.ErrNameTaken) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.SuccessMsg(c, "注册成功", gin.H{
		"id":       user.ID,
		"phone":    user.Phone,
		"username": user.Username,
		"credit":   user.Credit,
	})
}

// Login 用户登录，成功返回 token
// @Summary 用户登录
// @Tags 用户
// @Accept json
// @Produce json
// @Param request body loginRequest true "登录信息"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/user/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "缺少手机号或密码")
		return
	}
	user, err := h.userService.Authenticate(c.Request.Context(), req.Phone, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	token, err := h.issuer.Issue(user.ID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.SuccessMsg(c, "登录成功", gin.H{
		"token": token,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"phone":    user.Phone,
		},
	})
}

// GetUserInfo 获取当前用户信息
// @Summary 获取当前用户信息
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/v1/user/info [get]
func (h *Handler) GetUserInfo(c *gin.Context) {
	user, err := h.userService.Get(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.Unauthorized(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, userDTO(user))
}

// UpdateUserInfo 更新当前用户信息
// @Summary 更新当前用户信息
// @Tags 用户
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body updateInfoRequest true "资料"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/user/info [put]
func (h *Handler) UpdateUserInfo(c *gin.Context) {
	var req updateInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "缺少数据")
		return
	}
	user, err := h.userService.UpdateProfile(c.Request.Context(), middleware.CurrentUserID(c), service.ProfileUpdateParams{
		Username: req.Username,
		Major:    req.Major,
		Grade:    req.Grade,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNameTaken):
			response.BadRequest(c, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			response.Unauthorized(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.SuccessMsg(c, "用户信息更新成功", userDTO(user))
}
