package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/bookmarket/pkg/jwtauth"
	"github.com/d60-Lab/bookmarket/pkg/response"
)

// CtxUserID 上下文中当前登录用户ID的键
const CtxUserID = "user_id"

// Auth 解析 Authorization: Bearer <token>，把用户ID写入上下文。
// 核心服务不读任何全局登录态，身份只通过参数传递。
func Auth(issuer *jwtauth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			response.Unauthorized(c, "请先登录")
			return
		}
		userID, err := issuer.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			response.Unauthorized(c, "无效的token")
			return
		}
		c.Set(CtxUserID, userID)
		c.Next()
	}
}

// CurrentUserID 读取上下文中的当前用户ID
func CurrentUserID(c *gin.Context) int64 {
	id, _ := c.Get(CtxUserID)
	userID, _ := id.(int64)
	return userID
}
