package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/d60-Lab/bookmarket/pkg/response"
)

// maxLimiterClients 限流表的容量上限，写满后整表重建，
// 防止被海量伪造IP撑爆内存
const maxLimiterClients = 4096

// RateLimit 按客户端IP的令牌桶限流，用于登录等易被爆破的接口
func RateLimit(r rate.Limit, burst int) gin.HandlerFunc {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)
	return func(c *gin.Context) {
		ip := c.ClientIP()
		mu.Lock()
		lim, ok := limiters[ip]
		if !ok {
			if len(limiters) >= maxLimiterClients {
				limiters = make(map[string]*rate.Limiter)
			}
			lim = rate.NewLimiter(r, burst)
			limiters[ip] = lim
		}
		mu.Unlock()
		if !lim.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, response.Response{
				Code: http.StatusTooManyRequests,
				Msg:  "请求过于频繁，请稍后再试",
			})
			return
		}
		c.Next()
	}
}
