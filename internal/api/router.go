package api

import (
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"

	"github.com/d60-Lab/bookmarket/internal/api/handler"
	"github.com/d60-Lab/bookmarket/internal/api/middleware"
	"github.com/d60-Lab/bookmarket/pkg/jwtauth"
)

// Options 路由装配选项
type Options struct {
	Tracing   bool   // 启用 otelgin
	Sentry    bool   // 启用 sentry 捕获（需调用方先 sentry.Init）
	StaticDir string // 上传文件的落盘目录，挂到 /static/uploads
}

// NewRouter 装配路由与中间件
func NewRouter(h *handler.Handler, issuer *jwtauth.Issuer, opts Options) *gin.Engine {
	registerValidations()

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	if opts.Tracing {
		r.Use(otelgin.Middleware("bookmarket"))
	}
	if opts.Sentry {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}

	if opts.StaticDir != "" {
		r.Static("/static/uploads", opts.StaticDir)
	}
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	auth := middleware.Auth(issuer)
	v1 := r.Group("/api/v1")
	{
		user := v1.Group("/user")
		{
			user.POST("/register", h.Register)
			// 登录接口按IP限流，防爆破
			user.POST("/login", middleware.RateLimit(rate.Limit(5), 10), h.Login)
			user.GET("/info", auth, h.GetUserInfo)
			user.PUT("/info", auth, h.UpdateUserInfo)
		}
		book := v1.Group("/book")
		{
			book.POST("/create", auth, h.CreateBook)
			book.GET("/list", h.ListBooks)
			book.GET("/:id", h.GetBook)
		}
		order := v1.Group("/order", auth)
		{
			order.POST("/create", h.CreateOrder)
			order.GET("/list", h.ListOrders)
			order.GET("/:id", h.GetOrder)
			order.POST("/:id/update", h.UpdateOrderStatus)
		}
	}
	return r
}
