package main

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/bookmarket/internal/api"
	"github.com/d60-Lab/bookmarket/internal/api/handler"
	"github.com/d60-Lab/bookmarket/internal/cache"
	"github.com/d60-Lab/bookmarket/internal/config"
	"github.com/d60-Lab/bookmarket/internal/model"
	"github.com/d60-Lab/bookmarket/internal/repository"
	"github.com/d60-Lab/bookmarket/internal/service"
	"github.com/d60-Lab/bookmarket/pkg/jwtauth"
	"github.com/d60-Lab/bookmarket/pkg/logger"
	"github.com/d60-Lab/bookmarket/pkg/password"
	"github.com/d60-Lab/bookmarket/pkg/response"
	"github.com/d60-Lab/bookmarket/pkg/tracing"
	"github.com/d60-Lab/bookmarket/pkg/upload"

	_ "github.com/d60-Lab/bookmarket/docs"
)

// @title 二手书交易平台 API
// @version 1.0
// @description 校园二手教材交易平台后端
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Development); err != nil {
		panic(err)
	}
	defer logger.Sync()

	gin.SetMode(cfg.Server.Mode)

	db := mustOpenDB(cfg.Database)
	if err := db.AutoMigrate(&model.User{}, &model.Book{}, &model.Order{}); err != nil {
		logger.Fatal("迁移表结构失败", zap.Error(err))
	}

	var bookCache *cache.BookCache
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			logger.Warn("redis 不可用，缓存关闭", zap.Error(err))
		} else {
			bookCache = cache.NewBookCache(client, cfg.Redis.TTL)
		}
	}

	storage, err := upload.NewLocalStorage(cfg.Upload.Dir, cfg.Upload.URLBase)
	if err != nil {
		logger.Fatal("初始化上传目录失败", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db)
	bookRepo := repository.NewBookRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	hasher := password.NewBcryptHasher(0)
	userService := service.NewUserService(userRepo, hasher)
	bookService := service.NewBookService(bookRepo, bookCache)
	orderService := service.NewOrderService(db, orderRepo, bookRepo, bookCache)

	issuer := jwtauth.NewIssuer(cfg.JWT.Secret, cfg.JWT.Expire)
	h := handler.NewHandler(userService, bookService, orderService, issuer, storage)

	tracingEnabled := false
	if cfg.Trace.Endpoint != "" {
		shutdown, err := tracing.Init(context.Background(), "bookmarket", cfg.Trace.Endpoint)
		if err != nil {
			logger.Warn("链路追踪初始化失败", zap.Error(err))
		} else {
			tracingEnabled = true
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = shutdown(ctx)
			}()
		}
	}

	sentryEnabled := false
	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN}); err != nil {
			logger.Warn("sentry 初始化失败", zap.Error(err))
		} else {
			sentryEnabled = true
			defer sentry.Flush(2 * time.Second)
		}
	}

	r := api.NewRouter(h, issuer, api.Options{
		Tracing:   tracingEnabled,
		Sentry:    sentryEnabled,
		StaticDir: storage.Dir(),
	})

	r.GET("/", func(c *gin.Context) {
		response.SuccessMsg(c, "二手书交易平台后端正式启动", nil)
	})

	logger.Info("服务启动", zap.String("addr", cfg.Server.Addr))
	if err := r.Run(cfg.Server.Addr); err != nil {
		logger.Fatal("服务退出", zap.Error(err))
	}
}

func mustOpenDB(cfg config.DatabaseConfig) *gorm.DB {
	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case "postgres":
		db, err = gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{})
	default:
		db, err = gorm.Open(sqlite.Open(cfg.DSN), &gorm.Config{})
	}
	if err != nil {
		logger.Fatal("连接数据库失败", zap.String("driver", cfg.Driver), zap.Error(err))
	}
	return db
}
