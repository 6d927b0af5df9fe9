package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/bookmarket/internal/config"
	"github.com/d60-Lab/bookmarket/internal/model"
	"github.com/d60-Lab/bookmarket/internal/repository"
	"github.com/d60-Lab/bookmarket/internal/service"
	"github.com/d60-Lab/bookmarket/pkg/password"
)

// 向数据库写入演示数据：两个用户 + 几本在售书
func main() {
	ctx := context.Background()

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	// 与 cmd/server 相同的驱动选择
	var db *gorm.DB
	switch cfg.Database.Driver {
	case "postgres":
		db, err = gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	default:
		db, err = gorm.Open(sqlite.Open(cfg.Database.DSN), &gorm.Config{})
	}
	if err != nil {
		log.Fatalf("连接数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.Book{}, &model.Order{}); err != nil {
		log.Fatalf("迁移表结构失败: %v", err)
	}

	var count int64
	if err := db.Model(&model.User{}).Count(&count).Error; err != nil {
		log.Fatalf("查询用户失败: %v", err)
	}
	if count > 0 {
		fmt.Printf("数据库已有 %d 个用户，跳过初始化。\n", count)
		os.Exit(0)
	}

	userService := service.NewUserService(repository.NewUserRepository(db), password.NewBcryptHasher(0))
	seller, err := userService.Register(ctx, service.RegisterParams{
		Phone:    "13800000001",
		Username: "seller_demo",
		Password: "123456",
		Identity: "seller",
		Major:    "软件工程",
		Grade:    "大三",
	})
	if err != nil {
		log.Fatalf("创建卖家失败: %v", err)
	}
	if _, err := userService.Register(ctx, service.RegisterParams{
		Phone:    "13800000002",
		Username: "buyer_demo",
		Password: "123456",
		Major:    "计算机科学",
		Grade:    "大二",
	}); err != nil {
		log.Fatalf("创建买家失败: %v", err)
	}

	bookService := service.NewBookService(repository.NewBookRepository(db), nil)
	books := []service.BookCreateParams{
		{Title: "高等数学（上册）", Author: "同济大学数学系", CourseTag: "高等数学", GradeTag: "大一", Condition: "4", Price: 15},
		{Title: "数据结构（C语言版）", Author: "严蔚敏", CourseTag: "数据结构", GradeTag: "大二", Condition: "5", Price: 20, Description: "九成新，无笔记"},
		{Title: "计算机网络（第7版）", Author: "谢希仁", CourseTag: "计算机网络", GradeTag: "大三", Condition: "3", Price: 12},
	}
	for _, params := range books {
		if _, err := bookService.Create(ctx, seller.ID, params); err != nil {
			log.Fatalf("创建书籍失败: %v", err)
		}
	}
	fmt.Println("演示数据写入完成：2 个用户，3 本在售书。")
}
