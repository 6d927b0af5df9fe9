package model

import "time"

// User 用户（买家/卖家共用同一张表）
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Phone        string    `json:"phone" gorm:"type:varchar(11);uniqueIndex:ux_user_phone;not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(256);not null"`
	Username     string    `json:"username" gorm:"type:varchar(50);uniqueIndex:ux_user_name;not null"`
	Identity     string    `json:"identity" gorm:"type:varchar(20);default:buyer"` // buyer / seller，仅展示用
	Major        string    `json:"major" gorm:"type:varchar(50)"`
	Grade        string    `json:"grade" gorm:"type:varchar(20)"`
	Credit       int       `json:"credit" gorm:"not null;default:100"` // 信用分，无下限
	CreatedAt    time.Time `json:"create_time"`
	UpdatedAt    time.Time `json:"-"`
}

func (User) TableName() string { return "users" }

// DefaultCredit 新用户初始信用分
const DefaultCredit = 100
