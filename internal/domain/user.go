// Package domain 定义应用持久化的数据模型
package domain

import "time"

// User 注册用户账户，注册时创建，之后不会更新或删除
type User struct {
	ID           uint      `gorm:"primaryKey"`
	Username     string    `gorm:"type:varchar(150);uniqueIndex:idx_users_username;not null"`
	PasswordHash string    `gorm:"type:varchar(200);not null"` // bcrypt 哈希，绝不保存明文密码
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}
