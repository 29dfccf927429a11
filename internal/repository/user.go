package repository

import (
	"context"

	"github.com/NeNorvalls/Secure-Notes-App/internal/domain"
)

// UserRepository 定义用户账户的存储与查询接口
type UserRepository interface {
	// FindByUsername 根据用户名查找用户
	// 用户不存在时返回 ErrUserNotFound
	FindByUsername(ctx context.Context, username string) (*domain.User, error)

	// FindByID 根据 ID 查找用户
	// 用户不存在时返回 ErrUserNotFound
	FindByID(ctx context.Context, id uint) (*domain.User, error)

	// Save 插入新用户，并回填生成的 ID 和时间戳
	// 用户名已存在时返回 ErrDuplicateEntry
	Save(ctx context.Context, user *domain.User) error
}
