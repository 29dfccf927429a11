package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/NeNorvalls/Secure-Notes-App/internal/domain"
	"github.com/NeNorvalls/Secure-Notes-App/internal/repository"
)

// dummyHash 在用户名不存在时参与比较，使未知用户和错误密码耗时一致
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)

// AuthService 处理注册、登录和会话用户查询
type AuthService struct {
	userRepo   repository.UserRepository
	bcryptCost int
}

// NewAuthService 创建 AuthService 实例，bcryptCost <= 0 时使用 bcrypt.DefaultCost
func NewAuthService(userRepo repository.UserRepository, bcryptCost int) *AuthService {
	if userRepo == nil {
		panic("UserRepository cannot be nil for AuthService")
	}
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{userRepo: userRepo, bcryptCost: bcryptCost}
}

// Register 创建新账户，用户名已存在时返回 ErrUsernameTaken
//
// 存在性检查和插入不是原子操作：同名的两个并发注册都能通过检查，
// 随后唯一索引拒绝第二次插入，同样报告为 ErrUsernameTaken
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	logCtx := logrus.WithField("username", username)

	// 1. 基本验证，详细的长度限制由表单层负责
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, ErrInvalidInput
	}

	// 2. 预检查用户名
	existing, err := s.userRepo.FindByUsername(ctx, username)
	switch {
	case err == nil && existing != nil:
		logCtx.Warn("Registration rejected: username already taken")
		return nil, ErrUsernameTaken
	case err != nil && !errors.Is(err, repository.ErrUserNotFound):
		logCtx.WithError(err).Error("Failed to check username availability")
		return nil, ErrInternalServer
	}

	// 3. 哈希密码
	hashed, err := s.hashPassword(password)
	if err != nil {
		logCtx.WithError(err).Error("Failed to hash password during registration")
		return nil, ErrInternalServer
	}

	// 4. 保存用户
	user := &domain.User{Username: username, PasswordHash: hashed}
	if err := s.userRepo.Save(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			logCtx.WithError(err).Warn("Registration rejected: username taken by a concurrent registration")
			return nil, ErrUsernameTaken
		}
		logCtx.WithError(err).Error("Database error during user creation")
		return nil, ErrInternalServer
	}

	logCtx.WithField("user_id", user.ID).Info("User registered successfully")
	user.PasswordHash = ""
	return user, nil
}

// Login 校验凭据并返回用户
// 未知用户名和错误密码都返回 ErrAuthenticationFailed
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	logCtx := logrus.WithField("username", username)

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			logCtx.WithError(err).Error("Login failed: error finding user")
			return nil, ErrInternalServer
		}
		logCtx.Warn("Login attempt failed: user not found")
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, ErrAuthenticationFailed
	}
	if user == nil {
		logCtx.Warn("Login attempt failed: repository returned nil user")
		return nil, ErrAuthenticationFailed
	}

	if !checkPassword(password, user.PasswordHash) {
		logCtx.Warn("Login attempt failed: invalid password")
		return nil, ErrAuthenticationFailed
	}

	logCtx.WithField("user_id", user.ID).Info("User logged in successfully")
	user.PasswordHash = ""
	return user, nil
}

// CurrentUser 根据会话中的用户 ID 查找用户
func (s *AuthService) CurrentUser(ctx context.Context, userID uint) (*domain.User, error) {
	if userID == 0 {
		return nil, ErrUserNotFound
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to load session user")
		return nil, ErrInternalServer
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *AuthService) hashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to generate hash from password: %w", err)
	}
	return string(b), nil
}

func checkPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
