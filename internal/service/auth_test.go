package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/NeNorvalls/Secure-Notes-App/internal/domain"
	"github.com/NeNorvalls/Secure-Notes-App/internal/repository"
	"github.com/NeNorvalls/Secure-Notes-App/internal/repository/mocks"
	"github.com/NeNorvalls/Secure-Notes-App/internal/service"
)

func hashFor(t *testing.T, password string) string {
	t.Helper()
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(b)
}

// --- Register 测试 ---

func TestAuthService_Register_Success(t *testing.T) {
	mockUserRepo := mocks.NewUserRepository(t)
	authService := service.NewAuthService(mockUserRepo, bcrypt.MinCost)
	ctx := context.Background()
	username, password := "alice", "pw1-secret"

	mockUserRepo.On("FindByUsername", ctx, username).
		Return(nil, repository.ErrUserNotFound).
		Once()
	mockUserRepo.On("Save", ctx, mock.MatchedBy(func(user *domain.User) bool {
		return user.Username == username &&
			bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
	})).
		Run(func(args mock.Arguments) {
			userArg := args.Get(1).(*domain.User)
			userArg.ID = 5
			userArg.CreatedAt = time.Now()
		}).
		Return(nil).
		Once()

	user, err := authService.Register(ctx, username, password)

	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, uint(5), user.ID)
	assert.Equal(t, username, user.Username)
	assert.Empty(t, user.PasswordHash, "hash must not leave the service")
}

func TestAuthService_Register_UsernameTaken(t *testing.T) {
	mockUserRepo := mocks.NewUserRepository(t)
	authService := service.NewAuthService(mockUserRepo, bcrypt.MinCost)
	ctx := context.Background()

	mockUserRepo.On("FindByUsername", ctx, "alice").
		Return(&domain.User{ID: 10, Username: "alice"}, nil).
		Once()

	_, err := authService.Register(ctx, "alice", "password")

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrUsernameTaken))
	mockUserRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAuthService_Register_SaveFails_DuplicateEntry(t *testing.T) {
	mockUserRepo := mocks.NewUserRepository(t)
	authService := service.NewAuthService(mockUserRepo, bcrypt.MinCost)
	ctx := context.Background()

	// 并发注册：预检查通过，唯一索引拒绝
	mockUserRepo.On("FindByUsername", ctx, "racer").Return(nil, repository.ErrUserNotFound).Once()
	mockUserRepo.On("Save", ctx, mock.AnythingOfType("*domain.User")).Return(repository.ErrDuplicateEntry).Once()

	_, err := authService.Register(ctx, "racer", "password")

	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrUsernameTaken)
}

func TestAuthService_Register_RepositoryFailure(t *testing.T) {
	mockUserRepo := mocks.NewUserRepository(t)
	authService := service.NewAuthService(mockUserRepo, bcrypt.MinCost)
	ctx := context.Background()

	mockUserRepo.On("FindByUsername", ctx, "alice").Return(nil, errors.New("db down")).Once()

	_, err := authService.Register(ctx, "alice", "password")

	assert.ErrorIs(t, err, service.ErrInternalServer)
	mockUserRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAuthService_Register_EmptyInput(t *testing.T) {
	mockUserRepo := mocks.NewUserRepository(t)
	authService := service.NewAuthService(mockUserRepo, bcrypt.MinCost)

	_, err := authService.Register(context.Background(), "  ", "password")
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = authService.Register(context.Background(), "alice", "")
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

// --- Login 测试 ---

func TestAuthService_Login_Success(t *testing.T) {
	mockUserRepo := mocks.NewUserRepository(t)
	authService := service.NewAuthService(mockUserRepo, bcrypt.MinCost)
	ctx := context.Background()
	userInDB := &domain.User{ID: 1, Username: "alice", PasswordHash: hashFor(t, "pw1")}

	mockUserRepo.On("FindByUsername", ctx, "alice").Return(userInDB, nil).Once()

	user, err := authService.Login(ctx, "alice", "pw1")

	require.NoError(t, err)
	assert.Equal(t, uint(1), user.ID)
	assert.Empty(t, user.PasswordHash)
}

func TestAuthService_Login_FailuresAreIndistinguishable(t *testing.T) {
	mockUserRepo := mocks.NewUserRepository(t)
	authService := service.NewAuthService(mockUserRepo, bcrypt.MinCost)
	ctx := context.Background()

	mockUserRepo.On("FindByUsername", ctx, "alice").
		Return(&domain.User{ID: 1, Username: "alice", PasswordHash: hashFor(t, "pw1")}, nil).
		Once()
	mockUserRepo.On("FindByUsername", ctx, "nobody").
		Return(nil, repository.ErrUserNotFound).
		Once()

	user, wrongPasswordErr := authService.Login(ctx, "alice", "wrong")
	assert.Nil(t, user)
	_, unknownUserErr := authService.Login(ctx, "nobody", "pw1")

	require.Error(t, wrongPasswordErr)
	require.Error(t, unknownUserErr)
	assert.ErrorIs(t, wrongPasswordErr, service.ErrAuthenticationFailed)
	assert.ErrorIs(t, unknownUserErr, service.ErrAuthenticationFailed)
	assert.Equal(t, wrongPasswordErr.Error(), unknownUserErr.Error())
}

func TestAuthService_Login_RepositoryFailure(t *testing.T) {
	mockUserRepo := mocks.NewUserRepository(t)
	authService := service.NewAuthService(mockUserRepo, bcrypt.MinCost)
	ctx := context.Background()

	mockUserRepo.On("FindByUsername", ctx, "alice").Return(nil, errors.New("db down")).Once()

	_, err := authService.Login(ctx, "alice", "pw1")
	assert.ErrorIs(t, err, service.ErrInternalServer)
}

// --- CurrentUser 测试 ---

func TestAuthService_CurrentUser(t *testing.T) {
	mockUserRepo := mocks.NewUserRepository(t)
	authService := service.NewAuthService(mockUserRepo, bcrypt.MinCost)
	ctx := context.Background()

	mockUserRepo.On("FindByID", ctx, uint(3)).Return(&domain.User{ID: 3, Username: "bob", PasswordHash: "h"}, nil).Once()
	mockUserRepo.On("FindByID", ctx, uint(4)).Return(nil, repository.ErrUserNotFound).Once()

	user, err := authService.CurrentUser(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "bob", user.Username)
	assert.Empty(t, user.PasswordHash)

	_, err = authService.CurrentUser(ctx, 4)
	assert.ErrorIs(t, err, service.ErrUserNotFound)

	_, err = authService.CurrentUser(ctx, 0)
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}
