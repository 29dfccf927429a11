package gormpersistence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NeNorvalls/Secure-Notes-App/internal/domain"
	gormpersistence "github.com/NeNorvalls/Secure-Notes-App/internal/infra/persistence/gorm"
	"github.com/NeNorvalls/Secure-Notes-App/internal/repository"
)

func TestGormUserRepository_SaveAndFind(t *testing.T) {
	repo := gormpersistence.NewGormUserRepository(openTestDB(t))
	ctx := context.Background()

	user := &domain.User{Username: "alice", PasswordHash: "hash"}
	require.NoError(t, repo.Save(ctx, user))
	assert.NotZero(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	byName, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)
	assert.Equal(t, "hash", byName.PasswordHash)

	byID, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)
}

func TestGormUserRepository_NotFound(t *testing.T) {
	repo := gormpersistence.NewGormUserRepository(openTestDB(t))
	ctx := context.Background()

	_, err := repo.FindByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	_, err = repo.FindByID(ctx, 42)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestGormUserRepository_DuplicateUsername(t *testing.T) {
	db := openTestDB(t)
	repo := gormpersistence.NewGormUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &domain.User{Username: "alice", PasswordHash: "a"}))
	err := repo.Save(ctx, &domain.User{Username: "alice", PasswordHash: "b"})
	assert.ErrorIs(t, err, repository.ErrDuplicateEntry)

	var count int64
	require.NoError(t, db.Model(&domain.User{}).Where("username = ?", "alice").Count(&count).Error)
	assert.Equal(t, int64(1), count, "the unique index must keep a single row")
}
