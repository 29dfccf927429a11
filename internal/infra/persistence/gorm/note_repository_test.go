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

func seedUsers(t *testing.T, repo *gormpersistence.GormUserRepository, names ...string) []*domain.User {
	t.Helper()
	users := make([]*domain.User, 0, len(names))
	for _, name := range names {
		u := &domain.User{Username: name, PasswordHash: "x"}
		require.NoError(t, repo.Save(context.Background(), u))
		users = append(users, u)
	}
	return users
}

func TestGormNoteRepository_ListIsScopedAndOrdered(t *testing.T) {
	db := openTestDB(t)
	users := seedUsers(t, gormpersistence.NewGormUserRepository(db), "alice", "bob")
	alice, bob := users[0], users[1]
	repo := gormpersistence.NewGormNoteRepository(db)
	ctx := context.Background()

	for _, n := range []*domain.Note{
		{Content: "first", UserID: alice.ID},
		{Content: "bob's", UserID: bob.ID},
		{Content: "second", UserID: alice.ID},
	} {
		require.NoError(t, repo.Create(ctx, n))
		assert.NotZero(t, n.ID)
	}

	notes, err := repo.ListByOwner(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "first", notes[0].Content)
	assert.Equal(t, "second", notes[1].Content)

	notes, err = repo.ListByOwner(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "bob's", notes[0].Content)
}

func TestGormNoteRepository_ListEmpty(t *testing.T) {
	repo := gormpersistence.NewGormNoteRepository(openTestDB(t))

	notes, err := repo.ListByOwner(context.Background(), 7)
	require.NoError(t, err)
	assert.NotNil(t, notes)
	assert.Empty(t, notes)
}

func TestGormNoteRepository_DeleteOwned(t *testing.T) {
	db := openTestDB(t)
	users := seedUsers(t, gormpersistence.NewGormUserRepository(db), "alice", "bob")
	alice, bob := users[0], users[1]
	repo := gormpersistence.NewGormNoteRepository(db)
	ctx := context.Background()

	note := &domain.Note{Content: "buy milk", UserID: alice.ID}
	require.NoError(t, repo.Create(ctx, note))

	// 其他用户无法删除，笔记仍然存在
	err := repo.DeleteOwned(ctx, note.ID, bob.ID)
	assert.ErrorIs(t, err, repository.ErrNoteNotFound)
	notes, err := repo.ListByOwner(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, notes, 1)

	// 不存在的 ID
	assert.ErrorIs(t, repo.DeleteOwned(ctx, note.ID+100, alice.ID), repository.ErrNoteNotFound)

	require.NoError(t, repo.DeleteOwned(ctx, note.ID, alice.ID))
	notes, err = repo.ListByOwner(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, notes)

	// 重复删除同一笔记视为未找到
	assert.ErrorIs(t, repo.DeleteOwned(ctx, note.ID, alice.ID), repository.ErrNoteNotFound)
}

func TestGormNoteRepository_CreateRequiresExistingOwner(t *testing.T) {
	repo := gormpersistence.NewGormNoteRepository(openTestDB(t))

	err := repo.Create(context.Background(), &domain.Note{Content: "orphan", UserID: 999})
	assert.Error(t, err, "foreign key must reject notes without an owner row")
}
