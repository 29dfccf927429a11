package gormpersistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/NeNorvalls/Secure-Notes-App/internal/domain"
	"github.com/NeNorvalls/Secure-Notes-App/internal/repository"
)

// GormNoteRepository 是 repository.NoteRepository 的 GORM 实现
type GormNoteRepository struct {
	db *gorm.DB
}

// NewGormNoteRepository 创建 GormNoteRepository 实例
func NewGormNoteRepository(db *gorm.DB) *GormNoteRepository {
	if db == nil {
		panic("database connection cannot be nil for GormNoteRepository")
	}
	return &GormNoteRepository{db: db}
}

// Create 插入笔记
func (r *GormNoteRepository) Create(ctx context.Context, note *domain.Note) error {
	if err := r.db.WithContext(ctx).Create(note).Error; err != nil {
		return fmt.Errorf("gorm: create note for user %d: %w", note.UserID, err)
	}
	return nil
}

// ListByOwner 按 ID（即创建顺序）返回所有者的笔记
func (r *GormNoteRepository) ListByOwner(ctx context.Context, ownerID uint) ([]domain.Note, error) {
	notes := make([]domain.Note, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("id ASC").
		Find(&notes).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list notes for user %d: %w", ownerID, err)
	}
	return notes, nil
}

// DeleteOwned 用一条同时按 id 和所有者过滤的语句删除，
// 他人的笔记与不存在的笔记无法区分
func (r *GormNoteRepository) DeleteOwned(ctx context.Context, id, ownerID uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		Delete(&domain.Note{})
	if result.Error != nil {
		return fmt.Errorf("gorm: delete note %d for user %d: %w", id, ownerID, result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrNoteNotFound
	}
	return nil
}
