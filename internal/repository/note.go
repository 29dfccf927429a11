package repository

import (
	"context"

	"github.com/NeNorvalls/Secure-Notes-App/internal/domain"
)

// NoteRepository 定义笔记的存储接口，所有读取和删除都限定在所有者范围内
type NoteRepository interface {
	// Create 插入一条笔记，并回填生成的 ID 和时间戳
	Create(ctx context.Context, note *domain.Note) error

	// ListByOwner 按创建顺序返回该所有者的全部笔记
	ListByOwner(ctx context.Context, ownerID uint) ([]domain.Note, error)

	// DeleteOwned 删除属于 ownerID 的指定笔记
	// 该所有者下不存在此笔记时返回 ErrNoteNotFound
	DeleteOwned(ctx context.Context, id, ownerID uint) error
}
