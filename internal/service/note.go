package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/NeNorvalls/Secure-Notes-App/internal/domain"
	"github.com/NeNorvalls/Secure-Notes-App/internal/repository"
)

// NoteService 管理用户的私有笔记
// 所有方法的所有者都来自调用方的会话，无法访问其他用户的笔记
type NoteService struct {
	noteRepo repository.NoteRepository
}

// NewNoteService 创建 NoteService 实例
func NewNoteService(noteRepo repository.NoteRepository) *NoteService {
	if noteRepo == nil {
		panic("NoteRepository cannot be nil for NoteService")
	}
	return &NoteService{noteRepo: noteRepo}
}

// Create 为 ownerID 保存一条新笔记
func (s *NoteService) Create(ctx context.Context, ownerID uint, content string) (*domain.Note, error) {
	logCtx := logrus.WithField("user_id", ownerID)
	if ownerID == 0 || strings.TrimSpace(content) == "" {
		return nil, ErrInvalidInput
	}

	note := &domain.Note{Content: content, UserID: ownerID}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		logCtx.WithError(err).Error("Failed to save note")
		return nil, ErrInternalServer
	}

	logCtx.WithField("note_id", note.ID).Info("Note created")
	return note, nil
}

// List 按创建顺序返回所有者的笔记
func (s *NoteService) List(ctx context.Context, ownerID uint) ([]domain.Note, error) {
	notes, err := s.noteRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", ownerID).Error("Failed to list notes")
		return nil, ErrInternalServer
	}
	return notes, nil
}

// Delete 删除 ownerID 拥有的笔记
// 笔记不存在或属于他人，都返回 ErrNoteNotFound
func (s *NoteService) Delete(ctx context.Context, ownerID, noteID uint) error {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": ownerID, "note_id": noteID})

	err := s.noteRepo.DeleteOwned(ctx, noteID, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			logCtx.Warn("Delete rejected: note not found for this user")
			return ErrNoteNotFound
		}
		logCtx.WithError(err).Error("Failed to delete note")
		return ErrInternalServer
	}

	logCtx.Info("Note deleted")
	return nil
}
