package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/NeNorvalls/Secure-Notes-App/internal/domain"
	"github.com/NeNorvalls/Secure-Notes-App/internal/middleware"
	"github.com/NeNorvalls/Secure-Notes-App/internal/service"
	"github.com/NeNorvalls/Secure-Notes-App/internal/session"
)

// NoteHandler 处理笔记页和笔记删除，所有路由都在 RequireLogin 之后
type NoteHandler struct {
	noteService *service.NoteService
}

// NewNoteHandler 创建 NoteHandler 实例
func NewNoteHandler(noteService *service.NoteService) *NoteHandler {
	if noteService == nil {
		panic("NoteService cannot be nil for NoteHandler")
	}
	return &NoteHandler{noteService: noteService}
}

// List 显示用户的笔记和新建表单
func (h *NoteHandler) List(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		HandleServiceError(c, service.ErrUserNotFound)
		return
	}
	h.renderNotes(c, user, NoteForm{}, nil)
}

// Create 为当前用户新建笔记
func (h *NoteHandler) Create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		HandleServiceError(c, service.ErrUserNotFound)
		return
	}
	logCtx := logrus.WithField("user_id", user.ID)

	// 1. 绑定并验证表单
	var form NoteForm
	if fieldErrors := bindForm(c, &form); fieldErrors != nil {
		h.renderNotes(c, user, form, fieldErrors)
		return
	}

	// 2. 创建笔记
	note, err := h.noteService.Create(c.Request.Context(), user.ID, form.Content)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			h.renderNotes(c, user, form, FieldErrors{"content": {"This field is required."}})
			return
		}
		logCtx.WithError(err).Error("Handler.CreateNote: failed to create note")
		HandleServiceError(c, err)
		return
	}

	// 3. 提交后重定向
	logCtx.WithField("note_id", note.ID).Info("Handler.CreateNote: note created")
	flash(c, session.CategorySuccess, "Note added!")
	redirect(c, NotesPath)
}

// Delete 删除当前用户拥有的笔记
// 笔记不存在、属于他人或 ID 非法，都返回同样的 404
func (h *NoteHandler) Delete(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		HandleServiceError(c, service.ErrUserNotFound)
		return
	}
	logCtx := logrus.WithFields(logrus.Fields{"user_id": user.ID, "note_id": c.Param("note_id")})

	// 1. 解析 ID
	noteID, err := strconv.ParseUint(c.Param("note_id"), 10, 32)
	if err != nil || noteID == 0 {
		logCtx.Debug("Handler.DeleteNote: malformed note id")
		HandleServiceError(c, service.ErrNoteNotFound)
		return
	}

	// 2. 按所有者删除
	if err := h.noteService.Delete(c.Request.Context(), user.ID, uint(noteID)); err != nil {
		if errors.Is(err, service.ErrNoteNotFound) {
			logCtx.Warn("Handler.DeleteNote: note not found or not owned")
		}
		HandleServiceError(c, err)
		return
	}

	logCtx.Info("Handler.DeleteNote: note deleted")
	flash(c, session.CategoryInfo, "Note deleted.")
	redirect(c, NotesPath)
}

func (h *NoteHandler) renderNotes(c *gin.Context, user *domain.User, form NoteForm, fieldErrors FieldErrors) {
	notes, err := h.noteService.List(c.Request.Context(), user.ID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("Handler.ListNotes: failed to list notes")
		HandleServiceError(c, err)
		return
	}
	render(c, http.StatusOK, "notes.html", gin.H{
		"Title":  "My Notes",
		"Notes":  notes,
		"Form":   form,
		"Errors": fieldErrors,
	})
}
