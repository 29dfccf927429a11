package repository

import "errors"

// 通用的存储库错误
var (
	// ErrNotFound 表示记录不存在
	ErrNotFound = errors.New("repository: record not found")
	// ErrDuplicateEntry 表示写入违反了唯一约束
	ErrDuplicateEntry = errors.New("repository: duplicate entry")
)

// 按资源区分的别名
var (
	ErrUserNotFound = ErrNotFound
	ErrNoteNotFound = ErrNotFound
)
