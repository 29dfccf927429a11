package domain

import "time"

// Note 属于唯一用户的一条文本笔记，所有者在创建时确定，笔记不可编辑
type Note struct {
	ID        uint      `gorm:"primaryKey"`
	Content   string    `gorm:"type:text;not null"`
	UserID    uint      `gorm:"index;not null"` // 所有者
	CreatedAt time.Time `gorm:"autoCreateTime"`

	// Owner 仅用于生成外键约束，从不预加载
	Owner *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
