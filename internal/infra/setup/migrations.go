package setup

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/NeNorvalls/Secure-Notes-App/internal/domain"
)

// MigrateDB 根据模型定义创建或更新 users 和 notes 表
func MigrateDB(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("cannot migrate database with nil DB connection")
	}

	// 先迁移 users：notes.user_id 引用它
	if err := db.AutoMigrate(&domain.User{}); err != nil {
		logrus.Errorf("Failed to auto-migrate users table: %v", err)
		return fmt.Errorf("failed to migrate users table: %w", err)
	}
	if err := db.AutoMigrate(&domain.Note{}); err != nil {
		logrus.Errorf("Failed to auto-migrate notes table: %v", err)
		return fmt.Errorf("failed to migrate notes table: %w", err)
	}

	logrus.Info("Database migration completed successfully")
	return nil
}
