package setup

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 支持的数据库驱动
const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// DatabaseOptions 数据库连接参数，设置了 DSN 时原样传给驱动
type DatabaseOptions struct {
	Driver     string
	DSN        string
	SQLitePath string
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	LogLevel   logger.LogLevel
}

// OpenDatabase 按配置的驱动打开 GORM 连接并设置连接池
func OpenDatabase(opts DatabaseOptions) (*gorm.DB, error) {
	dialector, err := dialectorFor(opts)
	if err != nil {
		return nil, err
	}

	logLevel := opts.LogLevel
	if logLevel == 0 {
		logLevel = logger.Warn
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(os.Stdout, logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", opts.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if opts.Driver == DriverSQLite {
		// SQLite 写操作本就串行，单连接避免 SQLITE_BUSY
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	logrus.WithField("driver", opts.Driver).Info("Database connected")
	return db, nil
}

// newGormLogger 创建 GORM 日志器
// 记录不存在是用户名预检查等查询的正常结果，不记录日志
func newGormLogger(w io.Writer, level logger.LogLevel) logger.Interface {
	return logger.New(log.New(w, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// CloseDatabase 关闭 db 底层的连接池
func CloseDatabase(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

func dialectorFor(opts DatabaseOptions) (gorm.Dialector, error) {
	switch opts.Driver {
	case DriverSQLite, "":
		dsn := opts.DSN
		if dsn == "" {
			path := opts.SQLitePath
			if path == "" {
				path = "notes.db"
			}
			if dir := filepath.Dir(path); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return nil, fmt.Errorf("failed to create directory for SQLite: %w", err)
				}
			}
			dsn = path + "?_foreign_keys=on&_busy_timeout=5000"
		}
		return sqlite.Open(dsn), nil
	case DriverMySQL:
		dsn, err := mysqlDSN(opts)
		if err != nil {
			return nil, err
		}
		return mysql.Open(dsn), nil
	case DriverPostgres:
		dsn, err := postgresDSN(opts)
		if err != nil {
			return nil, err
		}
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
}

// mysqlDSN 根据各项配置构建 go-sql-driver 的 DSN
func mysqlDSN(opts DatabaseOptions) (string, error) {
	if opts.DSN != "" {
		return opts.DSN, nil
	}
	if opts.User == "" {
		return "", fmt.Errorf("DB_USER must be set for the mysql driver")
	}
	host := valueOr(opts.Host, "127.0.0.1")
	port := valueOr(opts.Port, "3306")
	name := valueOr(opts.Name, "notes")
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		opts.User, opts.Password, host, port, name), nil
}

// postgresDSN 根据各项配置构建 libpq 风格的 DSN
func postgresDSN(opts DatabaseOptions) (string, error) {
	if opts.DSN != "" {
		return opts.DSN, nil
	}
	if opts.User == "" {
		return "", fmt.Errorf("DB_USER must be set for the postgres driver")
	}
	host := valueOr(opts.Host, "127.0.0.1")
	port := valueOr(opts.Port, "5432")
	name := valueOr(opts.Name, "notes")

	sslMode := "require"
	if host == "localhost" || host == "127.0.0.1" || strings.HasPrefix(host, "/") {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		host, opts.User, opts.Password, name, port, sslMode), nil
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
