package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/sessions"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	httpHandler "github.com/NeNorvalls/Secure-Notes-App/internal/handler/http"
	gormpersistence "github.com/NeNorvalls/Secure-Notes-App/internal/infra/persistence/gorm"
	"github.com/NeNorvalls/Secure-Notes-App/internal/infra/setup"
	redisstate "github.com/NeNorvalls/Secure-Notes-App/internal/infra/state/redis"
	"github.com/NeNorvalls/Secure-Notes-App/internal/middleware"
	"github.com/NeNorvalls/Secure-Notes-App/internal/service"
	"github.com/NeNorvalls/Secure-Notes-App/internal/session"
)

const shutdownTimeout = 10 * time.Second

// App 结构体包含应用的所有组件
type App struct {
	Config      *Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	Router      *gin.Engine
	HttpServer  *http.Server
}

// NewApp 创建并初始化应用的所有组件
func NewApp(cfg *Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	// 1. 初始化 Logger
	log := newLogger(cfg)
	log.Info("Configuration loaded successfully")

	// 2. 初始化基础设施
	log.Info("Initializing infrastructure...")
	db, err := setup.OpenDatabase(setup.DatabaseOptions{
		Driver:     cfg.DBDriver,
		DSN:        cfg.DBDSN,
		SQLitePath: cfg.SQLitePath,
		Host:       cfg.DBHost,
		Port:       cfg.DBPort,
		User:       cfg.DBUser,
		Password:   cfg.DBPassword,
		Name:       cfg.DBName,
		LogLevel:   gormLogLevel(cfg),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init DB: %w", err)
	}
	log.WithField("driver", cfg.DBDriver).Info("Database initialized")

	if err := setup.MigrateDB(db); err != nil {
		_ = setup.CloseDatabase(db)
		return nil, fmt.Errorf("failed to migrate DB: %w", err)
	}
	log.Info("Database migrated")

	var redisClient *redis.Client
	if cfg.SessionBackend == SessionBackendRedis {
		redisClient, err = setup.InitRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			_ = setup.CloseDatabase(db)
			return nil, fmt.Errorf("failed to init Redis: %w", err)
		}
		log.Info("Redis client initialized")
	}

	// 3. 初始化会话存储
	sessionManager := session.NewManager(newSessionStore(cfg, redisClient), "notes_session")
	log.WithField("backend", cfg.SessionBackend).Info("Session store initialized")

	// 4. 初始化 Repositories 和 Services
	userRepo := gormpersistence.NewGormUserRepository(db)
	noteRepo := gormpersistence.NewGormNoteRepository(db)
	authService := service.NewAuthService(userRepo, cfg.BcryptCost)
	noteService := service.NewNoteService(noteRepo)
	log.Info("Services initialized")

	// 5. 初始化 Handlers
	authHandler := httpHandler.NewAuthHandler(authService)
	noteHandler := httpHandler.NewNoteHandler(noteService)
	csrf := middleware.NewCSRF(cfg.SecretKey, cfg.CSRFTimeLimit, cfg.CSRFEnabled)
	if !cfg.CSRFEnabled {
		log.Warn("CSRF protection is disabled")
	}

	// 6. 初始化 Gin Engine 和路由
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	templates, err := httpHandler.LoadTemplates()
	if err != nil {
		_ = setup.CloseDatabase(db)
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	httpHandler.RegisterValidators()

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.SetHTMLTemplate(templates)
	router.Use(gin.CustomRecovery(httpHandler.Recovery))
	router.Use(LoggerMiddleware(log))
	router.Use(middleware.Session(sessionManager))
	router.Use(middleware.LoadUser(authService))

	router.GET("/", httpHandler.Home)
	router.GET("/ping", httpHandler.Ping)

	guestRoutes := router.Group("/", middleware.RedirectIfAuthenticated(httpHandler.NotesPath), csrf.FormMiddleware())
	{
		guestRoutes.GET("/register", authHandler.RegisterPage)
		guestRoutes.POST("/register", authHandler.Register)
		guestRoutes.GET("/login", authHandler.LoginPage)
		guestRoutes.POST("/login", authHandler.Login)
	}
	userRoutes := router.Group("/", middleware.RequireLogin(httpHandler.LoginPath))
	{
		userRoutes.GET("/logout", authHandler.Logout)
		userRoutes.GET("/notes", csrf.FormMiddleware(), noteHandler.List)
		userRoutes.POST("/notes", csrf.FormMiddleware(), noteHandler.Create)
		// 删除没有可回显的表单，令牌无效直接返回 400
		userRoutes.POST("/delete_note/:note_id", csrf.Middleware(), noteHandler.Delete)
	}
	router.NoRoute(httpHandler.NotFound)
	router.NoMethod(httpHandler.MethodNotAllowed)
	log.Info("Router setup complete")

	// 7. 初始化 HTTP Server
	httpServer := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &App{
		Config:      cfg,
		Log:         log,
		DB:          db,
		RedisClient: redisClient,
		Router:      router,
		HttpServer:  httpServer,
	}, nil
}

// Start 在后台启动 HTTP 服务器
func (a *App) Start() {
	go func() {
		a.Log.Infof("HTTP server starting to listen on %s", a.HttpServer.Addr)
		if err := a.HttpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.Fatalf("Failed to start HTTP server: %v", err)
		}
		a.Log.Info("HTTP server stopped listening.")
	}()
}

// Shutdown 优雅地关闭应用
func (a *App) Shutdown() {
	a.Log.Info("Shutting down application...")

	// 1. 关闭 HTTP 服务器
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.HttpServer.Shutdown(ctx); err != nil {
		a.Log.Errorf("Error shutting down HTTP server: %v", err)
	} else {
		a.Log.Info("HTTP server shut down gracefully.")
	}

	// 2. 关闭 Redis 连接
	if a.RedisClient != nil {
		if err := a.RedisClient.Close(); err != nil {
			a.Log.Errorf("Error closing Redis connection: %v", err)
		} else {
			a.Log.Info("Redis connection closed.")
		}
	}

	// 3. 关闭数据库连接
	if err := setup.CloseDatabase(a.DB); err != nil {
		a.Log.Errorf("Error closing database connection: %v", err)
	} else {
		a.Log.Info("Database connection closed.")
	}

	a.Log.Info("Application shutdown complete.")
}

// newLogger 配置 logrus 标准 logger，Service 和中间件都通过它输出日志
func newLogger(cfg *Config) *logrus.Logger {
	log := logrus.StandardLogger()
	if cfg.IsProduction() {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	log.SetOutput(os.Stdout)
	return log
}

func gormLogLevel(cfg *Config) logger.LogLevel {
	if !cfg.IsProduction() && cfg.LogLevel == "debug" {
		return logger.Info
	}
	return logger.Warn
}

func newSessionStore(cfg *Config, redisClient *redis.Client) sessions.Store {
	hashKey := []byte(cfg.SecretKey)
	var blockKey []byte
	if cfg.SessionEncryptionKey != "" {
		blockKey = []byte(cfg.SessionEncryptionKey)
	}
	opts := sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.SessionCookieSecure,
		SameSite: http.SameSiteLaxMode,
	}

	if redisClient != nil {
		store := redisstate.NewSessionStore(redisClient, cfg.KeyPrefix, hashKey, blockKey)
		store.Options = &opts
		store.MaxAge(opts.MaxAge)
		return store
	}
	return session.NewCookieStore(hashKey, blockKey, opts)
}

// LoggerMiddleware 创建一个 Gin 中间件用于记录请求日志，按状态码区分日志级别
func LoggerMiddleware(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()
		latency := time.Since(startTime)
		statusCode := c.Writer.Status()

		entry := log.WithFields(logrus.Fields{
			"status_code": statusCode,
			"latency_ms":  latency.Milliseconds(),
			"client_ip":   c.ClientIP(),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
		})

		if errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String(); errorMessage != "" {
			entry.Error(errorMessage)
			return
		}
		switch {
		case statusCode >= 500:
			entry.Error("Server error")
		case statusCode >= 400:
			entry.Warn("Client error")
		default:
			entry.Info("Request handled")
		}
	}
}
