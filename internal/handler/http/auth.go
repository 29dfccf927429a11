package http

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/NeNorvalls/Secure-Notes-App/internal/middleware"
	"github.com/NeNorvalls/Secure-Notes-App/internal/service"
	"github.com/NeNorvalls/Secure-Notes-App/internal/session"
)

// 认证处理器使用的重定向路径
const (
	RegisterPath = "/register"
	LoginPath    = "/login"
	NotesPath    = "/notes"
)

// AuthHandler 封装了注册、登录和登出的 HTTP 处理逻辑
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler 创建 AuthHandler 实例
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	if authService == nil {
		panic("AuthService cannot be nil for AuthHandler")
	}
	return &AuthHandler{authService: authService}
}

// RegisterPage 显示空的注册表单
func (h *AuthHandler) RegisterPage(c *gin.Context) {
	h.renderRegister(c, RegisterForm{}, nil)
}

// Register 处理用户注册请求
func (h *AuthHandler) Register(c *gin.Context) {
	var form RegisterForm
	// 1. 绑定并验证表单
	if fieldErrors := bindForm(c, &form); fieldErrors != nil {
		logrus.WithField("fields", fieldErrors).Debug("Handler.Register: invalid form")
		h.renderRegister(c, form, fieldErrors)
		return
	}

	// 2. 调用 Service 层创建账户
	user, err := h.authService.Register(c.Request.Context(), form.Username, form.Password)

	// 3. 处理 Service 返回的错误
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			flash(c, session.CategoryDanger, "Username already taken. Please choose another one.")
			redirect(c, RegisterPath)
			return
		}
		logrus.WithError(err).WithField("username", form.Username).Error("Handler.Register: registration failed")
		HandleServiceError(c, err)
		return
	}

	// 4. 注册成功，不自动登录
	logrus.WithField("user_id", user.ID).Info("Handler.Register: user registered")
	flash(c, session.CategorySuccess, "Account created successfully! You can now log in.")
	redirect(c, LoginPath)
}

func (h *AuthHandler) renderRegister(c *gin.Context, form RegisterForm, fieldErrors FieldErrors) {
	form.Password, form.ConfirmPassword = "", ""
	render(c, http.StatusOK, "register.html", gin.H{
		"Title":  "Register",
		"Form":   form,
		"Errors": fieldErrors,
	})
}

// LoginPage 显示空的登录表单
func (h *AuthHandler) LoginPage(c *gin.Context) {
	h.renderLogin(c, LoginForm{}, nil)
}

// Login 处理用户登录请求，成功后将用户存入会话
func (h *AuthHandler) Login(c *gin.Context) {
	var form LoginForm
	// 1. 绑定并验证表单
	if fieldErrors := bindForm(c, &form); fieldErrors != nil {
		h.renderLogin(c, form, fieldErrors)
		return
	}

	// 2. 校验用户名和密码
	user, err := h.authService.Login(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, service.ErrAuthenticationFailed) {
			flash(c, session.CategoryDanger, "Invalid username or password")
			h.renderLogin(c, form, nil)
			return
		}
		HandleServiceError(c, err)
		return
	}

	// 3. 轮换会话身份
	middleware.SessionFrom(c).Login(user.ID)
	flash(c, session.CategorySuccess, "Logged in successfully.")
	logrus.WithField("user_id", user.ID).Info("Handler.Login: user logged in")
	redirect(c, safeNext(c.Query("next")))
}

func (h *AuthHandler) renderLogin(c *gin.Context, form LoginForm, fieldErrors FieldErrors) {
	form.Password = ""
	action := LoginPath
	if next := c.Query("next"); next != "" && safeNext(next) == next {
		action += "?next=" + url.QueryEscape(next)
	}
	render(c, http.StatusOK, "login.html", gin.H{
		"Title":  "Log in",
		"Form":   form,
		"Errors": fieldErrors,
		"Action": action,
	})
}

// Logout 从会话中移除用户身份
func (h *AuthHandler) Logout(c *gin.Context) {
	s := middleware.SessionFrom(c)
	if userID, ok := s.UserID(); ok {
		logrus.WithField("user_id", userID).Info("Handler.Logout: user logged out")
	}
	s.Logout()
	flash(c, session.CategoryInfo, "You have been logged out.")
	redirect(c, LoginPath)
}

// safeNext 在 next 为站内绝对路径时返回 next，否则返回 NotesPath
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.ContainsAny(next, "\\\r\n") {
		return NotesPath
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return NotesPath
	}
	return next
}
