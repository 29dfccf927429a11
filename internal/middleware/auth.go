package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/NeNorvalls/Secure-Notes-App/internal/domain"
	"github.com/NeNorvalls/Secure-Notes-App/internal/service"
	"github.com/NeNorvalls/Secure-Notes-App/internal/session"
)

const currentUserContextKey = "current_user"

// LoginMessage 是匿名请求访问受保护路由时的提示
const LoginMessage = "Please log in to access this page."

// UserLoader 根据会话中的用户 ID 加载用户
type UserLoader interface {
	CurrentUser(ctx context.Context, userID uint) (*domain.User, error)
}

// LoadUser 将会话身份解析为用户并存入 gin 上下文
// 会话指向的用户已不存在时按匿名处理，并清除该身份
func LoadUser(loader UserLoader) gin.HandlerFunc {
	if loader == nil {
		panic("user loader cannot be nil for LoadUser middleware")
	}
	return func(c *gin.Context) {
		s := SessionFrom(c)
		userID, ok := s.UserID()
		if !ok {
			c.Next()
			return
		}

		user, err := loader.CurrentUser(c.Request.Context(), userID)
		switch {
		case err == nil:
			c.Set(currentUserContextKey, user)
			logrus.WithField("user_id", userID).Debug("LoadUser: session user resolved")
		case errors.Is(err, service.ErrUserNotFound):
			logrus.WithField("user_id", userID).Warn("LoadUser: session refers to a missing user, treating as anonymous")
			s.Logout()
		default:
			logrus.WithError(err).WithField("user_id", userID).Error("LoadUser: failed to load session user")
			AbortWithErrorPage(c, http.StatusInternalServerError, "")
			return
		}
		c.Next()
	}
}

// CurrentUser 返回当前请求的登录用户（如有）
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(currentUserContextKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok && user != nil
}

// RequireLogin 将匿名请求重定向到 loginPath 并添加 info 提示
// GET 请求会把自身 URL 作为 next 参数带上
func RequireLogin(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); ok {
			c.Next()
			return
		}

		s := SessionFrom(c)
		s.AddFlash(session.CategoryInfo, LoginMessage)
		if err := SaveSession(c); err != nil {
			logrus.WithError(err).Error("RequireLogin: failed to save session")
			AbortWithErrorPage(c, http.StatusInternalServerError, "")
			return
		}

		location := loginPath
		if c.Request.Method == http.MethodGet {
			location += "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
		}
		logrus.WithField("path", c.Request.URL.Path).Debug("RequireLogin: anonymous request redirected to login")
		c.Redirect(http.StatusFound, location)
		c.Abort()
	}
}

// RedirectIfAuthenticated 将已登录用户重定向到 target，用于注册和登录页
func RedirectIfAuthenticated(target string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); ok {
			c.Redirect(http.StatusFound, target)
			c.Abort()
			return
		}
		c.Next()
	}
}
