package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/securecookie"
	"github.com/sirupsen/logrus"

	"github.com/NeNorvalls/Secure-Notes-App/internal/session"
)

const sessionContextKey = "session"

// ErrorPageTemplate 是页面处理器之外产生的错误响应所用的模板
const ErrorPageTemplate = "error.html"

// Session 将浏览器会话加载到 gin 上下文中
// 无法解码的 Cookie（签名错误、过期、密钥不同）会得到一个新会话；
// 其他存储错误直接返回 500
func Session(manager *session.Manager) gin.HandlerFunc {
	if manager == nil {
		panic("session manager cannot be nil for Session middleware")
	}
	return func(c *gin.Context) {
		s, err := manager.Load(c.Request)
		if err != nil {
			var cookieErr securecookie.Error
			if errors.As(err, &cookieErr) && cookieErr.IsDecode() {
				logrus.WithError(err).Debug("Session middleware: discarding unreadable session cookie")
			} else {
				logrus.WithError(err).Error("Session middleware: failed to load session")
				AbortWithErrorPage(c, http.StatusInternalServerError, "")
				return
			}
		}
		c.Set(sessionContextKey, s)
		c.Next()
	}
}

// SessionFrom 返回 Session 中间件加载的会话
func SessionFrom(c *gin.Context) *session.Session {
	return c.MustGet(sessionContextKey).(*session.Session)
}

// SaveSession 保存当前请求的会话，必须在写响应体之前调用
func SaveSession(c *gin.Context) error {
	return SessionFrom(c).Save(c.Request, c.Writer)
}

// AbortWithErrorPage 渲染错误页并中止处理链，message 为空时使用状态码文本
func AbortWithErrorPage(c *gin.Context, status int, message string) {
	if message == "" {
		message = http.StatusText(status)
	}
	c.HTML(status, ErrorPageTemplate, gin.H{
		"Title":   http.StatusText(status),
		"Status":  status,
		"Message": message,
	})
	c.Abort()
}
