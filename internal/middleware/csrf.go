package middleware

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
)

// CSRFFieldName 是携带令牌的表单字段名
const CSRFFieldName = "csrf_token"

// CSRFHeaderName 可替代表单字段携带令牌
const CSRFHeaderName = "X-CSRF-Token"

const (
	csrfTokenContextKey = "csrf_token"
	csrfErrorContextKey = "csrf_error"
)

var (
	ErrCSRFMissing  = errors.New("the CSRF token is missing")
	ErrCSRFInvalid  = errors.New("the CSRF token is invalid")
	ErrCSRFExpired  = errors.New("the CSRF token has expired")
	ErrCSRFMismatch = errors.New("the CSRF tokens do not match")
)

type csrfClaims struct {
	Nonce string `json:"nonce"`
	jwt.RegisteredClaims
}

// CSRF 签发并校验与会话 nonce 绑定的限时令牌
// 令牌是使用应用密钥签名的 HS256 JWT
type CSRF struct {
	secret    []byte
	timeLimit time.Duration
	enabled   bool
}

// NewCSRF 创建 CSRF 校验器，timeLimit 为 0 时取一小时
func NewCSRF(secret string, timeLimit time.Duration, enabled bool) *CSRF {
	if secret == "" {
		panic("secret cannot be empty for CSRF")
	}
	if timeLimit <= 0 {
		timeLimit = time.Hour
	}
	return &CSRF{secret: []byte(secret), timeLimit: timeLimit, enabled: enabled}
}

// Token 为 nonce 签发新令牌
func (g *CSRF) Token(nonce string) (string, error) {
	return g.tokenAt(nonce, time.Now())
}

func (g *CSRF) tokenAt(nonce string, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, csrfClaims{
		Nonce: nonce,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.timeLimit)),
		},
	})
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign CSRF token: %w", err)
	}
	return signed, nil
}

// Validate 校验 tokenStr 的签名、有效期以及是否为该 nonce 签发
func (g *CSRF) Validate(tokenStr, nonce string) error {
	if tokenStr == "" {
		return ErrCSRFMissing
	}

	claims := &csrfClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return g.secret, nil
	})
	if err != nil {
		var validationError *jwt.ValidationError
		if errors.As(err, &validationError) && validationError.Errors&jwt.ValidationErrorExpired != 0 {
			return fmt.Errorf("%w: %w", ErrCSRFInvalid, ErrCSRFExpired)
		}
		return fmt.Errorf("%w: %v", ErrCSRFInvalid, err)
	}
	if !token.Valid {
		return ErrCSRFInvalid
	}
	if nonce == "" || subtle.ConstantTimeCompare([]byte(claims.Nonce), []byte(nonce)) != 1 {
		return ErrCSRFMismatch
	}
	return nil
}

// Middleware 对缺少有效令牌的非安全请求返回 400 页面，并向处理器提供新令牌
// 用于没有表单可重新显示的路由
func (g *CSRF) Middleware() gin.HandlerFunc {
	return g.handler(false)
}

// FormMiddleware 与 Middleware 一样校验令牌，但校验失败时放行请求
// 由处理器把 CSRFError 作为表单错误，带新令牌重新显示表单
func (g *CSRF) FormMiddleware() gin.HandlerFunc {
	return g.handler(true)
}

func (g *CSRF) handler(deferToForm bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !g.enabled {
			c.Next()
			return
		}

		nonce := SessionFrom(c).CSRFNonce()

		if !isSafeMethod(c.Request.Method) {
			tokenStr := c.PostForm(CSRFFieldName)
			if tokenStr == "" {
				tokenStr = c.GetHeader(CSRFHeaderName)
			}
			if err := g.Validate(tokenStr, nonce); err != nil {
				logCtx := logrus.WithError(err).WithField("path", c.Request.URL.Path)
				if !deferToForm {
					logCtx.Warn("CSRF middleware: request rejected")
					AbortWithErrorPage(c, http.StatusBadRequest, "The CSRF token is missing or invalid.")
					return
				}
				logCtx.Warn("CSRF middleware: form submission flagged")
				c.Set(csrfErrorContextKey, err)
			}
		}

		token, err := g.Token(nonce)
		if err != nil {
			logrus.WithError(err).Error("CSRF middleware: failed to issue token")
			AbortWithErrorPage(c, http.StatusInternalServerError, "")
			return
		}
		c.Set(csrfTokenContextKey, token)
		c.Next()
	}
}

// CSRFError 返回 FormMiddleware 记录的令牌校验错误
func CSRFError(c *gin.Context) error {
	v, ok := c.Get(csrfErrorContextKey)
	if !ok {
		return nil
	}
	err, _ := v.(error)
	return err
}

// CSRFErrorMessage 返回 err 对应的表单提示
func CSRFErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrCSRFMissing):
		return "The CSRF token is missing."
	case errors.Is(err, ErrCSRFExpired):
		return "The CSRF token has expired."
	case errors.Is(err, ErrCSRFMismatch):
		return "The CSRF tokens do not match."
	default:
		return "The CSRF token is invalid."
	}
}

// CSRFToken 返回本次请求签发的令牌，未启用 CSRF 保护时返回空串
func CSRFToken(c *gin.Context) string {
	return c.GetString(csrfTokenContextKey)
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}
