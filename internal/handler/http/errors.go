package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/NeNorvalls/Secure-Notes-App/internal/middleware"
	"github.com/NeNorvalls/Secure-Notes-App/internal/service"
)

// HandleServiceError 将 Service 错误映射为错误页
func HandleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoteNotFound), errors.Is(err, service.ErrUserNotFound):
		middleware.AbortWithErrorPage(c, http.StatusNotFound, "The requested page could not be found.")
	case errors.Is(err, service.ErrInvalidInput):
		middleware.AbortWithErrorPage(c, http.StatusBadRequest, "The submitted data is invalid.")
	default:
		logrus.WithError(err).WithField("path", c.Request.URL.Path).Error("Unhandled internal server error")
		middleware.AbortWithErrorPage(c, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}

// NotFound 未知路由返回 404 页面
func NotFound(c *gin.Context) {
	middleware.AbortWithErrorPage(c, http.StatusNotFound, "The requested page could not be found.")
}

// MethodNotAllowed 返回 405 页面
func MethodNotAllowed(c *gin.Context) {
	middleware.AbortWithErrorPage(c, http.StatusMethodNotAllowed, "The method is not allowed for the requested URL.")
}

// Recovery 在 panic 后渲染 500 页面，配合 gin.CustomRecovery 使用
func Recovery(c *gin.Context, recovered interface{}) {
	logrus.WithField("panic", recovered).WithField("path", c.Request.URL.Path).Error("Recovered from panic")
	middleware.AbortWithErrorPage(c, http.StatusInternalServerError, "An unexpected error occurred.")
}
