package http

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/NeNorvalls/Secure-Notes-App/internal/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

// LoadTemplates 解析内嵌的页面模板，页面按文件名引用，例如 "notes.html"
func LoadTemplates() (*template.Template, error) {
	return template.New("").ParseFS(templateFS, "templates/*.html")
}

// render 填充布局数据（提示、当前用户、CSRF 令牌），保存会话后渲染页面
func render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	s := middleware.SessionFrom(c)
	data["Flashes"] = s.Flashes()
	data["CSRFToken"] = middleware.CSRFToken(c)
	if user, ok := middleware.CurrentUser(c); ok {
		data["CurrentUser"] = user
	}
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = FieldErrors{}
	}

	if err := s.Save(c.Request, c.Writer); err != nil {
		logrus.WithError(err).WithField("template", name).Error("render: failed to save session")
		middleware.AbortWithErrorPage(c, http.StatusInternalServerError, "")
		return
	}
	c.HTML(status, name, data)
}

// redirect 保存会话后以 302 重定向
func redirect(c *gin.Context, location string) {
	if err := middleware.SaveSession(c); err != nil {
		logrus.WithError(err).WithField("location", location).Error("redirect: failed to save session")
		middleware.AbortWithErrorPage(c, http.StatusInternalServerError, "")
		return
	}
	c.Redirect(http.StatusFound, location)
}

// flash 为下一次渲染的页面添加提示
func flash(c *gin.Context, category, message string) {
	middleware.SessionFrom(c).AddFlash(category, message)
}
