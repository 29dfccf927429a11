package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Greeting 站点根路径返回的文本
const Greeting = "Hello, Secure World! 🔐 (with DB now)"

// Home 返回纯文本问候语
func Home(c *gin.Context) {
	c.String(http.StatusOK, Greeting)
}

// Ping 存活检查
func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
