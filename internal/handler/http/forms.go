package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/NeNorvalls/Secure-Notes-App/internal/middleware"
)

// RegisterForm 注册页提交的表单
type RegisterForm struct {
	Username        string `form:"username" binding:"required,min=3,max=150"`
	Password        string `form:"password" binding:"required,min=6,max=128"`
	ConfirmPassword string `form:"confirm_password" binding:"required,eqfield=Password"`
}

// LoginForm 登录页提交的表单
type LoginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// NoteForm 笔记页提交的表单
type NoteForm struct {
	Content string `form:"content" binding:"required,notblank,max=10000"`
}

// FieldErrors 表单字段名到错误信息的映射
type FieldErrors map[string][]string

// formErrorKey 存放不属于单个字段的错误
const formErrorKey = "_form"

var registerValidatorsOnce sync.Once

// RegisterValidators 注册自定义校验规则，并让校验错误使用表单字段名
// 可重复调用
func RegisterValidators() {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	})
}

// bindForm 将提交的表单绑定到 obj，表单有效时返回 nil
// FormMiddleware 标记的 CSRF 错误记在 formErrorKey 下，字段仍会绑定以便回显
func bindForm(c *gin.Context, obj interface{}) FieldErrors {
	RegisterValidators()
	fieldErrors := FieldErrors{}
	if csrfErr := middleware.CSRFError(c); csrfErr != nil {
		fieldErrors[formErrorKey] = []string{middleware.CSRFErrorMessage(csrfErr)}
	}

	if err := c.ShouldBindWith(obj, binding.Form); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			fieldErrors[formErrorKey] = append(fieldErrors[formErrorKey], "The form could not be read.")
		}
		for _, fe := range validationErrors {
			fieldErrors[fe.Field()] = append(fieldErrors[fe.Field()], fieldMessage(fe))
		}
	}

	if len(fieldErrors) == 0 {
		return nil
	}
	return fieldErrors
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "This field is required."
	case "min":
		return fmt.Sprintf("Field must be at least %s characters long.", fe.Param())
	case "max":
		return fmt.Sprintf("Field cannot be longer than %s characters.", fe.Param())
	case "eqfield":
		return "Passwords must match."
	default:
		return "Invalid value."
	}
}
