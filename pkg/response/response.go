package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/KamineHiro/shift-maker/pkg/errors"
)

// Response 统一响应信封：{success, data?, error?, code?}
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    int         `json:"code,omitempty"`
}

// ── 成功响应 ──

// OK 200 成功响应
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// Created 201 创建成功
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

// MultiStatus 207 部分成功：success=false，同时携带结果数据
func MultiStatus(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusMultiStatus, Response{Success: false, Data: data, Error: message, Code: 20700})
}

// ── 错误响应 ──

// Error 通用错误响应
func Error(c *gin.Context, httpStatus int, code int, message string) {
	c.JSON(httpStatus, Response{
		Success: false,
		Error:   message,
		Code:    code,
	})
}

// ── 常见快捷方式 ──

// BadRequest 400
func BadRequest(c *gin.Context, code int, message string) {
	Error(c, http.StatusBadRequest, code, message)
}

// Unauthorized 401
func Unauthorized(c *gin.Context, code int, message string) {
	Error(c, http.StatusUnauthorized, code, message)
}

// Forbidden 403
func Forbidden(c *gin.Context, code int, message string) {
	Error(c, http.StatusForbidden, code, message)
}

// NotFound 404
func NotFound(c *gin.Context, code int, message string) {
	Error(c, http.StatusNotFound, code, message)
}

// Conflict 409
func Conflict(c *gin.Context, code int, message string) {
	Error(c, http.StatusConflict, code, message)
}

// TooManyRequests 429
func TooManyRequests(c *gin.Context, message string) {
	Error(c, http.StatusTooManyRequests, 42900, message)
}

// InternalError 500
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, 50000, "服务器内部错误")
}

// FromError 按错误分类输出；存储错误不向客户端透出细节
func FromError(c *gin.Context, err error) {
	var msg string
	if e, ok := asAppError(err); ok {
		msg = e.Message
	}
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation:
		BadRequest(c, 40000, msg)
	case apperrors.KindNotFound:
		NotFound(c, 40400, msg)
	case apperrors.KindConflict:
		Conflict(c, 40900, msg)
	default:
		InternalError(c)
	}
}

func asAppError(err error) (*apperrors.Error, bool) {
	var e *apperrors.Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
